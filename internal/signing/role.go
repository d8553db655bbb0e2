// internal/signing/role.go
package signing

import (
	"agreement-workers/internal/common/errors"
	"agreement-workers/internal/models"
)

// Role identifies which side of the agreement the acting user is on.
type Role string

const (
	// RoleClient is the publisher: the institute that posted the contract
	// and ultimately pays. Signs second.
	RoleClient Role = "client"
	// RoleAgency is the applicant side: an agency, headhunter, or
	// individual professional. Signs first.
	RoleAgency Role = "agency"
)

// ResolveRole maps the acting user onto one side of the agreement by
// comparing against the counterparty references embedded in the snapshot.
// A user matching neither side is a data or authorization inconsistency and
// is reported as a hard error, never silently defaulted.
func ResolveRole(agreement *models.Agreement, userID string) (Role, error) {
	if userID == "" {
		return "", errors.NewRoleUnresolvedError(userID, agreement.ID)
	}
	switch userID {
	case agreement.ClientUserID:
		return RoleClient, nil
	case agreement.AgencyUserID:
		return RoleAgency, nil
	}
	return "", errors.NewRoleUnresolvedError(userID, agreement.ID)
}
