// internal/signing/gate.go
package signing

import "agreement-workers/internal/models"

// BlockState classifies why signing is (or is not) currently possible, so
// callers can choose between an error and a waiting message.
type BlockState string

const (
	// StateReady means the user may sign now.
	StateReady BlockState = "ready"
	// StateFeesOutstanding means the applicant must submit fees first.
	// Transient: becomes signable once fees are persisted.
	StateFeesOutstanding BlockState = "fees_outstanding"
	// StateAlreadySigned means this side has already signed. Terminal for
	// this user; informational, not an error to wait out.
	StateAlreadySigned BlockState = "already_signed"
	// StateNotYourTurn means the counterparty has not signed yet.
	// Transient: will become signable later.
	StateNotYourTurn BlockState = "not_your_turn"
	// StateComplete means both parties have signed.
	StateComplete BlockState = "complete"
)

// Transient reports whether the block will clear on its own as the
// agreement progresses, as opposed to being terminal for this user.
func (s BlockState) Transient() bool {
	return s == StateFeesOutstanding || s == StateNotYourTurn
}

// Decision is the signing gate's verdict for one role on one snapshot.
type Decision struct {
	CanSign bool
	State   BlockState
	// Message is the server's status_message when the payload carries one,
	// otherwise a derived reason.
	Message string
}

// Evaluate decides whether the given role may sign right now.
//
// When the server supplies can_sign it is authoritative and the local
// derivation is skipped; the flag re-derivation exists only for legacy
// payloads that predate the field. The block state is always derived
// locally because the server hint doesn't distinguish "already signed"
// from "not your turn".
func Evaluate(agreement *models.Agreement, role Role) Decision {
	state := deriveState(agreement, role)

	if agreement.CanSign != nil {
		msg := agreement.StatusMessage
		if msg == "" {
			msg = defaultMessage(state)
		}
		return Decision{
			CanSign: *agreement.CanSign,
			State:   state,
			Message: msg,
		}
	}

	return Decision{
		CanSign: state == StateReady,
		State:   state,
		Message: defaultMessage(state),
	}
}

// CanSign is the boolean shortcut over Evaluate.
func CanSign(agreement *models.Agreement, role Role) bool {
	return Evaluate(agreement, role).CanSign
}

// BlockingReason returns a human-readable reason signing is blocked, or
// empty when the user may sign.
func BlockingReason(agreement *models.Agreement, role Role) string {
	d := Evaluate(agreement, role)
	if d.CanSign {
		return ""
	}
	return d.Message
}

func deriveState(agreement *models.Agreement, role Role) BlockState {
	if agreement.IsTerminal() {
		return StateComplete
	}

	switch role {
	case RoleAgency:
		if agreement.AgencySigned {
			return StateAlreadySigned
		}
		if NeedsFees(agreement) {
			return StateFeesOutstanding
		}
		return StateReady
	default: // RoleClient
		if agreement.ClientSigned {
			return StateAlreadySigned
		}
		if !agreement.AgencySigned {
			return StateNotYourTurn
		}
		return StateReady
	}
}

func defaultMessage(state BlockState) string {
	switch state {
	case StateReady:
		return "You can sign this agreement now."
	case StateFeesOutstanding:
		return "Please submit your placement fee before signing."
	case StateAlreadySigned:
		return "You have already signed this agreement."
	case StateNotYourTurn:
		return "Waiting for the other party to sign first."
	case StateComplete:
		return "This agreement is fully signed."
	}
	return ""
}
