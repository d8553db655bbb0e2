package recordagreementaudit

import (
	"context"
	"database/sql"

	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/models"
)

type Input struct {
	AgreementID string `json:"agreementId"`
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	Action      string `json:"action"`
	Detail      string `json:"detail,omitempty"`
}

type Output struct {
	Recorded bool   `json:"recorded"`
	AuditID  string `json:"auditId"`
	Mirrored bool   `json:"mirrored"`
}

// ActionLogAPI is the slice of the marketplace client this worker needs.
type ActionLogAPI interface {
	RecordActionLog(ctx context.Context, record *models.AuditRecord) error
}

type ServiceDependencies struct {
	Logger    logger.Logger
	DB        *sql.DB
	ActionLog ActionLogAPI
}
