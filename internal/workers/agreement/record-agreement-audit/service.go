package recordagreementaudit

import (
	"context"
	"database/sql"
	"time"

	"agreement-workers/internal/common/errors"
	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/models"

	"github.com/google/uuid"
)

const insertAuditQuery = `
	INSERT INTO agreement_audit_log (id, agreement_id, user_id, role, action, detail, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Service persists one audit row per signing action. The local table is the
// source of record; mirroring to the marketplace action-log service is
// best-effort and never fails the job.
type Service struct {
	logger    logger.Logger
	db        *sql.DB
	actionLog ActionLogAPI
	config    *Config
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		logger:    deps.Logger,
		db:        deps.DB,
		actionLog: deps.ActionLog,
		config:    config,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	record := &models.AuditRecord{
		ID:          uuid.New().String(),
		AgreementID: input.AgreementID,
		UserID:      input.UserID,
		Role:        input.Role,
		Action:      input.Action,
		Detail:      input.Detail,
		OccurredAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, insertAuditQuery,
		record.ID,
		record.AgreementID,
		record.UserID,
		record.Role,
		record.Action,
		record.Detail,
		record.OccurredAt,
	)
	if err != nil {
		return nil, errors.NewAuditWriteError(err)
	}

	mirrored := false
	if s.config.MirrorToActionLog && s.actionLog != nil {
		if mirrorErr := s.actionLog.RecordActionLog(ctx, record); mirrorErr != nil {
			s.logger.Warn("Failed to mirror audit entry to action-log service", map[string]interface{}{
				"auditId":     record.ID,
				"agreementId": record.AgreementID,
				"error":       mirrorErr.Error(),
			})
		} else {
			mirrored = true
		}
	}

	s.logger.Info("Audit entry recorded", map[string]interface{}{
		"auditId":     record.ID,
		"agreementId": record.AgreementID,
		"action":      record.Action,
		"mirrored":    mirrored,
	})

	return &Output{
		Recorded: true,
		AuditID:  record.ID,
		Mirrored: mirrored,
	}, nil
}

// History returns the audit trail for one agreement, newest first.
func (s *Service) History(ctx context.Context, agreementID string, limit int) ([]models.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agreement_id, user_id, role, action, detail, occurred_at
		FROM agreement_audit_log
		WHERE agreement_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2`, agreementID, limit)
	if err != nil {
		return nil, errors.NewAuditWriteError(err)
	}
	defer rows.Close()

	var records []models.AuditRecord
	for rows.Next() {
		var r models.AuditRecord
		if err := rows.Scan(&r.ID, &r.AgreementID, &r.UserID, &r.Role, &r.Action, &r.Detail, &r.OccurredAt); err != nil {
			return nil, errors.NewAuditWriteError(err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAuditWriteError(err)
	}

	return records, nil
}
