package repository

import (
	"context"
	"encoding/json"

	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
)

type AuditRepository struct {
	db db.DBTX
}

func NewAuditRepository(db db.DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

const insertAuditEventSQL = `
INSERT INTO audit_events (id, action, actor_id, entity_type, entity_id, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())`

func (r *AuditRepository) Record(ctx context.Context, event shared.AuditEvent) error {
	detail, err := json.Marshal(event.Detail)
	if err != nil {
		return infra.WrapRepoErr("failed to encode audit detail", err)
	}

	_, err = r.db.Exec(ctx, insertAuditEventSQL,
		pgconv.UUIDToPgtype(uuid.New()),
		pgconv.StringToPgtype(event.Action),
		pgconv.UUIDToPgtype(event.ActorID),
		pgconv.StringToPgtype(event.EntityType),
		pgconv.UUIDToPgtype(event.EntityID),
		detail,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert audit event", err)
	}
	return nil
}
