package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrmaccess/internal/domain/access"
)

// Entry is a stored field audit record.
type Entry struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	EntityID  string          `json:"entityId"`
	FieldName string          `json:"fieldName"`
	OldValue  json.RawMessage `json:"oldValue"`
	NewValue  json.RawMessage `json:"newValue"`
	ActorID   string          `json:"actorId"`
	ActorRole string          `json:"actorRole"`
	IPAddress *string         `json:"ipAddress"`
	UserAgent *string         `json:"userAgent"`
	CreatedAt time.Time       `json:"timestamp"`
}

type Filter struct {
	EntityID  string
	FieldName string
	ActorID   string
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Write persists records in one transaction.
func (s *Service) Write(ctx context.Context, records []access.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, rec := range records {
		oldJSON, err := json.Marshal(rec.OldValue)
		if err != nil {
			return err
		}
		newJSON, err := json.Marshal(rec.NewValue)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
      INSERT INTO field_audit_log (action, entity_id, field_name, old_value, new_value, actor_id, actor_role, ip_address, user_agent, created_at)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `, rec.Action, rec.EntityID, rec.FieldName, oldJSON, newJSON, rec.ActorID, string(rec.ActorRole), rec.IPAddress, rec.UserAgent, rec.Timestamp)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error) {
	query, args := buildBaseQuery(`SELECT id::text, action, entity_id, field_name, old_value, new_value,
    actor_id, actor_role, ip_address, user_agent, created_at`, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityID, &e.FieldName, &e.OldValue, &e.NewValue,
			&e.ActorID, &e.ActorRole, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM field_audit_log WHERE 1=1"
	var args []any
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		query += fmt.Sprintf(" AND entity_id = $%d", len(args))
	}
	if filter.FieldName != "" {
		args = append(args, filter.FieldName)
		query += fmt.Sprintf(" AND field_name = $%d", len(args))
	}
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		query += fmt.Sprintf(" AND actor_id = $%d", len(args))
	}
	return query, args
}
