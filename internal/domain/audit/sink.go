package audit

import (
	"context"
	"errors"
	"log/slog"

	"hrmaccess/internal/domain/access"
)

type Writer interface {
	Write(ctx context.Context, records []access.AuditRecord) error
}

// LogSink writes each record as a structured log line.
type LogSink struct {
	Logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{Logger: logger}
}

func (l *LogSink) Write(ctx context.Context, records []access.AuditRecord) error {
	for _, rec := range records {
		attrs := []any{
			"action", rec.Action,
			"entityId", rec.EntityID,
			"field", rec.FieldName,
			"old", rec.OldValue,
			"new", rec.NewValue,
			"actorId", rec.ActorID,
			"actorRole", string(rec.ActorRole),
			"at", rec.Timestamp,
		}
		if rec.IPAddress != nil {
			attrs = append(attrs, "ip", *rec.IPAddress)
		}
		if rec.UserAgent != nil {
			attrs = append(attrs, "userAgent", *rec.UserAgent)
		}
		l.Logger.InfoContext(ctx, "field audit", attrs...)
	}
	return nil
}

// Multi fans records out to every writer and joins their errors.
type Multi []Writer

func (m Multi) Write(ctx context.Context, records []access.AuditRecord) error {
	var errs []error
	for _, w := range m {
		if w == nil {
			continue
		}
		if err := w.Write(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
