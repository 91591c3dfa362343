package audit

import (
	"context"

	"github.com/you/emrsvc/domain"
	"go.uber.org/zap"
)

// ZapAuditLogger writes audit events as structured log lines
type ZapAuditLogger struct {
	logger *zap.Logger
}

// NewZapAuditLogger creates an audit logger on the "audit" child logger
func NewZapAuditLogger(logger *zap.Logger) domain.AuditLogger {
	return &ZapAuditLogger{logger: logger.Named("audit")}
}

// LogEvent implements domain.AuditLogger. Phone numbers are masked.
func (l *ZapAuditLogger) LogEvent(_ context.Context, e *domain.AuditEvent) {
	if e == nil {
		return
	}

	fields := []zap.Field{
		zap.String("event_type", string(e.EventType)),
		zap.Bool("success", e.Success),
		zap.Time("event_ts", e.Timestamp),
	}
	if e.UserID != "" {
		fields = append(fields, zap.String("user_id", e.UserID))
	}
	if e.Email != "" {
		fields = append(fields, zap.String("email", e.Email))
	}
	if e.Phone != "" {
		fields = append(fields, zap.String("phone", MaskPhone(e.Phone)))
	}
	if e.SessionID != "" {
		fields = append(fields, zap.String("session_id", e.SessionID))
	}
	if len(e.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", e.Metadata))
	}

	if !e.Success {
		l.logger.Warn("audit", append(fields, zap.String("error", e.ErrorMsg))...)
		return
	}
	l.logger.Info("audit", fields...)
}

// MaskPhone keeps the last four digits
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	masked := make([]byte, len(phone))
	for i := range phone {
		switch {
		case i >= len(phone)-4, phone[i] == '+':
			masked[i] = phone[i]
		default:
			masked[i] = '*'
		}
	}
	return string(masked)
}
