package audit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/krishisakhi/backend/internal/infrastructure/logger"
)

type Logger struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{logger: log, now: time.Now}
}

// LogAction writes one audit line. farmerID is 0 for anonymous callers.
func (al *Logger) LogAction(ctx context.Context, farmerID int64, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.Int64("farmer_id", farmerID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", logger.RequestID(ctx)),
		slog.Time("timestamp", al.now()),
	)
}

func (al *Logger) LogRecordCreated(ctx context.Context, farmerID int64, resource string, id int64) {
	al.LogAction(ctx, farmerID, "create", resource, strconv.FormatInt(id, 10), "success", "")
}

func (al *Logger) LogLogin(ctx context.Context, farmerID int64, status, details string) {
	al.LogAction(ctx, farmerID, "login", "session", "", status, details)
}

func (al *Logger) LogDenied(ctx context.Context, farmerID int64, reason string) {
	al.LogAction(ctx, farmerID, "access_denied", "api", "", "denied", reason)
}
