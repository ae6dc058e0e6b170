// Package zaplog adapts a zap logger to the engine's OperationLogger contract.
package zaplog

import (
	"context"

	"github.com/RichoDemus/payments-engine/pkg/engine"
	"go.uber.org/zap"
)

// OperationLogger emits one structured log line per processed transaction.
type OperationLogger struct {
	logger *zap.Logger
}

// NewOperationLogger wraps a zap logger. A nil logger falls back to zap.NewNop.
func NewOperationLogger(logger *zap.Logger) *OperationLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OperationLogger{logger: logger}
}

// LogOperation implements engine.OperationLogger.
func (operationLogger *OperationLogger) LogOperation(_ context.Context, entry engine.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.Uint16("client", uint16(entry.Client)),
		zap.Uint32("tx", uint32(entry.TxID)),
		zap.String("status", entry.Status),
	}
	if !entry.Amount.IsZero() {
		fields = append(fields, zap.String("amount", entry.Amount.String()))
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		operationLogger.logger.Warn("transaction ignored", fields...)
		return
	}
	operationLogger.logger.Info("transaction applied", fields...)
}
