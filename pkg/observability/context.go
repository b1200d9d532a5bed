package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	correlationIDCtxKey contextKey = "correlation_id"
	walletCtxKey        contextKey = "wallet"
	operationCtxKey     contextKey = "operation"
)

// Attribute keys used in logs.
const (
	CorrelationIDKey = "correlation_id"
	WalletKey        = "wallet"
	OperationKey     = "operation"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
)

// WithCorrelationID adds a correlation ID to the context.
// If id is empty, a new UUID is generated.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, correlationIDCtxKey, id)
}

// CorrelationIDFromContext extracts the correlation ID from context.
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDCtxKey)
}

// WithWallet records the connected wallet address on the context.
func WithWallet(ctx context.Context, wallet string) context.Context {
	return context.WithValue(ctx, walletCtxKey, wallet)
}

// WalletFromContext extracts the wallet address from context.
func WalletFromContext(ctx context.Context) string {
	return stringValue(ctx, walletCtxKey)
}

// WithOperation adds an operation name to the context.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationCtxKey, operation)
}

// OperationFromContext extracts the operation name from context.
func OperationFromContext(ctx context.Context) string {
	return stringValue(ctx, operationCtxKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
