package annotations

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/keepup/pkg/observability"
)

// blob reads and writes one namespace, reporting unreadable content instead
// of failing the caller.
type blob struct {
	backend   Backend
	namespace string
	logger    *slog.Logger
	metrics   observability.Metrics
}

func newBlob(backend Backend, namespace string, logger *slog.Logger, metrics observability.Metrics) blob {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return blob{
		backend:   backend,
		namespace: namespace,
		logger:    logger.With("namespace", namespace),
		metrics:   metrics,
	}
}

// read returns the raw blob, or nil when it is missing or unreadable.
func (b blob) read(ctx context.Context) []byte {
	raw, err := b.backend.Load(ctx, b.namespace)
	if err != nil {
		b.corrupt(ctx, "read_failed", err)
		return nil
	}
	return raw
}

func (b blob) write(ctx context.Context, data []byte) error {
	return b.backend.Store(ctx, b.namespace, data)
}

func (b blob) corrupt(ctx context.Context, reason string, err error) {
	b.logger.WarnContext(ctx, "annotation data unusable, treating as empty",
		"reason", reason,
		"error", err,
	)
	b.metrics.Counter(observability.MetricAnnotationsCorrupt, 1,
		observability.T("namespace", b.namespace), observability.T("reason", reason))
}

func (b blob) skip(ctx context.Context, key string, err error) {
	b.logger.WarnContext(ctx, "skipping invalid annotation entry",
		"key", key,
		"error", err,
	)
	b.metrics.Counter(observability.MetricAnnotationsCorrupt, 1,
		observability.T("namespace", b.namespace), observability.T("reason", "invalid_entry"))
}
