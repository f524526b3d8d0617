package dispatch

import (
	"context"

	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Stage names, also used as span suffixes.
const (
	StageRateLimit = "rate_limit"
	StageIdentify  = "identify"
	StageQuota     = "quota"
	StageResolve   = "resolve"
	StageAuthorize = "authorize"
	StageExecute   = "execute"
)

// stageFunc is one admission step. A non-nil error stops the pipeline.
type stageFunc func(ctx context.Context) error

// traced wraps a stage in an "admission.<name>" span that records the error
// kind of a stopped event.
func traced(tracer trace.Tracer, name string, fn stageFunc) stageFunc {
	return func(ctx context.Context) error {
		ctx, span := tracer.Start(ctx, "admission."+name,
			trace.WithAttributes(attribute.String("admission.stage", name)),
		)
		defer span.End()

		err := fn(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.kind", string(errors.KindOf(err))))
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		span.SetStatus(codes.Ok, "")
		return nil
	}
}
