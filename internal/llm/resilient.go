package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"finvoapi/internal/config"
	"finvoapi/internal/document"
	"finvoapi/internal/model"
)

// Resilient wraps a provider Invoker with the call policy: a shared rate
// limiter (the upstream endpoint enforces its own limits, we stay under
// them), a per-call timeout, and bounded retry with exponential backoff
// for transient failures only.
type Resilient struct {
	next       Invoker
	limiter    *rate.Limiter
	timeout    time.Duration
	maxRetries int
	log        *slog.Logger
}

// NewResilient builds the wrapper from the invoker configuration.
// RequestsPerMinute of 0 disables rate limiting.
func NewResilient(next Invoker, cfg config.InvokerConfig, log *slog.Logger) *Resilient {
	if log == nil {
		log = slog.Default()
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute/6+1)
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Resilient{
		next:       next,
		limiter:    limiter,
		timeout:    cfg.Timeout,
		maxRetries: maxRetries,
		log:        log,
	}
}

// Invoke performs the model call under the configured policy. Failures
// come back as typed pipeline errors: ExtractionTimeout when the per-call
// deadline fires, RequestCancelled/RequestTimeout when the caller's
// context ends, ExternalServiceError for everything upstream.
func (r *Resilient) Invoke(ctx context.Context, payload *document.Payload, instructions string, schema map[string]any) (string, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", callerErr(ctx, err)
		}
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if r.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	attempt := 0
	op := func() (string, error) {
		attempt++
		out, err := r.next.Invoke(callCtx, payload, instructions, schema)
		if err != nil {
			if !isTransient(err) {
				return "", backoff.Permanent(err)
			}
			r.log.Warn("model call failed, will retry",
				"attempt", attempt, "max", r.maxRetries, "error", err)
			return "", err
		}
		return out, nil
	}

	out, err := backoff.Retry(callCtx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(r.maxRetries)),
	)
	if err != nil {
		return "", r.classify(ctx, callCtx, err)
	}
	return out, nil
}

// classify maps a final invocation error onto the pipeline taxonomy.
func (r *Resilient) classify(parent, call context.Context, err error) error {
	if parent.Err() != nil {
		return callerErr(parent, err)
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return model.WrapError(model.KindExtractionTimeout, "model call exceeded the configured timeout", err)
	}
	return model.WrapError(model.KindExternalServiceError, "model call failed", err)
}

func callerErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return model.WrapError(model.KindRequestTimeout, "request deadline exceeded", err)
	}
	return model.WrapError(model.KindRequestCancelled, "request cancelled by caller", err)
}

func isTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Unclassified failures are treated as network blips.
	return true
}
