package invoker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"paymoz/internal/payments"
)

// Invoker runs payment attempts under an attempt policy. It holds no state
// between invocations and is safe for concurrent use.
type Invoker struct {
	logger      *zap.SugaredLogger
	shouldRetry RetryPredicate
	sleep       func(time.Duration)
	gateway     string
}

type Option func(*Invoker)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(inv *Invoker) {
		if logger != nil {
			inv.logger = logger
		}
	}
}

// WithRetryPredicate sets the classification of non-timeout errors.
// The default is RetryAll.
func WithRetryPredicate(fn RetryPredicate) Option {
	return func(inv *Invoker) {
		if fn != nil {
			inv.shouldRetry = fn
		}
	}
}

// WithSleep replaces the backoff wait.
func WithSleep(fn func(time.Duration)) Option {
	return func(inv *Invoker) {
		if fn != nil {
			inv.sleep = fn
		}
	}
}

// WithGatewayName labels logs and metrics.
func WithGatewayName(name string) Option {
	return func(inv *Invoker) {
		if name != "" {
			inv.gateway = name
		}
	}
}

func New(opts ...Option) *Invoker {
	inv := &Invoker{
		logger:      zap.NewNop().Sugar(),
		shouldRetry: RetryAll,
		sleep:       time.Sleep,
		gateway:     "default",
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

type attemptResult struct {
	resp payments.PaymentResponse
	err  error
}

// Invoke submits req through gateways built by newGateway, one per attempt.
//
// ctx is handed to the gateway as is. Invoke does not watch it: timeouts are
// enforced per attempt by a race, and callers that must stop waiting should
// stop reading the Outcome instead.
func (inv *Invoker) Invoke(ctx context.Context, req payments.PaymentRequest, policy Policy, newGateway payments.Factory) Outcome {
	start := time.Now()
	log := inv.logger.With(
		"invocation_id", uuid.NewString(),
		"gateway", inv.gateway,
		"reference", req.Reference,
	)

	out := inv.run(ctx, log, req, policy, newGateway)

	recordOutcome(inv.gateway, out, time.Since(start).Seconds())
	if out.Failure != nil {
		log.Errorw("payment failed",
			"kind", out.Failure.Kind.String(),
			"code", out.Failure.Code,
			"message", out.Failure.Message,
			"attempts", out.Attempts,
			"elapsed", time.Since(start),
		)
	} else {
		log.Infow("payment succeeded", "attempts", out.Attempts, "elapsed", time.Since(start))
	}
	return out
}

func (inv *Invoker) run(ctx context.Context, log *zap.SugaredLogger, req payments.PaymentRequest, policy Policy, newGateway payments.Factory) Outcome {
	if err := policy.Validate(); err != nil {
		return Outcome{Failure: &Failure{Kind: KindGatewayError, Message: err.Error(), Code: CodeGatewayFallback}}
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		resp, err := inv.attempt(ctx, req, policy.PerAttemptTimeout, newGateway)
		if err == nil {
			recordAttempt(inv.gateway, attempt, "success")
			return Outcome{Payload: &resp, Attempts: attempt}
		}
		lastErr = err

		if errors.Is(err, ErrAttemptTimeout) {
			recordAttempt(inv.gateway, attempt, KindTimeout.String())
			log.Warnw("payment attempt timed out", "attempt", attempt, "timeout", policy.PerAttemptTimeout)
		} else {
			recordAttempt(inv.gateway, attempt, KindGatewayError.String())
			log.Warnw("payment attempt failed", "attempt", attempt, "error", err.Error())

			if attempt == policy.MaxAttempts || !inv.shouldRetry(err) {
				message, code := failureDetails(err)
				return Outcome{
					Failure:  &Failure{Kind: KindGatewayError, Message: message, Code: code},
					Attempts: attempt,
				}
			}
		}

		if attempt < policy.MaxAttempts {
			delay := policy.Backoff(attempt)
			log.Infow("retrying payment", "attempt", attempt, "backoff", delay)
			recordBackoff(inv.gateway, attempt, delay.Seconds())
			inv.sleep(delay)
		}
	}

	message := MessageExhausted
	if lastErr != nil && lastErr.Error() != "" {
		message = lastErr.Error()
	}
	return Outcome{
		Failure:  &Failure{Kind: KindExhausted, Message: message, Code: CodeExhausted},
		Attempts: policy.MaxAttempts,
	}
}

// attempt races one gateway call against the per-attempt timer. The result
// channel is buffered so a call that loses the race can still finish.
func (inv *Invoker) attempt(ctx context.Context, req payments.PaymentRequest, timeout time.Duration, newGateway payments.Factory) (payments.PaymentResponse, error) {
	results := make(chan attemptResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- attemptResult{err: fmt.Errorf("gateway panic: %v", r)}
			}
		}()

		gw, err := newGateway()
		if err != nil {
			results <- attemptResult{err: fmt.Errorf("build gateway: %w", err)}
			return
		}
		resp, err := gw.SubmitPayment(ctx, req)
		results <- attemptResult{resp: resp, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		return res.resp, res.err
	case <-timer.C:
		return payments.PaymentResponse{}, ErrAttemptTimeout
	}
}
