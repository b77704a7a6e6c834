// Package invoker makes a single side-effecting payment call resilient and
// bounded in time.
//
// Each invocation runs up to Policy.MaxAttempts sequential attempts. An
// attempt builds a fresh gateway, then races the gateway call against a timer
// of Policy.PerAttemptTimeout. Between attempts the invoker sleeps
// Policy.BackoffBase * 2^(attempt-1), with no jitter and no sleep after the
// last attempt.
//
// # Timeouts are races
//
// A timed out attempt is abandoned, not cancelled. The gateway call keeps
// running in its goroutine and its result is discarded. Gateways should bound
// their own I/O (the M-Pesa client sets an HTTP client timeout) so abandoned
// calls do not pile up.
//
// # Usage
//
//	inv := invoker.New(invoker.WithLogger(logger))
//	out := inv.Invoke(ctx, req, invoker.DefaultPolicy(), payments.NewMpesaFactory(cfg))
//	if out.Failure != nil {
//	    // out.Failure.Code, out.Failure.Message
//	}
//
// Invoke never panics and always returns exactly one Outcome.
package invoker
