package invoker

import (
	"errors"

	"paymoz/internal/payments"
)

// ErrAttemptTimeout is recorded for an attempt that lost the race against
// its timer. Timeouts are always retried.
var ErrAttemptTimeout = errors.New(MessageTimeout)

// RetryPredicate decides whether a non-timeout attempt error may be retried.
// Returning false ends the invocation with a GatewayError failure.
type RetryPredicate func(err error) bool

// RetryAll retries every error and relies on the attempt budget alone.
func RetryAll(error) bool { return true }

// RetryTransient retries transport errors and transient gateway codes, and
// stops on business rejections such as insufficient balance.
func RetryTransient(err error) bool {
	var gwErr *payments.GatewayError
	if !errors.As(err, &gwErr) {
		return true
	}
	if gwErr.Code == "" {
		return gwErr.StatusCode == 0 || gwErr.StatusCode >= 500
	}
	return payments.IsTransientCode(gwErr.Code)
}

// failureDetails extracts the gateway's message and code from err, falling
// back to generic values.
func failureDetails(err error) (message, code string) {
	message, code = MessageGatewayFallback, CodeGatewayFallback

	var gwErr *payments.GatewayError
	if errors.As(err, &gwErr) {
		if gwErr.Message != "" {
			message = gwErr.Message
		}
		if gwErr.Code != "" {
			code = gwErr.Code
		}
		return message, code
	}

	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return message, code
}
