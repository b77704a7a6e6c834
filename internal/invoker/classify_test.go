package invoker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"paymoz/internal/payments"
)

func TestRetryTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transport error", errors.New("connection reset by peer"), true},
		{"internal error code", &payments.GatewayError{Code: "INS-1"}, true},
		{"overload code", &payments.GatewayError{Code: "INS-16"}, true},
		{"wrapped transient", fmt.Errorf("attempt: %w", &payments.GatewayError{Code: "INS-9"}), true},
		{"insufficient balance", &payments.GatewayError{Code: "INS-2006"}, false},
		{"cancelled by customer", &payments.GatewayError{Code: "INS-5"}, false},
		{"no code 5xx", &payments.GatewayError{StatusCode: 502}, true},
		{"no code 4xx", &payments.GatewayError{StatusCode: 400}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RetryTransient(tt.err))
		})
	}
}

func TestRetryAll(t *testing.T) {
	t.Parallel()

	assert.True(t, RetryAll(&payments.GatewayError{Code: "INS-2006"}))
	assert.True(t, RetryAll(errors.New("x")))
}

func TestFailureDetails(t *testing.T) {
	t.Parallel()

	msg, code := failureDetails(&payments.GatewayError{Code: "INS-10", Message: "Duplicate transaction"})
	assert.Equal(t, "Duplicate transaction", msg)
	assert.Equal(t, "INS-10", code)

	msg, code = failureDetails(&payments.GatewayError{StatusCode: 502})
	assert.Equal(t, MessageGatewayFallback, msg)
	assert.Equal(t, CodeGatewayFallback, code)

	msg, code = failureDetails(errors.New("eof"))
	assert.Equal(t, "eof", msg)
	assert.Equal(t, CodeGatewayFallback, code)
}

func TestFailure_Error(t *testing.T) {
	t.Parallel()

	f := &Failure{Kind: KindExhausted, Message: "timeout", Code: "INS-9"}
	assert.Equal(t, "exhausted: timeout (INS-9)", f.Error())
	assert.Equal(t, "unknown", FailureKind(0).String())
}
