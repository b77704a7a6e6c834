package invoker

import (
	"fmt"

	"paymoz/internal/payments"
)

// FailureKind classifies a failed invocation.
type FailureKind int

const (
	// KindTimeout marks an attempt that lost the race against its timer.
	KindTimeout FailureKind = iota + 1
	// KindGatewayError marks a failure reported by the gateway.
	KindGatewayError
	// KindExhausted marks an invocation that used every attempt.
	KindExhausted
)

func (k FailureKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindGatewayError:
		return "gateway_error"
	case KindExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Codes and messages used when the gateway gives none.
const (
	CodeGatewayFallback = payments.CodeInternalError
	CodeExhausted       = payments.CodeRequestTimeout

	MessageTimeout         = "timeout"
	MessageGatewayFallback = "payment processing failed"
	MessageExhausted       = "unknown error"
)

type Failure struct {
	Kind    FailureKind
	Message string
	Code    string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s (%s)", f.Kind, f.Message, f.Code)
}

// Outcome is the single result of an invocation. Exactly one of Payload and
// Failure is set.
type Outcome struct {
	Payload  *payments.PaymentResponse
	Failure  *Failure
	Attempts int
}

func (o Outcome) Succeeded() bool {
	return o.Failure == nil && o.Payload != nil
}
