package payments

import "context"

// Gateway performs a single payment attempt against a provider.
type Gateway interface {
	SubmitPayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error)
}

// Factory builds a fresh Gateway. Callers construct one per attempt so no
// connection state survives a failed attempt.
type Factory func() (Gateway, error)
