package payments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SimulatedAdapter accepts every payment after a fixed latency. It stands in
// for M-Pesa in development.
type SimulatedAdapter struct {
	Latency time.Duration
}

func NewSimulatedAdapter(latency time.Duration) *SimulatedAdapter {
	return &SimulatedAdapter{Latency: latency}
}

// NewSimulatedFactory returns a Factory for SimulatedAdapter.
func NewSimulatedFactory(latency time.Duration) Factory {
	return func() (Gateway, error) {
		return NewSimulatedAdapter(latency), nil
	}
}

func (s *SimulatedAdapter) SubmitPayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error) {
	if s.Latency > 0 {
		t := time.NewTimer(s.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return PaymentResponse{}, ctx.Err()
		case <-t.C:
		}
	}

	return PaymentResponse{
		ResponseCode:        CodeSuccess,
		ResponseDesc:        Describe(CodeSuccess),
		TransactionID:       "sim" + uuid.NewString()[:8],
		ConversationID:      strings.ReplaceAll(uuid.NewString(), "-", ""),
		ThirdPartyReference: req.Reference,
	}, nil
}
