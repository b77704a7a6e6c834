package payments

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentRequest is built by the request-handling layer after validation and
// is not modified afterwards.
type PaymentRequest struct {
	Phone     string
	Amount    decimal.Decimal
	Reference string
}

// PaymentResponse mirrors the gateway body. It is handed back to HTTP callers
// verbatim.
type PaymentResponse struct {
	ResponseCode        string `json:"output_ResponseCode"`
	ResponseDesc        string `json:"output_ResponseDesc"`
	TransactionID       string `json:"output_TransactionID,omitempty"`
	ConversationID      string `json:"output_ConversationID,omitempty"`
	ThirdPartyReference string `json:"output_ThirdPartyReference,omitempty"`
}

// GatewayError is a business or protocol error reported by the gateway.
type GatewayError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("gateway error: http=%d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway error: %s %s", e.Code, e.Message)
}

// NormalizeMSISDN prefixes the Mozambican country code to local numbers.
func NormalizeMSISDN(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "+")
	if strings.HasPrefix(phone, countryCode) {
		return phone
	}
	return countryCode + phone
}

const countryCode = "258"
