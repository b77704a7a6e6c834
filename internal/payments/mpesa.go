package payments

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	c2bPath = "/ipg/v1x/c2bPayment/singleStage/"
	c2bPort = 18352

	defaultOrigin      = "developer.mpesa.vm.co.mz"
	defaultHTTPTimeout = 60 * time.Second
)

// MpesaConfig carries everything the Vodacom M-Pesa client needs. It is passed
// explicitly so the client holds no process-wide state.
type MpesaConfig struct {
	APIKey              string
	PublicKey           string // base64 DER, as issued by the developer portal
	ServiceProviderCode string // shortcode
	IsProduction        bool
	Origin              string
	HTTPTimeout         time.Duration
	// BaseURL overrides the environment host, e.g. for tests.
	BaseURL string
}

var ErrMissingCredentials = errors.New("mpesa api key and public key are required")

type MpesaAdapter struct {
	cfg         MpesaConfig
	bearerToken string
	httpClient  *http.Client
}

// NewMpesaAdapter parses the public key and derives the bearer token. Each
// adapter gets its own transport without keep-alives.
func NewMpesaAdapter(cfg MpesaConfig) (*MpesaAdapter, error) {
	if cfg.APIKey == "" || cfg.PublicKey == "" {
		return nil, ErrMissingCredentials
	}

	token, err := bearerToken(cfg.APIKey, cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("mpesa bearer token: %w", err)
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableKeepAlives = true

	return &MpesaAdapter{
		cfg:         cfg,
		bearerToken: token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// NewMpesaFactory returns a Factory building a new adapter on every call.
func NewMpesaFactory(cfg MpesaConfig) Factory {
	return func() (Gateway, error) {
		return NewMpesaAdapter(cfg)
	}
}

// bearerToken encrypts the api key with the portal's RSA public key.
func bearerToken(apiKey, publicKey string) (string, error) {
	der, err := base64.StdEncoding.DecodeString(strings.TrimSpace(publicKey))
	if err != nil {
		return "", fmt.Errorf("decode public key: %w", err)
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return "", fmt.Errorf("parse public key: %w", err)
	}

	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return "", fmt.Errorf("public key is %T, want RSA", parsed)
	}

	encrypted, err := rsa.EncryptPKCS1v15(rand.Reader, rsaKey, []byte(apiKey))
	if err != nil {
		return "", fmt.Errorf("encrypt api key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(encrypted), nil
}

func (m *MpesaAdapter) c2bURL() string {
	if m.cfg.BaseURL != "" {
		return strings.TrimRight(m.cfg.BaseURL, "/") + c2bPath
	}
	if m.cfg.IsProduction {
		return fmt.Sprintf("https://api.vm.co.mz:%d%s", c2bPort, c2bPath)
	}
	return fmt.Sprintf("https://api.sandbox.vm.co.mz:%d%s", c2bPort, c2bPath)
}

func (m *MpesaAdapter) origin() string {
	if m.cfg.Origin != "" {
		return m.cfg.Origin
	}
	return defaultOrigin
}

// SubmitPayment runs a C2B single stage payment.
func (m *MpesaAdapter) SubmitPayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error) {
	payload := map[string]string{
		"input_TransactionReference": req.Reference,
		"input_CustomerMSISDN":       req.Phone,
		"input_Amount":               req.Amount.String(),
		"input_ThirdPartyReference":  req.Reference,
		"input_ServiceProviderCode":  m.cfg.ServiceProviderCode,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("mpesa c2b encode: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.c2bURL(), bytes.NewReader(body))
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("mpesa c2b request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.bearerToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Origin", m.origin())

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("mpesa c2b request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("mpesa c2b read body: %w", err)
	}

	// The gateway reports business errors as JSON with an INS code on non-2xx
	// statuses, so decode before looking at the status.
	var res PaymentResponse
	if err := json.Unmarshal(raw, &res); err != nil || res.ResponseCode == "" {
		return PaymentResponse{}, &GatewayError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected response body=%s", string(raw)),
		}
	}

	if res.ResponseCode != CodeSuccess {
		msg := res.ResponseDesc
		if msg == "" {
			msg = Describe(res.ResponseCode)
		}
		return PaymentResponse{}, &GatewayError{
			StatusCode: resp.StatusCode,
			Code:       res.ResponseCode,
			Message:    msg,
		}
	}

	return res, nil
}
