package main

import (
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"paymoz/internal/auth"
	"paymoz/internal/invoker"
	"paymoz/internal/payments"
	"paymoz/internal/ratelimiter"
	"paymoz/internal/reference"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: envInt("RATELIMITER_REQUESTS_COUNT", 20),
		TimeFrame:            envDuration("RATELIMITER_TIME_FRAME", 5*time.Second),
		Enabled:              envBool("RATE_LIMITER_ENABLED", false),
	}
}

// LoadPaymentConfig reads gateway credentials and the attempt policy.
// Defaults: 2 attempts of 20s each with a 500ms backoff base.
func LoadPaymentConfig() paymentConfig {
	return paymentConfig{
		method: envString("PAYMENT_GATEWAY", "mpesa"),
		policy: invoker.Policy{
			MaxAttempts:       envInt("PAYMENT_MAX_ATTEMPTS", 2),
			PerAttemptTimeout: envDuration("PAYMENT_ATTEMPT_TIMEOUT", 20*time.Second),
			BackoffBase:       envDuration("PAYMENT_BACKOFF_BASE", 500*time.Millisecond),
		},
		retryPolicy:     envString("PAYMENT_RETRY_POLICY", "all"),
		referencePrefix: envString("REFERENCE_PREFIX", "PAYMOZ"),
		referenceSalt:   os.Getenv("REFERENCE_SALT"),
		simulatedDelay:  envDuration("SIMULATED_GATEWAY_LATENCY", 0),
		mpesa: payments.MpesaConfig{
			APIKey:              os.Getenv("MPESA_API_KEY"),
			PublicKey:           os.Getenv("MPESA_PUBLIC_KEY"),
			ServiceProviderCode: os.Getenv("MPESA_SERVICE_PROVIDER_CODE"),
			IsProduction:        strings.EqualFold(os.Getenv("MPESA_ENVIRONMENT"), "production"),
			Origin:              os.Getenv("MPESA_ORIGIN"),
			HTTPTimeout:         envDuration("MPESA_HTTP_TIMEOUT", 60*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, exists := os.LookupEnv(key); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			return parsedVal
		}
		fmt.Println("Invalid", key, "defaulting to", fallback)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			return parsedVal
		}
		fmt.Println("Invalid", key, "defaulting to", fallback)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if parsedVal, err := time.ParseDuration(val); err == nil {
			return parsedVal
		}
		fmt.Println("Invalid", key, "defaulting to", fallback)
	}
	return fallback
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel
	if lvl, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if err := level.Set(lvl); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", lvl, err)
		}
	}

	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level)

	return zap.New(core).Sugar(), nil
}

// newPaymentManager registers the gateways this relay can talk to.
func newPaymentManager(cfg paymentConfig) *payments.PaymentManager {
	m := payments.NewPaymentManager()
	m.RegisterGateway("mpesa", payments.NewMpesaFactory(cfg.mpesa))
	m.RegisterGateway("simulated", payments.NewSimulatedFactory(cfg.simulatedDelay))
	return m
}

func retryPredicate(name string) (invoker.RetryPredicate, error) {
	switch strings.ToLower(name) {
	case "", "all":
		return invoker.RetryAll, nil
	case "transient":
		return invoker.RetryTransient, nil
	default:
		return nil, fmt.Errorf("unknown PAYMENT_RETRY_POLICY %q", name)
	}
}

var version = "1.0.0"

//	@title			Paymoz API
//	@description	Relay for M-Pesa C2B payments with bounded retries.

//	@contact.name	API Support
//	@contact.url	http://www.swagger.io/support
//	@contact.email	support@swagger.io

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config{
		addr:           envString("ADDR", ":4000"),
		env:            envString("ENV", "development"),
		apiURL:         envString("EXTERNAL_URL", "localhost:4000"),
		requestTimeout: envDuration("REQUEST_TIMEOUT", 60*time.Second),
		auth: authConfig{
			basic: basicConfig{
				user:     os.Getenv("AUTH_BASIC_USER"),
				passHash: os.Getenv("AUTH_BASIC_PASS_HASH"),
			},
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				iss:    envString("AUTH_TOKEN_ISS", "paymoz"),
			},
		},
		payment:     LoadPaymentConfig(),
		rateLimiter: LoadRateLimiterConfig(),
	}

	// Logger
	logger, err := NewLogger()
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.payment.policy.Validate(); err != nil {
		logger.Fatal(err)
	}

	shouldRetry, err := retryPredicate(cfg.payment.retryPolicy)
	if err != nil {
		logger.Fatal(err)
	}

	paymentManager := newPaymentManager(cfg.payment)
	if _, err := paymentManager.Factory(cfg.payment.method); err != nil {
		logger.Fatalw("unknown PAYMENT_GATEWAY", "gateway", cfg.payment.method, "available", paymentManager.Methods())
	}
	if cfg.payment.method == "mpesa" {
		// Fail at boot rather than on the first payment.
		if _, err := payments.NewMpesaAdapter(cfg.payment.mpesa); err != nil {
			logger.Fatal(err)
		}
	}

	references, err := reference.NewGenerator(cfg.payment.referencePrefix, cfg.payment.referenceSalt)
	if err != nil {
		logger.Fatal(err)
	}

	// Authenticator
	var authenticator auth.Authenticator
	if cfg.auth.token.secret != "" {
		authenticator = auth.NewJWTAuthenticator(cfg.auth.token.secret, cfg.auth.token.iss, cfg.auth.token.iss)
	} else {
		logger.Warn("AUTH_TOKEN_SECRET not set, payment routes are unauthenticated")
	}

	// Rate limiter
	var rateLimiter ratelimiter.Limiter
	if cfg.rateLimiter.Enabled {
		rateLimiter = ratelimiter.NewFixedWindowLimiter(
			cfg.rateLimiter.RequestsPerTimeFrame,
			cfg.rateLimiter.TimeFrame,
		)
	}

	app := &application{
		config:   cfg,
		logger:   logger,
		payments: paymentManager,
		invoker: invoker.New(
			invoker.WithLogger(logger),
			invoker.WithRetryPredicate(shouldRetry),
			invoker.WithGatewayName(cfg.payment.method),
		),
		references:    references,
		authenticator: authenticator,
		rateLimiter:   rateLimiter,
	}

	//Metrics collected http://localhost:4000/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
