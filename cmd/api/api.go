package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paymoz/docs" //this is required to generate swagger docs
	"paymoz/internal/auth"
	"paymoz/internal/invoker"
	"paymoz/internal/payments"
	"paymoz/internal/ratelimiter"
	"paymoz/internal/reference"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	logger        *zap.SugaredLogger
	payments      *payments.PaymentManager
	invoker       *invoker.Invoker
	references    *reference.Generator
	authenticator auth.Authenticator // nil disables bearer auth on payment routes
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr           string
	env            string
	apiURL         string
	requestTimeout time.Duration
	auth           authConfig
	payment        paymentConfig
	rateLimiter    ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	iss    string
}

type basicConfig struct {
	user     string
	passHash string // bcrypt
}

type paymentConfig struct {
	method          string // registered gateway used by the payment routes
	policy          invoker.Policy
	retryPolicy     string // all | transient
	referencePrefix string
	referenceSalt   string
	mpesa           payments.MpesaConfig
	simulatedDelay  time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// Global request deadline. When it fires before the payment finishes the
	// handler writes nothing and chi answers with a bare 504.
	r.Use(middleware.Timeout(app.config.requestTimeout))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)
		r.With(app.BasicAuthMiddleware()).Handle("/metrics", promhttp.Handler())

		r.Route("/payments", func(r chi.Router) {
			r.Use(app.RateLimiterMiddleware)
			if app.authenticator != nil {
				r.Use(app.AuthTokenMiddleware)
			}
			r.Post("/", app.processPaymentHandler)
			r.Post("/mpesa", app.mpesaPaymentHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: app.config.requestTimeout + 10*time.Second,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env, "gateway", app.config.payment.method)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
