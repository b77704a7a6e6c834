package main

import (
	"context"
	"fmt"
	"net/http"

	"paymoz/internal/invoker"
	"paymoz/internal/payments"

	"github.com/shopspring/decimal"
)

type processPaymentPayload struct {
	Phone     string  `json:"phone" validate:"required,mzphone"`
	Value     float64 `json:"value" validate:"required,gt=0"`
	Reference string  `json:"reference" validate:"required,max=20"`
}

type mpesaPaymentPayload struct {
	Phone string  `json:"numero_celular" validate:"required"`
	Value float64 `json:"valor" validate:"required,gt=0"`
}

// paymentFailure is the body returned when the relay could not complete a
// payment. The field names follow the gateway's own error body.
type paymentFailure struct {
	Error        string `json:"error"`
	ResponseCode string `json:"output_ResponseCode"`
}

// processPaymentHandler godoc
//
//	@Summary		Submit a C2B payment
//	@Description	Validates the request and forwards it to the payment gateway with bounded retries. The gateway body is returned verbatim on success.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		processPaymentPayload	true	"Payment request"
//	@Success		200		{object}	payments.PaymentResponse
//	@Failure		400		{object}	error	"Invalid phone, value or reference"
//	@Failure		500		{object}	paymentFailure
//	@Failure		504		{string}	string	"Request deadline elapsed, no body"
//	@Security		ApiKeyAuth
//	@Router			/payments [post]
func (app *application) processPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload processPaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.submitPayment(w, r, payments.PaymentRequest{
		Phone:     payload.Phone,
		Amount:    decimal.NewFromFloat(payload.Value),
		Reference: payload.Reference,
	})
}

// mpesaPaymentHandler godoc
//
//	@Summary		Submit an M-Pesa payment with a generated reference
//	@Description	Accepts a local or international MSISDN, normalises it to 258XXXXXXXXX and generates the third-party reference.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		mpesaPaymentPayload	true	"Payment request"
//	@Success		200		{object}	payments.PaymentResponse
//	@Failure		400		{object}	error	"Invalid phone or value"
//	@Failure		500		{object}	paymentFailure
//	@Failure		504		{string}	string	"Request deadline elapsed, no body"
//	@Security		ApiKeyAuth
//	@Router			/payments/mpesa [post]
func (app *application) mpesaPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload mpesaPaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	phone := payments.NormalizeMSISDN(payload.Phone)
	if err := Validate.Var(phone, "mzphone"); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid phone number %q", payload.Phone))
		return
	}

	ref, err := app.references.Generate()
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.submitPayment(w, r, payments.PaymentRequest{
		Phone:     phone,
		Amount:    decimal.NewFromFloat(payload.Value),
		Reference: ref,
	})
}

// submitPayment runs the invoker detached from the request so a payment in
// flight is never abandoned halfway. If the request deadline passes first
// nothing is written: the outcome is logged and dropped.
func (app *application) submitPayment(w http.ResponseWriter, r *http.Request, req payments.PaymentRequest) {
	newGateway, err := app.payments.Factory(app.config.payment.method)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	ctx := r.Context()
	log := app.logger.With("reference", req.Reference, "caller", getCallerFromContext(r))
	log.Infow("payment requested", "phone", req.Phone, "amount", req.Amount.String())

	outcomes := make(chan invoker.Outcome, 1)
	go func() {
		outcomes <- app.invoker.Invoke(context.WithoutCancel(ctx), req, app.config.payment.policy, newGateway)
	}()

	select {
	case <-ctx.Done():
		log.Warnw("request ended before payment outcome, response dropped", "error", ctx.Err())
		go func() {
			out := <-outcomes
			log.Warnw("late payment outcome ignored", "success", out.Succeeded(), "attempts", out.Attempts)
		}()
		return
	case out := <-outcomes:
		if ctx.Err() != nil {
			log.Warnw("payment outcome arrived after request deadline, response dropped", "success", out.Succeeded())
			return
		}

		if out.Failure != nil {
			writeJSON(w, http.StatusInternalServerError, paymentFailure{
				Error:        out.Failure.Message,
				ResponseCode: out.Failure.Code,
			})
			return
		}

		writeJSON(w, http.StatusOK, out.Payload)
	}
}
