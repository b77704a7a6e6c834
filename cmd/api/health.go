package main

import "net/http"

// healthCheckHandler godoc
//
//	@Summary		Healthcheck
//	@Description	Reports service status, environment, version and active gateway
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	string	"ok"
//	@Failure		401	{object}	error
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
		"gateway": app.config.payment.method,
	}

	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
