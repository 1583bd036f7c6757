package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/teller/pkg/banksdk"
	"github.com/aussiebroadwan/teller/pkg/httpx"
)

// LivezHandler godoc
//
//	@Summary		Liveness check
//	@Description	Answers 200 while the process is up. Dependencies are not checked, see /readyz.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	banksdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, health(startTime, version))
	}
}

func health(startTime time.Time, version string) banksdk.HealthResponse {
	return banksdk.HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(startTime).Round(time.Second).String(),
		Version: version,
	}
}
