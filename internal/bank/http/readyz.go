package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/teller/internal/bank/store"
	"github.com/aussiebroadwan/teller/pkg/banksdk"
	"github.com/aussiebroadwan/teller/pkg/httpx"
	"github.com/aussiebroadwan/teller/pkg/jwtx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness check
//	@Description	Reports whether the service can take traffic: the store answers a ping and a session signing key is loaded.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	banksdk.HealthResponse	"ready"
//	@Failure		503	{object}	banksdk.HealthResponse	"a dependency is down, see checks"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := banksdk.HealthChecks{Database: "ok", Signer: "ok"}
		ready := true

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			ready = false
		}
		if !keys.IsReady() {
			checks.Signer = "error: no signing key"
			ready = false
		}

		res := health(startTime, version)
		res.Checks = &checks
		if !ready {
			res.Status = "degraded"
			httpx.WriteJSON(w, http.StatusServiceUnavailable, res)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, res)
	}
}
