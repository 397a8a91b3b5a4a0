package ingest

import (
	"errors"
	"net/http"

	"github.com/organ-c/storepulse/internal/httpx"
	"github.com/organ-c/storepulse/internal/observation"
)

type Handler struct {
	Pipeline *Pipeline
}

type ingestResponse struct {
	Status string `json:"status"`
	Summary
}

// Ingest accepts one observation, runs it through the pipeline, and returns
// the analysis summary. Oracle failures map to 502 since the scoring
// backend is a separate service; persistence failures map to 500.
func (h Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var obs observation.Observation
	if err := httpx.ReadJSON(r, &obs, 1<<20); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := obs.Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.Pipeline.Process(r.Context(), obs)
	if err != nil {
		var oe *OracleError
		if errors.As(err, &oe) {
			httpx.WriteError(w, http.StatusBadGateway, "scoring unavailable")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to persist observation")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ingestResponse{Status: "success", Summary: summary})
}
