package retention

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/organ-c/storepulse/internal/httpx"
	"github.com/organ-c/storepulse/internal/logstore"
)

type Handler struct {
	Sweeper *Sweeper
	// DefaultDays is used when the request does not carry retention_days.
	DefaultDays int
}

// Cleanup triggers a sweep on demand. Safe to call repeatedly; a second
// call with no writes in between deletes nothing.
func (h Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	days := h.DefaultDays
	if v := strings.TrimSpace(r.URL.Query().Get("retention_days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "retention_days must be a positive integer")
			return
		}
		days = n
	}

	report := h.Sweeper.Sweep(r.Context(), days)
	httpx.WriteJSON(w, http.StatusOK, report)
}

// Counts reports how many records of each kind are currently stored.
func (h Handler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Sweeper.Counts(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to count logs")
		return
	}
	out := make(map[string]int, len(counts))
	for kind, n := range counts {
		out[string(kind)+"_logs"] = n
	}
	// Alerts are not "alert_logs" in the dashboard vocabulary.
	if n, ok := counts[logstore.KindAlert]; ok {
		delete(out, "alert_logs")
		out["alerts"] = n
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
