package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// apiAggregation returns the current snapshot: supplier groups plus the load
// timestamp. The snapshot is read as-is; it is never recomputed per request.
func (h *Handlers) apiAggregation(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"groups":       snap.Groups,
		"refreshed_at": snap.RefreshedAt,
	})
}

// apiLocationSplit returns one supplier's per-location-group rows.
func (h *Handlers) apiLocationSplit(w http.ResponseWriter, r *http.Request) {
	supplierID := chi.URLParam(r, "supplierID")
	rows, err := h.engine.LocationSplit(supplierID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": rows})
}

// apiIssues exposes the resolver's diagnostic issue list.
func (h *Handlers) apiIssues(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"issues":     snap.Issues,
		"unresolved": snap.Unresolved,
	})
}

// apiRefresh requests an immediate reload. The reload runs asynchronously;
// clients watch the SSE stream for completion.
func (h *Handlers) apiRefresh(w http.ResponseWriter, r *http.Request) {
	h.engine.Refresh()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh requested"})
}

type confirmationRequest struct {
	Overrides map[string]float64 `json:"overrides"`
}

// apiConfirmation builds the review/send view for one supplier from a fresh
// load, applying the manager's quantity overrides.
func (h *Handlers) apiConfirmation(w http.ResponseWriter, r *http.Request) {
	supplierID := chi.URLParam(r, "supplierID")

	var req confirmationRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	conf, err := h.engine.BuildConfirmation(supplierID, req.Overrides)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

type sendBatchRequest struct {
	Overrides map[string]float64 `json:"overrides"`
	SentBy    string             `json:"sent_by"`
}

// apiSendBatch freezes and queues the supplier batch.
func (h *Handlers) apiSendBatch(w http.ResponseWriter, r *http.Request) {
	supplierID := chi.URLParam(r, "supplierID")

	var req sendBatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SentBy == "" {
		req.SentBy, _ = h.sessions.getUser(r)
	}

	msg, err := h.engine.SendSupplierBatch(supplierID, req.SentBy, req.Overrides)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
