package www

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"supplyline/deferred"
)

// apiListDeferred returns the full deferred queue.
func (h *Handlers) apiListDeferred(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.DB().ListDeferredItems()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

type moveToLaterRequest struct {
	OrderItemIDs           []string   `json:"order_item_ids"`
	PreferredSupplierID    *string    `json:"preferred_supplier_id"`
	PreferredLocationGroup *string    `json:"preferred_location_group"`
	LocationID             string     `json:"location_id"`
	LocationName           string     `json:"location_name"`
	ItemID                 *string    `json:"item_id"`
	ItemName               string     `json:"item_name"`
	Unit                   string     `json:"unit"`
	Quantity               float64    `json:"quantity"`
	Note                   string     `json:"note"`
	ScheduledAt            *time.Time `json:"scheduled_at"`
}

// apiMoveToLater moves an aggregated item into the Order Later queue.
func (h *Handlers) apiMoveToLater(w http.ResponseWriter, r *http.Request) {
	var req moveToLaterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.engine.MoveToLater(deferred.MoveToLaterRequest{
		SourceOrderItemIDs:     req.OrderItemIDs,
		PreferredSupplierID:    req.PreferredSupplierID,
		PreferredLocationGroup: req.PreferredLocationGroup,
		LocationID:             req.LocationID,
		LocationName:           req.LocationName,
		ItemID:                 req.ItemID,
		ItemName:               req.ItemName,
		Unit:                   req.Unit,
		Quantity:               req.Quantity,
		Note:                   req.Note,
		ScheduledAt:            req.ScheduledAt,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type promoteRequest struct {
	SupplierID    string `json:"supplier_id"`
	LocationGroup string `json:"location_group"`
}

// apiPromoteDeferred promotes a deferred item into a supplier's draft set.
func (h *Handlers) apiPromoteDeferred(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req promoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.engine.PromoteDeferred(id, req.SupplierID, req.LocationGroup)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

type scheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

// apiRescheduleDeferred updates a deferred item's scheduled time.
func (h *Handlers) apiRescheduleDeferred(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req scheduleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.RescheduleDeferred(id, req.ScheduledAt); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rescheduled"})
}

// apiRemoveDeferred deletes a deferred item and its drafts.
func (h *Handlers) apiRemoveDeferred(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.engine.RemoveDeferred(id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
