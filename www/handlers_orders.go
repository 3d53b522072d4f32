package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"supplyline/store"
)

type lineIDsRequest struct {
	OrderItemIDs []string `json:"order_item_ids"`
	SupplierID   string   `json:"supplier_id"`
}

// apiMoveSupplier sets a supplier override on a set of order lines.
func (h *Handlers) apiMoveSupplier(w http.ResponseWriter, r *http.Request) {
	var req lineIDsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.MoveSupplier(req.OrderItemIDs, req.SupplierID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}

// apiMoveBack clears the supplier override on a set of order lines.
func (h *Handlers) apiMoveBack(w http.ResponseWriter, r *http.Request) {
	var req lineIDsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.MoveBack(req.OrderItemIDs); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "moved back"})
}

// apiCancelLines cancels a set of pending order lines.
func (h *Handlers) apiCancelLines(w http.ResponseWriter, r *http.Request) {
	var req lineIDsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.CancelLines(req.OrderItemIDs); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

type decideRequest struct {
	Quantity  float64 `json:"quantity"`
	DecidedBy string  `json:"decided_by"`
}

// apiDecideQuantity records a manager's decision on a remaining-mode line.
func (h *Handlers) apiDecideQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req decideRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	decidedBy := req.DecidedBy
	if decidedBy == "" {
		decidedBy, _ = h.sessions.getUser(r)
	}
	if err := h.engine.DecideQuantity(id, req.Quantity, decidedBy); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "decided"})
}

type noteRequest struct {
	Note string `json:"note"`
}

// apiUpdateNote edits an order line's note.
func (h *Handlers) apiUpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req noteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.UpdateNote(id, req.Note); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type orderLineRequest struct {
	InventoryItemID   string   `json:"inventory_item_id"`
	UnitType          string   `json:"unit_type"`
	InputMode         string   `json:"input_mode"`
	Quantity          float64  `json:"quantity"`
	RemainingReported *float64 `json:"remaining_reported"`
	Note              string   `json:"note"`
}

type createOrderRequest struct {
	LocationID string             `json:"location_id"`
	UserID     string             `json:"user_id"`
	Lines      []orderLineRequest `json:"lines"`
}

// apiCreateOrder is the employee order intake path: one submitted order with
// its lines. Each line is validated against the two input modes.
func (h *Handlers) apiCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LocationID == "" || req.UserID == "" || len(req.Lines) == 0 {
		writeError(w, http.StatusBadRequest, "location_id, user_id and at least one line are required")
		return
	}
	for _, ln := range req.Lines {
		if ln.InventoryItemID == "" {
			writeError(w, http.StatusBadRequest, "every line needs an inventory_item_id")
			return
		}
		switch ln.InputMode {
		case store.InputModeQuantity, "":
			if ln.Quantity <= 0 {
				writeError(w, http.StatusBadRequest, "quantity-mode lines need a positive quantity")
				return
			}
		case store.InputModeRemaining:
			if ln.RemainingReported == nil {
				writeError(w, http.StatusBadRequest, "remaining-mode lines need remaining_reported")
				return
			}
		default:
			writeError(w, http.StatusBadRequest, "unknown input_mode")
			return
		}
	}

	db := h.engine.DB()
	order := &store.Order{
		ID:         uuid.New().String(),
		LocationID: req.LocationID,
		UserID:     req.UserID,
		Status:     store.OrderStatusSubmitted,
	}
	if err := db.CreateOrder(order); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, ln := range req.Lines {
		unitType := ln.UnitType
		if unitType == "" {
			unitType = store.UnitTypeBase
		}
		inputMode := ln.InputMode
		if inputMode == "" {
			inputMode = store.InputModeQuantity
		}
		line := &store.OrderLine{
			ID:                uuid.New().String(),
			OrderID:           order.ID,
			InventoryItemID:   ln.InventoryItemID,
			UnitType:          unitType,
			InputMode:         inputMode,
			Quantity:          ln.Quantity,
			RemainingReported: ln.RemainingReported,
			Note:              ln.Note,
			Status:            store.LineStatusPending,
		}
		if err := db.AddOrderLine(line); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	h.engine.DataChanged("orders")
	writeJSON(w, http.StatusCreated, map[string]string{"order_id": order.ID})
}
