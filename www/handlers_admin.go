package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"supplyline/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.engine.DB().GetAdminUser(req.Username)
	if err != nil || !checkPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.sessions.setUser(w, r, user.Username)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged in"})
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.clear(w, r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

type passwordRequest struct {
	Current string `json:"current"`
	New     string `json:"new"`
}

func (h *Handlers) apiChangePassword(w http.ResponseWriter, r *http.Request) {
	username, _ := h.sessions.getUser(r)
	var req passwordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.New) < 6 {
		writeError(w, http.StatusBadRequest, "new password must be at least 6 characters")
		return
	}
	user, err := h.engine.DB().GetAdminUser(username)
	if err != nil || !checkPassword(req.Current, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "current password incorrect")
		return
	}
	hash, err := hashPassword(req.New)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.engine.DB().UpdateAdminPassword(username, hash); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// Suppliers

func (h *Handlers) apiListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.engine.DB().ListSuppliers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"suppliers": suppliers})
}

func (h *Handlers) apiCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var s store.Supplier
	if err := decodeBody(r, &s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if s.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if err := h.engine.DB().CreateSupplier(&s); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.engine.DataChanged("suppliers")
	writeJSON(w, http.StatusCreated, s)
}

func (h *Handlers) apiUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var s store.Supplier
	if err := decodeBody(r, &s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.ID = chi.URLParam(r, "id")
	if err := h.engine.DB().UpdateSupplier(&s); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.engine.DataChanged("suppliers")
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) apiDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DB().DeleteSupplier(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.engine.DataChanged("suppliers")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Inventory items

func (h *Handlers) apiListInventoryItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.DB().ListInventoryItems()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) apiCreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var it store.InventoryItem
	if err := decodeBody(r, &it); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if it.Name == "" || it.Category == "" {
		writeError(w, http.StatusBadRequest, "name and category are required")
		return
	}
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	if err := h.engine.DB().CreateInventoryItem(&it); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.engine.DataChanged("inventory_items")
	writeJSON(w, http.StatusCreated, it)
}

func (h *Handlers) apiUpdateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var it store.InventoryItem
	if err := decodeBody(r, &it); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	it.ID = chi.URLParam(r, "id")
	if err := h.engine.DB().UpdateInventoryItem(&it); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.engine.DataChanged("inventory_items")
	writeJSON(w, http.StatusOK, it)
}

func (h *Handlers) apiDeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DB().DeleteInventoryItem(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.engine.DataChanged("inventory_items")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Locations

func (h *Handlers) apiListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.engine.DB().ListLocations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"locations": locations})
}

func (h *Handlers) apiCreateLocation(w http.ResponseWriter, r *http.Request) {
	var l store.Location
	if err := decodeBody(r, &l); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if l.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if err := h.engine.DB().CreateLocation(&l); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.engine.DataChanged("locations")
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handlers) apiUpdateLocation(w http.ResponseWriter, r *http.Request) {
	var l store.Location
	if err := decodeBody(r, &l); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	l.ID = chi.URLParam(r, "id")
	if err := h.engine.DB().UpdateLocation(&l); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.engine.DataChanged("locations")
	writeJSON(w, http.StatusOK, l)
}

func (h *Handlers) apiDeleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DB().DeleteLocation(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.engine.DataChanged("locations")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
