package www

import (
	"net/http"

	"supplyline/engine"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	engine   *engine.Engine
	sessions *sessionStore
	eventHub *EventHub
}

// NewRouter creates the chi router and returns it along with a stop function.
func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: NewEventHub(),
	}

	h.eventHub.Start()
	h.eventHub.SetupEngineListeners(eng)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// SSE (no auth — order intake tablets)
	r.Get("/events", h.eventHub.HandleSSE)

	// Login/logout
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	r.Route("/api", func(r chi.Router) {
		// Read-only views and order intake (no auth — shared tablets)
		r.Get("/aggregation", h.apiAggregation)
		r.Get("/aggregation/suppliers/{supplierID}/locations", h.apiLocationSplit)
		r.Get("/aggregation/issues", h.apiIssues)
		r.Get("/deferred", h.apiListDeferred)
		r.Get("/suppliers", h.apiListSuppliers)
		r.Get("/inventory-items", h.apiListInventoryItems)
		r.Get("/locations", h.apiListLocations)
		r.Post("/orders", h.apiCreateOrder)

		// Manager actions (session-guarded)
		r.Group(func(r chi.Router) {
			r.Use(h.adminMiddleware)

			r.Post("/refresh", h.apiRefresh)
			r.Get("/confirmation/{supplierID}", h.apiConfirmation)
			r.Post("/confirmation/{supplierID}/send", h.apiSendBatch)

			r.Post("/order-items/move-supplier", h.apiMoveSupplier)
			r.Post("/order-items/move-back", h.apiMoveBack)
			r.Post("/order-items/cancel", h.apiCancelLines)
			r.Put("/order-items/{id}/decide", h.apiDecideQuantity)
			r.Put("/order-items/{id}/note", h.apiUpdateNote)

			r.Post("/deferred", h.apiMoveToLater)
			r.Post("/deferred/{id}/promote", h.apiPromoteDeferred)
			r.Put("/deferred/{id}/schedule", h.apiRescheduleDeferred)
			r.Delete("/deferred/{id}", h.apiRemoveDeferred)

			// Catalog administration
			r.Post("/suppliers", h.apiCreateSupplier)
			r.Put("/suppliers/{id}", h.apiUpdateSupplier)
			r.Delete("/suppliers/{id}", h.apiDeleteSupplier)
			r.Post("/inventory-items", h.apiCreateInventoryItem)
			r.Put("/inventory-items/{id}", h.apiUpdateInventoryItem)
			r.Delete("/inventory-items/{id}", h.apiDeleteInventoryItem)
			r.Post("/locations", h.apiCreateLocation)
			r.Put("/locations/{id}", h.apiUpdateLocation)
			r.Delete("/locations/{id}", h.apiDeleteLocation)

			r.Post("/password", h.apiChangePassword)
		})
	})

	return r, func() {
		h.eventHub.Stop()
	}
}

func (h *Handlers) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := h.sessions.getUser(r)
		if !ok || username == "" {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
