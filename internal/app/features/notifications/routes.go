// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/laag/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/unread-count", h.ServeUnreadCount)
	r.Post("/read-all", h.HandleReadAll)
	r.Post("/{id}/read", h.HandleRead)
	r.Post("/{id}/unread", h.HandleUnread)
	r.Get("/ws", h.ServeWS)
	return r
}
