package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/chatfront/backend/internal/handler/chat"
	"github.com/zhouzirui/chatfront/backend/internal/handler/live"
	"github.com/zhouzirui/chatfront/backend/internal/handler/web"
	middlewarePkg "github.com/zhouzirui/chatfront/backend/internal/middleware"
	"github.com/zhouzirui/chatfront/backend/internal/model/catalog"
	chatService "github.com/zhouzirui/chatfront/backend/internal/service/chat"
	"github.com/zhouzirui/chatfront/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(models catalog.Store, chatSvc *chatService.Service, page web.Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	web.New(chatSvc, models, page).RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": chatSvc.Count(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.CORS)

		chat.New(chatSvc, models).RegisterRoutes(api)
		live.New(chatSvc).RegisterRoutes(api)
	})

	return r
}
