// Package server mounts every HTTP route of the association backend.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/magheya/lds-backend/internal/activity"
	"github.com/magheya/lds-backend/internal/auth"
	"github.com/magheya/lds-backend/internal/community"
	"github.com/magheya/lds-backend/internal/events"
	"github.com/magheya/lds-backend/internal/httpjson"
	"github.com/magheya/lds-backend/internal/middleware"
	"github.com/magheya/lds-backend/internal/shop"
	"github.com/magheya/lds-backend/internal/store"
	"github.com/magheya/lds-backend/internal/upload"
)

// Deps are the collaborators the router needs, built once in main.
type Deps struct {
	Store          *store.Store
	Auth           *auth.Authenticator
	Uploads        upload.Uploader
	MaxUploadBytes int64
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter builds the chi router with every route and middleware.
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	authHandler := auth.NewHandler(d.Auth)
	shopHandler := shop.NewHandler(d.Store, d.Uploads, d.MaxUploadBytes, log)
	eventsHandler := events.NewHandler(d.Store, d.Uploads, d.MaxUploadBytes)
	communityHandler := community.NewHandler(d.Store)
	feed := activity.NewFeed(d.Store)

	admin := middleware.RequireAdmin(d.Auth)
	// Public submissions never carry files.
	public := chimw.RequestSize(httpjson.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpjson.WriteError(w, http.StatusNotFound, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpjson.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.DB().PingContext(r.Context()); err != nil {
			httpjson.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get(upload.PublicPrefix+"*", upload.Handler(d.Uploads))

	r.Route("/api", func(r chi.Router) {
		r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
			httpjson.WriteJSON(w, http.StatusOK, map[string]string{"message": "API is working!"})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", shopHandler.ListProducts)
			r.Get("/category/{category}", shopHandler.ListProductsByCategory)
			r.With(admin).Post("/", shopHandler.CreateProduct)
			r.With(admin).Put("/{id}", shopHandler.UpdateProduct)
			r.With(admin).Delete("/{id}", shopHandler.DeleteProduct)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventsHandler.ListEvents)
			r.Get("/type/{type}", eventsHandler.ListEventsByType)
			r.With(admin).Post("/", eventsHandler.CreateEvent)
			r.With(admin).Put("/{id}", eventsHandler.UpdateEvent)
			r.With(admin).Delete("/{id}", eventsHandler.DeleteEvent)
		})

		r.Route("/registrations", func(r chi.Router) {
			r.With(public).Post("/", eventsHandler.CreateRegistration)
			r.With(admin).Get("/", eventsHandler.ListRegistrations)
			r.With(admin).Get("/event/{eventID}", eventsHandler.ListRegistrationsByEvent)
			r.With(admin).Delete("/{id}", eventsHandler.DeleteRegistration)
		})

		r.Route("/donations", func(r chi.Router) {
			r.With(public).Post("/", communityHandler.CreateDonation)
			r.With(admin).Get("/", communityHandler.ListDonations)
			r.With(admin).Get("/type/{type}", communityHandler.ListDonationsByType)
		})

		r.Route("/messages", func(r chi.Router) {
			r.With(public).Post("/", communityHandler.CreateMessage)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/", communityHandler.ListMessages)
				r.Get("/unread", communityHandler.ListUnreadMessages)
				r.Get("/{id}", communityHandler.GetMessage)
				r.Put("/{id}/read", communityHandler.MarkMessageRead)
				r.Delete("/{id}", communityHandler.DeleteMessage)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(public).Post("/", shopHandler.CreateOrder)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/", shopHandler.ListOrders)
				r.Get("/{id}", shopHandler.GetOrder)
				r.Put("/{id}/status", shopHandler.UpdateOrderStatus)
				r.Delete("/{id}", shopHandler.DeleteOrder)
			})
		})

		r.With(admin).Get("/activities", activity.Handler(feed))

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Get("/check-auth", authHandler.CheckAuth)
			r.With(admin).Post("/logout", authHandler.Logout)
		})
	})

	return r
}
