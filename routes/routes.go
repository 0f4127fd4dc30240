package routes

import (
	"net/http"

	"github.com/arenastack/tournament-registration/handlers"
	"github.com/arenastack/tournament-registration/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	registrationHandler *handlers.RegistrationHandler,
	adminHandler *handlers.AdminHandler,
	uploadHandler *handlers.UploadHandler,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret string,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Post("/auth/login", authHandler.Login)

	// Публичные маршруты каталога и регистрации
	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.Get)
		r.Get("/{tournamentID}/availability", tournamentHandler.Availability)
		r.Get("/{tournamentID}/stats", tournamentHandler.Stats)
		r.Post("/{tournamentID}/registrations", registrationHandler.Register)
	})

	router.Post("/uploads/payment-proof", uploadHandler.UploadPaymentProof)

	// Подписка на изменения реестра
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeTournament)
	router.Get("/ws/all", webSocketHandler.ServeAll)

	// Защищённые маршруты панели администратора
	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(jwtSecret)))
		r.Use(middleware.RequireAdmin)

		r.Get("/dashboard", adminHandler.Dashboard)
		r.Get("/registrations", adminHandler.ListRegistrations)
		r.Get("/registrations/{registrationID}", adminHandler.GetRegistration)
		r.Get("/registrations/{registrationID}/audit", adminHandler.GetAuditTrail)
		r.Patch("/registrations/{registrationID}/status", adminHandler.UpdateStatus)
		r.Patch("/tournaments/{tournamentID}/active", adminHandler.SetTournamentActive)
	})
}
