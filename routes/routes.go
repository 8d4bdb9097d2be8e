package routes

import (
	"github.com/Gabrielssrs/Robotech-sub000/handlers"
	"github.com/Gabrielssrs/Robotech-sub000/middleware"
	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Tournament  *handlers.TournamentHandler
	Match       *handlers.MatchHandler
	Participant *handlers.ParticipantHandler
	Robot       *handlers.RobotHandler
	Reference   *handlers.ReferenceHandler
	WebSocket   *handlers.WebSocketHandler
	Debug       *handlers.DebugHandler // nil unless debug endpoints are enabled
}

func SetupRoutes(router *chi.Mux, jwtSecret string, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Route("/venues", func(r chi.Router) {
		r.Get("/", h.Reference.ListVenues)
		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Post("/", h.Reference.CreateVenue)
			r.Put("/{venueID}", h.Reference.UpdateVenue)
			r.Delete("/{venueID}", h.Reference.DeleteVenue)
		})
	})

	router.Route("/categories", func(r chi.Router) {
		r.Get("/", h.Reference.ListCategories)
		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Post("/", h.Reference.CreateCategory)
			r.Put("/{categoryID}", h.Reference.UpdateCategory)
			r.Delete("/{categoryID}", h.Reference.DeleteCategory)
		})
	})

	router.Route("/robots", func(r chi.Router) {
		r.Get("/{robotID}", h.Robot.GetByID)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", h.Robot.ListMine)
			r.Post("/", h.Robot.Create)
			r.Put("/{robotID}", h.Robot.Update)
			r.Delete("/{robotID}", h.Robot.Delete)
			r.Put("/{robotID}/photo", h.Robot.UploadPhoto)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Get("/{tournamentID}", h.Tournament.GetFull)
		r.Get("/{tournamentID}/matches", h.Match.ListByTournament)
		r.Get("/{tournamentID}/participants", h.Participant.ListByTournament)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{tournamentID}/participants", h.Participant.Register)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Post("/", h.Tournament.Create)
			r.Put("/{tournamentID}", h.Tournament.Update)
			r.Post("/{tournamentID}/cancel", h.Tournament.Cancel)
			r.Post("/{tournamentID}/start", h.Tournament.Start)
			r.Post("/{tournamentID}/bracket", h.Tournament.SeedBracket)
		})
	})

	router.Route("/participants", func(r chi.Router) {
		r.Use(authenticate)
		r.Delete("/{participantID}", h.Participant.Withdraw)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.Match.GetByID)
		r.Get("/{matchID}/readiness", h.Match.Readiness)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{matchID}/scores", h.Match.SubmitScore)
		})
		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Post("/{matchID}/replay", h.Match.ResolveTie)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	if h.Debug != nil {
		router.Route("/debug", func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Post("/tournaments/{tournamentID}/force-seed", h.Debug.ForceSeed)
			r.Post("/tournaments/{tournamentID}/force-start", h.Debug.ForceStart)
			r.Post("/tournaments/{tournamentID}/force-complete", h.Debug.ForceComplete)
			r.Post("/matches/{matchID}/force-start", h.Debug.ForceStartMatch)
		})
	}
}
