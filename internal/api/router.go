package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/taskflow/taskflow/internal/api/handler"
	"github.com/taskflow/taskflow/internal/api/middleware"
	"github.com/taskflow/taskflow/internal/auth"
	"github.com/taskflow/taskflow/internal/task"
	"github.com/taskflow/taskflow/internal/team"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	AuthService *auth.Service
	Users       auth.UserRepository
	Teams       team.Repository
	Tasks       task.Repository
	DBPinger    handler.DBPinger
	Version     string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	authHandler := handler.NewAuthHandler(deps.AuthService)
	taskHandler := handler.NewTaskHandler(deps.Tasks, deps.Users)
	teamHandler := handler.NewTeamHandler(deps.Teams)
	userHandler := handler.NewUserHandler(deps.Users)
	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)

	r.Get("/health", healthHandler.ServeHTTP)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.AuthService))
			r.Get("/me", authHandler.Me)
		})
	})

	// The role gate per operation lives in the task policy table; routes
	// attach it ahead of the handlers so disallowed roles never reach
	// body parsing or row loads.
	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService))

		r.With(middleware.RequireRole(task.RolesAllowed(task.OpCreate)...)).Post("/", taskHandler.Create)
		r.With(middleware.RequireRole(task.RolesAllowed(task.OpList)...)).Get("/", taskHandler.List)
		r.With(middleware.RequireRole(task.RolesAllowed(task.OpUpdate)...)).Put("/{taskID}", taskHandler.Update)
		r.With(middleware.RequireRole(task.RolesAllowed(task.OpDelete)...)).Delete("/{taskID}", taskHandler.Delete)
	})

	r.Route("/teams", func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService))
		r.Use(middleware.RequireRole(auth.RoleAdmin))

		r.Post("/", teamHandler.Create)
		r.Get("/", teamHandler.List)
		r.Delete("/{teamID}", teamHandler.Delete)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService))
		r.Use(middleware.RequireRole(auth.RoleAdmin))

		r.Put("/{userID}/team", userHandler.AssignTeam)
	})

	return r
}
