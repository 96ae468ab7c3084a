package main

import (
	"net/http"
	"time"

	"github.com/elprogramador2024/gestor-tareas/internal/api"
	apiMiddleware "github.com/elprogramador2024/gestor-tareas/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"
)

// routes creates the application router with all routes and middleware.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	tokenLifetime := time.Duration(app.config.Auth.TokenLifetimeMinutes) * time.Minute
	authHandler := api.NewAuthHandler(app.directory, app.jwtService, app.limiter, tokenLifetime, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.directory)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	userHandler := api.NewUserHandler(app.userService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/usuarios/login", authHandler.Login)
		r.Post("/usuarios/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/tareas", taskHandler.ListAll)
			r.Post("/tareas", taskHandler.Create)
			r.Put("/tareas", taskHandler.Update)
			r.Patch("/tareas/estado", taskHandler.UpdateStatus)
			r.Get("/tareas/usuario/{userName}", taskHandler.ListByUser)
			r.Get("/tareas/{id}", taskHandler.Get)
			r.Delete("/tareas/{id}", taskHandler.Delete)

			r.Get("/usuarios", userHandler.List)
			r.Post("/usuarios", userHandler.Create)
			r.Put("/usuarios", userHandler.Update)
			r.Delete("/usuarios/{userName}", userHandler.Delete)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	origins := app.config.Server.CORSAllowedOrigins
	if len(origins) == 0 {
		return r
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.ExposedHeaders([]string{"Retry-After"}),
		handlers.MaxAge(600),
	)(r)
}
