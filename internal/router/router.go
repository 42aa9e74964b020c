package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskboard/backend/api/handler"
)

type Handlers struct {
	Health  *apiHandler.HealthHandler
	Task    *apiHandler.TaskHandler
	Profile *apiHandler.ProfileHandler
}

func New(handlers Handlers, gate func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/", handlers.Health.Root)
	r.GET("/health", handlers.Health.Check)

	// Protected routes
	r.POST("/api/tasks", gate(handlers.Task.CreateTask))
	r.GET("/api/tasks", gate(handlers.Task.GetTasks))
	r.PUT("/api/tasks/{id}", gate(handlers.Task.UpdateTask))
	r.DELETE("/api/tasks/{id}", gate(handlers.Task.DeleteTask))

	r.GET("/api/profile", gate(handlers.Profile.GetProfile))
	r.PUT("/api/profile", gate(handlers.Profile.UpdateProfile))
	r.DELETE("/api/profile", gate(handlers.Profile.DeleteAccount))

	return r
}
