// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"projectbasis/internal/delivery/http/middleware"
	"projectbasis/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler       *handler.UserHandler
	TaskHandler       *handler.TaskHandler
	AuthMiddleware    *middleware.AuthMiddleware
	MetricsMiddleware *middleware.MetricsMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler       *handler.UserHandler
	taskHandler       *handler.TaskHandler
	authMiddleware    *middleware.AuthMiddleware
	metricsMiddleware *middleware.MetricsMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:       params.UserHandler,
		taskHandler:       params.TaskHandler,
		authMiddleware:    params.AuthMiddleware,
		metricsMiddleware: params.MetricsMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", r.metricsMiddleware.Expose)

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.userHandler.RegisterUser)
		authGroup.POST("/login", r.userHandler.Login)
	}

	userGroup := e.Group("/users")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.GET("", r.userHandler.ListUsers)
		userGroup.GET("/me", r.userHandler.GetProfile)
		userGroup.PATCH("/me", r.userHandler.UpdateProfile)
		userGroup.DELETE("/me", r.userHandler.DeleteProfile)
	}

	taskGroup := e.Group("/tasks")
	taskGroup.Use(r.authMiddleware.Authenticate)
	{
		taskGroup.GET("/:id", r.taskHandler.GetTask)
	}
}
