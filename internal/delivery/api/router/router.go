// Package router wires the HTTP handlers to their routes.
package router

import (
	"usermgmt/config"
	"usermgmt/internal/delivery/api/router/handler"
	"usermgmt/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler *handler.UserHandler
	Prom        *metrics.Prom `optional:"true"`
	Config      *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler *handler.UserHandler
	prom        *metrics.Prom
	config      *config.Config
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler: params.UserHandler,
		prom:        params.Prom,
		config:      params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
// Echo prefers static segments, so /users/all and /users/id/:id win over /users/:email.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	usersGroup := e.Group("/users")
	{
		usersGroup.GET("/all", r.userHandler.FindAll)
		usersGroup.POST("/add", r.userHandler.Add)
		usersGroup.PUT("/update", r.userHandler.Update)
		usersGroup.GET("/id/:id", r.userHandler.FindByID)
		usersGroup.GET("/:email", r.userHandler.FindByEmail)
		usersGroup.DELETE("/:email", r.userHandler.DeleteByEmail)
	}
}

// RegisterMetricsRoute exposes the Prometheus registry when metrics are enabled.
func (r *router) RegisterMetricsRoute(e *echo.Echo) {
	if r.prom == nil || r.config.Metrics == nil || !r.config.Metrics.Enabled {
		return
	}

	e.GET(r.config.Metrics.Path, echo.WrapHandler(r.prom.Handler()))
}
