// Package router registers the application's HTTP routes.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tickethub/helpdesk-api/internal/handler"
)

// Register wires all routes onto the Echo instance. The identity
// middleware is installed globally by main and runs before every route
// here, public ones included; protected handlers reject on their own when
// no identity was attached. limiter guards the credential endpoints and
// cache may serve the list endpoints; either can be a no-op.
func Register(e *echo.Echo, a *handler.AuthHandler, cat *handler.CategoryHandler, tk *handler.TicketHandler, limiter, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	// Credential lifecycle.
	e.POST("/signup", a.Signup, limiter)
	e.POST("/login", a.Login, limiter)
	e.GET("/logout", a.Logout)
	e.GET("/refresh", a.Refresh)

	// Owner-scoped resources.
	e.POST("/categories", cat.Create)
	e.GET("/categories", cat.List, cache)
	e.GET("/categories/:id", cat.Get)
	e.PUT("/categories/:id", cat.Update)
	e.DELETE("/categories/:id", cat.Delete)

	e.POST("/tickets", tk.Create)
	e.GET("/tickets", tk.List, cache)
	e.GET("/tickets/:id", tk.Get)
	e.PUT("/tickets/:id", tk.Update)
	e.DELETE("/tickets/:id", tk.Delete)
}
