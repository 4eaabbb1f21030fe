// Package router registers the HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ahmdrza1383/db-project/internal/config"
	"github.com/ahmdrza1383/db-project/internal/handler"
	"github.com/ahmdrza1383/db-project/internal/middleware"
	"github.com/ahmdrza1383/db-project/internal/model"
)

// Register wires every route. /healthz is public; everything under /v1
// requires a valid access token, with buyer operations restricted to
// USER and moderation to ADMIN. The hot hold and payment routes carry
// the Redis rate limiter.
func Register(e *echo.Echo, res *handler.ReservationHandler, adm *handler.AdminHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))

	limited := middleware.RateLimit(rlCfg, rdb)

	user := v1.Group("", middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	user.GET("/me", res.Me)
	user.GET("/tickets/:id", res.TicketDetails)
	user.GET("/reservations/:id/payments", res.ListPayments)
	user.POST("/tickets/:id/reserve", res.HoldSeat, limited)
	user.POST("/payments", res.Pay, limited)
	user.GET("/reservations/:id/cancellation", res.PreviewCancel)
	user.DELETE("/reservations/:id", res.Cancel)
	user.POST("/reservations/:id/requests", res.CreateRequest)

	admin := v1.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/tickets", adm.CreateTicket)
	admin.POST("/requests/:id/approve", adm.ApproveRequest)
	admin.POST("/requests/:id/reject", adm.RejectRequest)
}
