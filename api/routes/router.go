package routes

import (
	"net/http"
	"time"

	"darshan/internal/bookings"
	"darshan/internal/crowd"
	"darshan/internal/emergency"
	"darshan/internal/parking"
	"darshan/internal/payments"
	"darshan/internal/queue"
	"darshan/internal/shared/config"
	"darshan/internal/shared/database"
	"darshan/internal/shared/utils/response"
	"darshan/internal/traffic"
	"darshan/internal/weather"
	"darshan/pkg/logger"
	"darshan/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Controllers bundles every domain controller for route registration
type Controllers struct {
	Queue     *queue.Controller
	Crowd     *crowd.Controller
	Weather   *weather.Controller
	Parking   *parking.Controller
	Bookings  *bookings.Controller
	Payments  *payments.Controller
	Traffic   *traffic.Controller
	Emergency *emergency.Controller
}

// SetupRouter builds the gin engine with middleware, health endpoints and
// all domain routes mounted under the API base path.
func SetupRouter(cfg *config.Config, db *database.DB, ctrls Controllers, limiter *ratelimit.RateLimiter, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if limiter != nil {
		router.Use(ratelimit.Middleware(limiter))
	}

	router.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			response.RespondJSON(c, "error", http.StatusServiceUnavailable, "Service unhealthy", nil, map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		response.RespondJSON(c, "success", http.StatusOK, "Service healthy", map[string]interface{}{
			"status": "up",
		}, nil)
	})

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := router.Group(cfg.GetAPIBasePath())
	{
		queue.RegisterRoutes(api, ctrls.Queue, cfg)
		crowd.RegisterRoutes(api, ctrls.Crowd, cfg)
		weather.RegisterRoutes(api, ctrls.Weather)
		parking.RegisterRoutes(api, ctrls.Parking, cfg)
		bookings.RegisterRoutes(api, ctrls.Bookings, cfg)
		payments.RegisterRoutes(api, ctrls.Payments, cfg)
		traffic.RegisterRoutes(api, ctrls.Traffic, cfg)
		emergency.RegisterRoutes(api, ctrls.Emergency, cfg)
	}

	return router
}

// requestLogger logs every request with latency and status
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogHTTPRequest(c, time.Since(start))
	}
}
