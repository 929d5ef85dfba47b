package handlers

import (
	"time"

	"fanverse/pkg/fanrpc"
	"fanverse/services/api-gateway/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Limits struct {
	LoginLimit   int
	LoginWindow  time.Duration
	ResendLimit  int
	ResendWindow time.Duration
}

type RouterDeps struct {
	Auth           *AuthHandler
	Profile        *ProfileHandler
	Limiter        *middleware.RateLimiter
	AuthClient     fanrpc.AuthServiceClient
	AllowedOrigins []string
	Limits         Limits
	RPCTimeout     time.Duration
	Log            *zap.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log), middleware.Deadline(d.RPCTimeout))

	config := cors.DefaultConfig()
	config.AllowOrigins = d.AllowedOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	r.Use(cors.New(config))

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", d.Auth.SignUp)
			auth.POST("/login", d.Limiter.Limit("login", d.Limits.LoginLimit, d.Limits.LoginWindow), d.Auth.Login)
			auth.POST("/refresh", d.Auth.Refresh)
			auth.POST("/logout", d.Auth.Logout)
			auth.POST("/resend", d.Limiter.Limit("resend", d.Limits.ResendLimit, d.Limits.ResendWindow), d.Auth.ResendConfirmation)
			auth.GET("/confirm", d.Auth.ConfirmEmail)
		}
		profiles := api.Group("/profiles")
		profiles.Use(middleware.AuthMiddleware(d.AuthClient))
		{
			profiles.GET("/:id", d.Profile.GetProfile)
			profiles.PATCH("/:id", d.Profile.UpdateProfile)
		}
	}

	return r
}
