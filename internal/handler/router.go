package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"referralhub/internal/config"
	"referralhub/internal/handler/middleware"
	jwtpkg "referralhub/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	authHandler *AuthHandler,
	referralCodeHandler *ReferralCodeHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes
	r.POST("/register/", authHandler.Register)
	r.POST("/token/", authHandler.Token)
	r.POST("/token/refresh/", authHandler.Refresh)

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.JWTAuth(jwtManager))
	{
		protected.GET("/referral_codes/", referralCodeHandler.List)
		protected.POST("/referral_codes/", referralCodeHandler.Create)
		protected.GET("/referral_codes/:id/", referralCodeHandler.Get)
		protected.PUT("/referral_codes/:id/", referralCodeHandler.Update)
		protected.DELETE("/referral_codes/:id/", referralCodeHandler.Delete)

		protected.GET("/get_referral_code/", referralCodeHandler.Lookup)
		protected.GET("/referrals/", referralCodeHandler.ListReferrals)
	}

	return r
}
