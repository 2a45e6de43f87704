package router

import (
	"time"

	"tutorlink/config"
	"tutorlink/internal/handler"
	"tutorlink/internal/middleware"
	"tutorlink/internal/repository"
	"tutorlink/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, platformProfileID uint) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	clickRepo := repository.NewClickRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	resolver := service.NewAttributionResolver(profileRepo, clickRepo, &cfg.Referral)
	signupSvc := service.NewSignupService(cfg, db, profileRepo, resolver)
	bookingSvc := service.NewBookingService(profileRepo, bookingRepo)
	settlementSvc := service.NewSettlementService(db, bookingRepo, ledgerRepo, clickRepo, &cfg.Payment, platformProfileID)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, signupSvc)
	referralHandler := handler.NewReferralHandler(cfg, profileRepo, clickRepo)
	bookingHandler := handler.NewBookingHandler(bookingSvc, bookingRepo, auditRepo)
	ledgerHandler := handler.NewLedgerHandler(ledgerRepo)
	webhookHandler := handler.NewPaymentWebhookHandler(cfg, settlementSvc, auditRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	// Referral link landing lives outside the API group: it is the URL
	// people share.
	r.GET("/r/:code", referralHandler.TrackClick)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/referral-code", referralHandler.GetMyReferralCode)
			me.GET("/referrals", referralHandler.GetMyReferrals)
			me.GET("/bookings", bookingHandler.ListMine)
			me.GET("/transactions", ledgerHandler.GetTransactions)
			me.GET("/balance", ledgerHandler.GetBalance)
		}

		api.POST("/bookings", authMw, bookingHandler.Create)
		api.POST("/bookings/:id/cancel", authMw, bookingHandler.Cancel)

		api.POST("/webhooks/payment", webhookHandler.Handle)
	}

	return r
}
