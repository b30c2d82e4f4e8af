package router

import (
	"time"

	"cardbridge/config"
	"cardbridge/internal/handler"
	"cardbridge/internal/middleware"
	"cardbridge/internal/repository"
	"cardbridge/internal/service"
	"cardbridge/pkg/gateway"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, gw *gateway.Gateway) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	paymentRepo := repository.NewPaymentRepository(db)
	cardRepo := repository.NewCardRepository(db)

	// Services
	paymentSvc := service.NewPaymentService(paymentRepo, cardRepo, gw)
	contractSvc := service.NewContractService(cardRepo, gw)

	// Handlers
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	cardHandler := handler.NewCardHandler(contractSvc)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthRequired(&cfg.JWT))
	{
		payments := api.Group("/payments")
		{
			payments.POST("", paymentHandler.Create)
			payments.POST("/:id/authorize", paymentHandler.Authorize)
			payments.POST("/:id/3ds", paymentHandler.Resume3DS)
			payments.POST("/:id/capture", paymentHandler.Capture)
			payments.POST("/:id/void", paymentHandler.Void)
			payments.POST("/:id/refund", paymentHandler.Refund)
			payments.POST("/:id/profile", paymentHandler.CreateProfile)
		}

		cards := api.Group("/cards")
		{
			cards.POST("", cardHandler.Register)
			cards.POST("/:id/contract", cardHandler.AddContract)
			cards.DELETE("/:id/contract", cardHandler.DisableContract)
		}
	}

	return r
}
