// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/talentflow/tf-backend/internal/config"
	"github.com/talentflow/tf-backend/internal/handlers"
	"github.com/talentflow/tf-backend/internal/middleware"
	"github.com/talentflow/tf-backend/internal/repository"
	"github.com/talentflow/tf-backend/internal/services"
	"github.com/talentflow/tf-backend/internal/utils"
)

// Services bundles the wired use-case services so main can reuse them (the
// sweep scheduler runs outside the HTTP surface).
type Services struct {
	Documents  *services.DocumentService
	Contracts  *services.ContractService
	MagicLinks *services.MagicLinkService
	Expiration *services.ExpirationService
}

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *Services, error) {
	// Repositories
	documentRepo := repository.NewDocumentRepository(db)
	thirdPartyRepo := repository.NewThirdPartyRepository(db)
	requestRepo := repository.NewContractRequestRepository(db)
	contractRepo := repository.NewContractRepository(db)
	magicLinkRepo := repository.NewMagicLinkRepository(db)

	// External collaborators
	notificationService := services.NewNotificationService(cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, nil, err
	}
	boondService := services.NewBoondService(cfg)
	yousignService := services.NewYouSignService(cfg)
	docgenService, err := services.NewDocgenService()
	if err != nil {
		return nil, nil, err
	}

	// Use-case services
	magicLinkService := services.NewMagicLinkService(
		magicLinkRepo, thirdPartyRepo, contractRepo, notificationService,
		cfg.Portal.BaseURL, time.Duration(cfg.Portal.MagicLinkTTL)*time.Hour,
	)
	documentService := services.NewDocumentService(documentRepo, thirdPartyRepo, storageService, notificationService, magicLinkService)
	expirationService := services.NewExpirationService(documentRepo, thirdPartyRepo, magicLinkRepo, notificationService)
	contractService := services.NewContractService(
		requestRepo, contractRepo, thirdPartyRepo,
		storageService, notificationService, boondService, yousignService, docgenService,
		documentService, magicLinkService,
	)
	authService := services.NewAuthService(db, cfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	thirdPartyHandler := handlers.NewThirdPartyHandler(thirdPartyRepo, documentRepo, documentService, magicLinkService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	contractHandler := handlers.NewContractHandler(contractService, yousignService)
	portalHandler := handlers.NewPortalHandler(cfg, magicLinkService, documentService, contractService, documentRepo, contractRepo, storageService)
	adminHandler := handlers.NewAdminHandler(expirationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Portal.BaseURL))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
			auth.POST("/staff", middleware.AuthRequired(), middleware.AdminRequired(), authHandler.CreateStaff)
		}

		// Third party routes (staff only)
		thirdParties := v1.Group("/third-parties")
		thirdParties.Use(middleware.AuthRequired())
		{
			thirdParties.GET("", thirdPartyHandler.List)
			thirdParties.GET("/compliance-summary", thirdPartyHandler.ComplianceSummary)
			thirdParties.GET("/:id", thirdPartyHandler.Get)
			thirdParties.POST("/:id/request-documents", thirdPartyHandler.RequestDocuments)
			thirdParties.POST("/:id/send-upload-link", thirdPartyHandler.SendUploadLink)
			thirdParties.POST("/:id/check-compliance", thirdPartyHandler.CheckCompliance)
		}

		// Document review routes (staff only)
		documents := v1.Group("/documents")
		documents.Use(middleware.AuthRequired())
		{
			documents.POST("/:id/validate", documentHandler.Validate)
			documents.POST("/:id/reject", documentHandler.Reject)
		}

		// Contract pipeline routes (staff only)
		contractRequests := v1.Group("/contract-requests")
		contractRequests.Use(middleware.AuthRequired())
		{
			contractRequests.POST("", contractHandler.Create)
			contractRequests.GET("", contractHandler.List)
			contractRequests.GET("/:id", contractHandler.Get)
			contractRequests.POST("/:id/validate-commercial", contractHandler.ValidateCommercial)
			contractRequests.POST("/:id/start-collection", contractHandler.StartDocumentCollection)
			contractRequests.PUT("/:id/configuration", contractHandler.Configure)
			contractRequests.POST("/:id/compliance-override", middleware.AdminRequired(), contractHandler.GrantComplianceOverride)
			contractRequests.POST("/:id/generate-draft", contractHandler.GenerateDraft)
			contractRequests.POST("/:id/send-to-partner", contractHandler.SendToPartner)
			contractRequests.POST("/:id/send-for-signature", contractHandler.SendForSignature)
			contractRequests.POST("/:id/push-to-crm", contractHandler.PushToCrm)
			contractRequests.POST("/:id/cancel", contractHandler.Cancel)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.POST("/sweep-expirations", adminHandler.SweepExpirations)
		}

		// Portal routes (magic-link gated, no staff auth)
		portal := v1.Group("/portal")
		portal.Use(middleware.PortalRateLimit())
		{
			portal.GET("/session", portalHandler.Verify)
			portal.GET("/documents", portalHandler.ListDocuments)
			portal.POST("/documents/:id/upload", middleware.UploadRateLimit(), portalHandler.UploadDocument)
			portal.GET("/contract", portalHandler.GetContract)
			portal.POST("/contract/review", portalHandler.ReviewContract)
		}

		// Webhooks
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/yousign", contractHandler.YouSignWebhook)
		}
	}

	svcs := &Services{
		Documents:  documentService,
		Contracts:  contractService,
		MagicLinks: magicLinkService,
		Expiration: expirationService,
	}

	return r, svcs, nil
}
