package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"esfhub/internal/handler"
	"esfhub/internal/middleware"
	"esfhub/internal/port"
)

// Handlers bundles the ESF service handlers.
type Handlers struct {
	Invoice   *handler.InvoiceHandler
	Reference *handler.ReferenceHandler
	ESF       *handler.ESFHandler
	GNS       *handler.GNSHandler
	Health    *handler.HealthHandler
}

// Setup configures the Gin engine of the ESF service with all routes and middleware.
func Setup(resolver port.IdentityResolver, h Handlers, allowedOrigins []string) *gin.Engine {
	r := newEngine(allowedOrigins)

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require a resolvable bearer token
	protected := r.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(resolver))

	// Static segments are registered before /:id
	invoices := protected.Group("/invoices")
	invoices.POST("", h.Invoice.Create)
	invoices.GET("", h.Invoice.List)
	invoices.GET("/export", h.Invoice.Export)
	invoices.POST("/sync", h.Invoice.Pull)
	invoices.POST("/sync/batch", h.Invoice.SyncBatch)
	invoices.GET("/:id", h.Invoice.GetByID)
	invoices.PUT("/:id", h.Invoice.Update)
	invoices.DELETE("/:id", h.Invoice.Delete)
	invoices.POST("/:id/send", h.Invoice.Send)

	references := protected.Group("/references")
	references.GET("", h.Reference.Kinds)
	references.GET("/:kind", h.Reference.List)

	esf := protected.Group("/esf")
	esf.POST("", h.ESF.Create)
	esf.GET("", h.ESF.List)
	esf.GET("/:id", h.ESF.GetByID)
	esf.POST("/:id/send", h.ESF.Send)

	gns := protected.Group("/gns/invoices")
	gns.POST("", h.GNS.Submit)
	gns.GET("", h.GNS.Fetch)
	gns.PUT("/:id", h.GNS.Update)
	gns.DELETE("/:id", h.GNS.Delete)

	return r
}

// SetupAuth configures the Gin engine of the auth service.
func SetupAuth(resolver port.IdentityResolver, authH *handler.AuthHandler, healthH *handler.HealthHandler, allowedOrigins []string) *gin.Engine {
	r := newEngine(allowedOrigins)

	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	auth := r.Group("/api/v1/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.GET("/me", middleware.AuthMiddleware(resolver), authH.Me)

	return r
}

func newEngine(allowedOrigins []string) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	return r
}
