package v1

import (
	"github.com/dmehra2102/prod-golang-projects/docintake/pkg/auth"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the v1 API surface.
func RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, authHandler *AuthHandler, reviewHandler *ReviewHandler) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protected := r.Group("")
	protected.Use(Authenticated(jwtManager))
	{
		protected.GET("/reviews", reviewHandler.ListPending)
		protected.GET("/reviews/options", reviewHandler.GetOptions)
		protected.GET("/reviews/stats", reviewHandler.GetStats)
		protected.GET("/reviews/:id", reviewHandler.GetCase)
		protected.GET("/patients/search", reviewHandler.SearchPatients)

		deciding := protected.Group("")
		deciding.Use(RequireDecisionRole())
		{
			deciding.POST("/batches", reviewHandler.RegisterBatch)
			deciding.POST("/batches/:id/bulk-approve", reviewHandler.BulkApprove)
			deciding.POST("/reviews/:id/decision", reviewHandler.SubmitDecision)
		}
	}
}
