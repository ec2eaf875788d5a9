package handler

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/Fraol-M/metta-assistant/internal/middleware"
	"github.com/Fraol-M/metta-assistant/internal/model"
	"github.com/Fraol-M/metta-assistant/internal/pkg/jwt"
	"github.com/Fraol-M/metta-assistant/internal/pkg/response"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Signer      *jwt.Signer
	Auth        *AuthHandler
	Chunks      *ChunkHandler
	Protected   *ProtectedHandler
	CORSOrigins []string
}

// NewRouter wires the full route table. Auth endpoints and the health probe
// stay open; everything under /api/chunks and /api/protected requires a
// bearer token, and the admin route additionally requires the admin role.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(deps.CORSOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/health", func(c *gin.Context) {
		response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", deps.Auth.Signup)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.Refresh)
	}

	chunks := api.Group("/chunks", middleware.JWTAuth(deps.Signer))
	{
		chunks.POST("/ingest", deps.Chunks.Ingest)
		chunks.POST("/embed", deps.Chunks.Embed)
		chunks.GET("/search", deps.Chunks.Search)
		chunks.GET("", deps.Chunks.List)
		chunks.GET("/:chunk_id", deps.Chunks.Get)
		chunks.PATCH("/:chunk_id", deps.Chunks.Update)
		chunks.DELETE("/:chunk_id", deps.Chunks.Delete)
	}

	protected := api.Group("/protected", middleware.JWTAuth(deps.Signer))
	{
		protected.GET("/me", deps.Protected.Me)
		protected.GET("/admin-only", middleware.RequireRole(model.RoleAdmin), deps.Protected.AdminOnly)
	}

	return router
}
