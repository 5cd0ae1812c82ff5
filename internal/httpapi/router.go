package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/amiral-e/esp-back-sub001/internal/ai"
	"github.com/amiral-e/esp-back-sub001/internal/auth"
	"github.com/amiral-e/esp-back-sub001/internal/chat"
	"github.com/amiral-e/esp-back-sub001/internal/common"
	"github.com/amiral-e/esp-back-sub001/internal/config"
	"github.com/amiral-e/esp-back-sub001/internal/docsvc"
	"github.com/amiral-e/esp-back-sub001/internal/httpapi/handlers"
	"github.com/amiral-e/esp-back-sub001/internal/httpapi/middleware"
	"github.com/amiral-e/esp-back-sub001/internal/store/redisstore"
)

// NewRouter wires verifiers, services and handlers into the gin engine.
// User-facing resources sit behind the token-pair exchange; catalog and
// admin resources behind the locally-verified token.
func NewRouter(gdb *gorm.DB, cfg config.Config, log zerolog.Logger, rds *redisstore.Store) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	chatSvc := chat.NewService(
		chat.NewRepo(gdb),
		ai.NewClient(cfg.ChatServiceURL, cfg.ChatServiceKey),
	)
	docs := docsvc.NewClient(cfg.DocsServiceURL)
	h := handlers.NewHandler(gdb, cfg, log, chatSvc, docs)

	pairAuth := middleware.Authenticate(auth.NewTokenPairVerifier(cfg.AuthServiceURL, gdb))
	jwtAuth := middleware.Authenticate(auth.NewJWTVerifier(cfg.JWTSecret, gdb))

	r.GET("/ping", h.Ping)

	// User-facing resources (token-pair scheme).
	user := r.Group("/")
	user.Use(pairAuth)
	user.GET("/conversations", h.ListConversations)
	user.POST("/conversations", h.CreateConversation)
	user.GET("/conversations/:conv_id", h.GetConversation)
	user.PUT("/conversations/:conv_id", h.RenameConversation)
	user.DELETE("/conversations/:conv_id", h.DeleteConversation)
	user.POST("/conversations/:conv_id/messages",
		middleware.RateLimit(rds, cfg.ChatRateLimit, cfg.ChatRateWindow, log),
		h.SendConversationMessage)

	user.GET("/me", h.GetProfile)
	user.PUT("/me", h.UpdateProfile)
	user.DELETE("/me", h.DeleteProfile)

	user.GET("/collections", h.ListCollections)
	user.DELETE("/collections/:collection_name", h.DeleteCollection)
	user.GET("/collections/:collection_name/documents", h.ListDocuments)
	user.DELETE("/collections/:collection_name/documents/:document_id", h.DeleteDocument)

	// Catalog reads for any verified user (local token scheme).
	catalog := r.Group("/")
	catalog.Use(jwtAuth)
	catalog.GET("/categories", h.ListCategories)
	catalog.GET("/categories/:id", h.GetCategory)
	catalog.GET("/prices", h.ListPrices)
	catalog.GET("/prices/:name", h.GetPrice)
	catalog.GET("/levels", h.ListLevels)

	// AddAdmin does its own ordered role checking, so it sits outside the
	// AdminRequired gate.
	catalog.POST("/admins", h.AddAdmin)

	// Admin-only mutations.
	admin := r.Group("/")
	admin.Use(jwtAuth, middleware.AdminRequired())
	admin.POST("/categories", h.CreateCategory)
	admin.PUT("/categories/:id", h.UpdateCategory)
	admin.DELETE("/categories/:id", h.DeleteCategory)
	admin.POST("/prices", h.CreatePrice)
	admin.PUT("/prices/:name", h.UpdatePrice)
	admin.DELETE("/prices/:name", h.DeletePrice)
	admin.PUT("/levels/:name", h.UpdateLevel)
	admin.GET("/admins", h.ListAdmins)
	admin.DELETE("/admins/:user_id", h.RemoveAdmin)

	return r
}
