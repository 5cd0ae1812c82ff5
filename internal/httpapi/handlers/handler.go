package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/amiral-e/esp-back-sub001/internal/auth"
	"github.com/amiral-e/esp-back-sub001/internal/chat"
	"github.com/amiral-e/esp-back-sub001/internal/config"
	"github.com/amiral-e/esp-back-sub001/internal/docsvc"
	"github.com/amiral-e/esp-back-sub001/internal/httpapi/middleware"
)

type Handler struct {
	DB      *gorm.DB
	Cfg     config.Config
	Log     zerolog.Logger
	ChatSvc *chat.Service
	Docs    *docsvc.Client
}

func NewHandler(db *gorm.DB, cfg config.Config, log zerolog.Logger, chatSvc *chat.Service, docs *docsvc.Client) *Handler {
	return &Handler{
		DB:      db,
		Cfg:     cfg,
		Log:     log,
		ChatSvc: chatSvc,
		Docs:    docs,
	}
}

func identityFrom(c *gin.Context) (*auth.Identity, bool) {
	return middleware.IdentityFrom(c)
}
