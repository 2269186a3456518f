package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/masjid-api/internal/interface/http"
)

// RealtimeModule exposes the category broadcast channel at GET /ws.
type RealtimeModule struct {
	Handler *handlers.RealtimeHandler
}

func NewRealtimeModule(h *handlers.RealtimeHandler) *RealtimeModule {
	return &RealtimeModule{Handler: h}
}

func (m *RealtimeModule) Register(rg *gin.RouterGroup) {
	rg.GET("/ws", m.Handler.Subscribe)
}
