package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// WSServer upgrades a request into a broadcast subscription.
type WSServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

type RealtimeHandler struct {
	Hub WSServer
}

func NewRealtimeHandler(hub WSServer) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub}
}

// Subscribe GET /ws
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	h.Hub.ServeWS(c.Writer, c.Request)
}
