package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oksasatya/masjid-api/pkg/response"
)

// Module owns the routes of one feature.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// ModuleFunc lets a plain function act as a Module.
type ModuleFunc func(rg *gin.RouterGroup)

func (f ModuleFunc) Register(rg *gin.RouterGroup) { f(rg) }

// healthModule answers load balancer probes.
var healthModule = ModuleFunc(func(rg *gin.RouterGroup) {
	rg.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "alive", nil)
	})
	rg.HEAD("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
})
