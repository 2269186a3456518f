package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/masjid-api/internal/interface/http"
)

type CategoryModule struct {
	Handler *handlers.CategoryHandler
}

func NewCategoryModule(h *handlers.CategoryHandler) *CategoryModule {
	return &CategoryModule{Handler: h}
}

func (m *CategoryModule) Register(rg *gin.RouterGroup) {
	c := rg.Group("/categories")
	c.GET("/get", m.Handler.List)
	c.POST("/add", m.Handler.Add)
	c.PUT("/update/:id", m.Handler.Update)
	c.DELETE("/delete/:id", m.Handler.Delete)
}
