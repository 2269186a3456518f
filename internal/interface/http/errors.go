package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/masjid-api/pkg/apperror"
	"github.com/oksasatya/masjid-api/pkg/helpers"
	"github.com/oksasatya/masjid-api/pkg/response"
	"github.com/oksasatya/masjid-api/pkg/validation"
)

// writeError maps a service error onto the response envelope. Server-side
// failures are logged with their cause; the client only sees the message.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	ae, ok := apperror.As(err)
	if !ok {
		helpers.LogError(logger, "unhandled error", err, logrus.Fields{"request_id": c.GetString("request_id"), "path": c.FullPath()})
		response.Error[any](c, http.StatusInternalServerError, "Server Error", nil)
		return
	}
	if ae.Status >= http.StatusInternalServerError {
		helpers.LogError(logger, ae.Message, ae.Err, logrus.Fields{"request_id": c.GetString("request_id"), "path": c.FullPath(), "kind": ae.Kind.String()})
	}
	response.Error[any](c, ae.Status, ae.Message, nil)
}

func writeBindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
