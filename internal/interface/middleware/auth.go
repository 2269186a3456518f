package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/masjid-api/internal/application"
	"github.com/oksasatya/masjid-api/internal/domain/entity"
	"github.com/oksasatya/masjid-api/pkg/helpers"
	"github.com/oksasatya/masjid-api/pkg/response"
)

// CtxSessionKey holds the *entity.Session of an authenticated request.
const CtxSessionKey = "session"

// LoadSession resolves the session cookie into the server-side session and
// stores it on the context. Requests without a valid session pass through
// anonymously; use RequireSession or RequireAdmin to reject them.
func LoadSession(cookies *helpers.Manager, signer *helpers.SessionSigner, store application.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookies.Read(c)
		if token == "" {
			c.Next()
			return
		}
		claims, err := signer.Parse(token)
		if err != nil {
			c.Next()
			return
		}
		sess, err := store.Get(c.Request.Context(), claims.SessionID)
		if err != nil || sess.UserID != claims.UserID {
			c.Next()
			return
		}
		c.Set(CtxSessionKey, sess)
		c.Set("userID", sess.UserID)
		c.Next()
	}
}

// SessionFrom returns the session LoadSession attached, if any.
func SessionFrom(c *gin.Context) (*entity.Session, bool) {
	v, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*entity.Session)
	return s, ok && s != nil
}

func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionFrom(c); !ok {
			response.Error[any](c, http.StatusUnauthorized, "Not logged in", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin allows only sessions whose role is admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := SessionFrom(c)
		if !ok {
			response.Error[any](c, http.StatusUnauthorized, "Not logged in", nil)
			c.Abort()
			return
		}
		if !s.IsAdmin() {
			response.Error[any](c, http.StatusForbidden, "Admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
