// Package auth tracks the signed-in administrator in the session cookie and
// guards the dashboard routes.
package auth

import (
	"net/http"
	"time"

	"fixxyadmin/internal/logging"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys for the signed-in administrator
const (
	// UsernameKey holds the username the admin signed in with
	UsernameKey = "admin_username"
	// SignedInAtKey holds the sign-in time as unix seconds
	SignedInAtKey = "admin_signed_in_at"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/"

// LoginRequiredMessage is the toast shown when a guarded route is refused.
const LoginRequiredMessage = "Please log in to continue"

// Notifier is the part of the toast service the guard needs.
type Notifier interface {
	Error(c *gin.Context, message string)
}

// SignIn marks the session as authenticated. Only the username is kept;
// the password never touches the session.
func SignIn(c *gin.Context, username string) error {
	session := sessions.Default(c)
	session.Set(UsernameKey, username)
	session.Set(SignedInAtKey, time.Now().Unix())
	return session.Save()
}

// SignOut forgets the administrator. Pending toasts are kept.
func SignOut(c *gin.Context) error {
	session := sessions.Default(c)
	session.Delete(UsernameKey)
	session.Delete(SignedInAtKey)
	return session.Save()
}

// CurrentAdmin returns the signed-in username.
func CurrentAdmin(c *gin.Context) (string, bool) {
	username, ok := sessions.Default(c).Get(UsernameKey).(string)
	return username, ok && username != ""
}

// RequireAdmin returns a middleware that only lets signed-in administrators
// through. Everyone else is redirected to the login screen with an error
// toast.
//
// When enabled is false the check is skipped entirely, for deployments that
// authenticate at a gateway in front of the dashboard.
func RequireAdmin(enabled bool, notifier Notifier, logger *logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNop()
	}

	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		if _, ok := CurrentAdmin(c); !ok {
			logger.Info(c.Request.Context(), "unauthenticated request redirected to login", logging.Fields{
				"http.path": c.Request.URL.Path,
			})
			if notifier != nil {
				notifier.Error(c, LoginRequiredMessage)
			}
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}

		c.Next()
	}
}
