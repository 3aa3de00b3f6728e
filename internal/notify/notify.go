// Package notify delivers the transient success and error banners ("toasts")
// shown to the operator.
//
// Toasts are stored as session flashes so they survive the redirect that
// usually follows an action, and are dropped once rendered.
package notify

import (
	"context"
	"encoding/gob"

	"fixxyadmin/internal/logging"
	"fixxyadmin/internal/telegram"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Kind is the style of a toast.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Toast is one banner.
type Toast struct {
	Kind    Kind
	Message string
}

func init() {
	// flashes go through the cookie store's gob codec
	gob.Register(Toast{})
}

// Mirror receives a copy of successful resolves.
type Mirror interface {
	SendResolvedNotice(ctx context.Context, n telegram.ResolvedNotice) error
}

// Notifier queues toasts on the request session.
type Notifier struct {
	mirror Mirror
	logger *logging.Logger
}

// New creates a notifier. mirror may be nil.
func New(mirror Mirror, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Notifier{mirror: mirror, logger: logger}
}

// Success queues a success toast.
func (n *Notifier) Success(c *gin.Context, message string) {
	n.add(c, Toast{Kind: KindSuccess, Message: message})
}

// Error queues an error toast.
func (n *Notifier) Error(c *gin.Context, message string) {
	n.add(c, Toast{Kind: KindError, Message: message})
}

func (n *Notifier) add(c *gin.Context, t Toast) {
	session := sessions.Default(c)
	session.AddFlash(t)
	if err := session.Save(); err != nil {
		n.logger.Error(c.Request.Context(), "failed to save notification", err, logging.Fields{"kind": string(t.Kind)})
	}
}

// Pop returns the queued toasts in the order they were added and clears them.
func (n *Notifier) Pop(c *gin.Context) []Toast {
	session := sessions.Default(c)
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(); err != nil {
		n.logger.Error(c.Request.Context(), "failed to clear notifications", err)
	}

	toasts := make([]Toast, 0, len(flashes))
	for _, f := range flashes {
		if t, ok := f.(Toast); ok {
			toasts = append(toasts, t)
		}
	}
	return toasts
}

// Resolved forwards a resolve to the mirror, if any. Failures are logged and
// never surface to the operator.
func (n *Notifier) Resolved(ctx context.Context, notice telegram.ResolvedNotice) {
	if n.mirror == nil {
		return
	}
	if err := n.mirror.SendResolvedNotice(ctx, notice); err != nil {
		n.logger.Warn(ctx, "failed to mirror resolve", logging.Fields{
			"post_id": notice.PostID,
			"error":   err.Error(),
		})
	}
}
