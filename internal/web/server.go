// Package web serves the dashboard: routing, sessions, security headers and
// HTML rendering of the login, list and detail screens.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"fixxyadmin/internal/auth"
	"fixxyadmin/internal/complaint"
	"fixxyadmin/internal/config"
	"fixxyadmin/internal/dashboard"
	"fixxyadmin/internal/health"
	"fixxyadmin/internal/logging"
	"fixxyadmin/internal/notify"

	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// ServiceName names the server in traces.
const ServiceName = "fixxy-admin"

const sessionName = "fixxy_admin"

// contentSecurityPolicy allows the inline styles and the history.back()
// handler of the templates and nothing from other origins.
const contentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'"

//go:embed templates/*.html
var templatesFS embed.FS

// ComplaintLister fetches the full complaint list for the summary image.
type ComplaintLister interface {
	ListComplaints(ctx context.Context) ([]complaint.Complaint, error)
}

// Deps are the collaborators of the dashboard server.
type Deps struct {
	Config     *config.Config
	Service    *dashboard.Service
	Complaints ComplaintLister
	Notifier   *notify.Notifier
	Monitor    *health.Monitor
	Dates      *complaint.DateFormatter
	Logger     *logging.Logger
}

// Server holds the handlers' dependencies.
type Server struct {
	cfg        *config.Config
	service    *dashboard.Service
	complaints ComplaintLister
	notifier   *notify.Notifier
	dates      *complaint.DateFormatter
	logger     *logging.Logger
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Config == nil || deps.Service == nil || deps.Notifier == nil || deps.Dates == nil {
		return nil, fmt.Errorf("web: config, service, notifier and date formatter are required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	if deps.Monitor == nil {
		deps.Monitor = health.NewMonitor()
	}

	tmpl, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		cfg:        deps.Config,
		service:    deps.Service,
		complaints: deps.Complaints,
		notifier:   deps.Notifier,
		dates:      deps.Dates,
		logger:     deps.Logger,
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(Recovery(deps.Logger))

	// Health check, before sessions and request logging
	router.GET("/health", deps.Monitor.Handler())

	router.Use(RequestID())
	router.Use(otelgin.Middleware(ServiceName))
	router.Use(RequestLogger(deps.Logger))

	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = contentSecurityPolicy
	if !deps.Config.CookieSecure {
		secureConfig.STSSeconds = 0
	}
	router.Use(secure.New(secureConfig))

	store := cookie.NewStore([]byte(deps.Config.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(deps.Config.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   deps.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionName, store))

	router.GET("/", s.loginPage)
	router.POST("/", s.loginSubmit)
	router.GET("/logout", s.logout)

	guarded := router.Group("/", auth.RequireAdmin(deps.Config.RequireLogin, deps.Notifier, deps.Logger))
	{
		guarded.GET("/home", s.home)
		guarded.GET("/home/summary.png", s.summaryImage)
		guarded.GET("/details", s.detail)
		guarded.GET("/details/:submitterId", s.detail)
		guarded.GET("/details/:submitterId/:postId", s.detail)
		guarded.POST("/details/:submitterId/:postId/resolve", s.resolve)
	}

	return router, nil
}
