package web

import (
	"net/http"
	"net/url"

	"fixxyadmin/internal/auth"
	"fixxyadmin/internal/complaint"
	"fixxyadmin/internal/dashboard"
	"fixxyadmin/internal/logging"
	"fixxyadmin/internal/notify"
	"fixxyadmin/internal/summary"
	"fixxyadmin/internal/telegram"

	"github.com/gin-gonic/gin"
)

// pageData is shared by every template.
type pageData struct {
	Title  string
	Toasts []notify.Toast
	Admin  string
}

func (s *Server) page(c *gin.Context, title string) pageData {
	admin, _ := auth.CurrentAdmin(c)
	return pageData{Title: title, Toasts: s.notifier.Pop(c), Admin: admin}
}

type loginData struct {
	pageData
	Username  string
	ErrorText string
}

func (s *Server) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", loginData{pageData: s.page(c, "Admin Login")})
}

func (s *Server) loginSubmit(c *gin.Context) {
	var form dashboard.LoginForm
	// binding only fills the fields; presence is checked by the service
	_ = c.ShouldBind(&form)

	result := s.service.Login(c.Request.Context(), form)
	if result.Success {
		if err := auth.SignIn(c, form.Username); err != nil {
			s.logger.Error(c.Request.Context(), "failed to save session", err)
			s.notifier.Error(c, "Could not start a session, please try again")
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		s.notifier.Success(c, result.Notice)
		c.Redirect(http.StatusSeeOther, "/home")
		return
	}

	s.notifier.Error(c, result.Notice)
	c.HTML(http.StatusOK, "login.html", loginData{
		pageData:  s.page(c, "Admin Login"),
		Username:  form.Username,
		ErrorText: result.ErrorText,
	})
}

func (s *Server) logout(c *gin.Context) {
	if err := auth.SignOut(c); err != nil {
		s.logger.Error(c.Request.Context(), "failed to clear session", err)
	}
	s.notifier.Success(c, "Logged out")
	c.Redirect(http.StatusSeeOther, "/")
}

type homeData struct {
	pageData
	View dashboard.ListView
}

func (s *Server) home(c *gin.Context) {
	view, ok := s.service.LoadList(c.Request.Context())
	if !ok {
		c.Abort()
		return
	}
	c.HTML(http.StatusOK, "home.html", homeData{pageData: s.page(c, "Complaints"), View: view})
}

type detailData struct {
	pageData
	View          dashboard.DetailView
	BackHref      string
	ResolveAction string
}

func routeKey(c *gin.Context) complaint.Key {
	return complaint.Key{SubmitterID: c.Param("submitterId"), PostID: c.Param("postId")}
}

func (s *Server) detail(c *gin.Context) {
	key := routeKey(c)
	view, ok := s.service.LoadDetail(c.Request.Context(), key, c.GetHeader("Accept-Language"))
	if !ok {
		c.Abort()
		return
	}

	data := detailData{
		pageData: s.page(c, "Complaint Details"),
		View:     view,
		BackHref: backHref(c),
	}
	if key.Complete() {
		data.ResolveAction = "/details/" + key.Path() + "/resolve"
	}
	c.HTML(http.StatusOK, "detail.html", data)
}

// resolve sends the update and always redirects back to the detail route, so
// the status shown afterwards is whatever the API now returns.
func (s *Server) resolve(c *gin.Context) {
	key := routeKey(c)
	ctx := c.Request.Context()

	result := s.service.Resolve(ctx, key)
	if result.Success {
		s.notifier.Success(c, result.Notice)
		admin, _ := auth.CurrentAdmin(c)
		s.notifier.Resolved(ctx, telegram.ResolvedNotice{
			SubmitterID: key.SubmitterID,
			PostID:      key.PostID,
			Operator:    admin,
			Simulated:   s.cfg.DebugMode,
		})
	} else {
		s.notifier.Error(c, result.Notice)
	}

	c.Redirect(http.StatusSeeOther, "/details/"+key.Path())
}

func (s *Server) summaryImage(c *gin.Context) {
	ctx := c.Request.Context()
	if s.complaints == nil {
		c.String(http.StatusNotFound, "summary not available")
		return
	}

	complaints, err := s.complaints.ListComplaints(ctx)
	if ctx.Err() != nil {
		c.Abort()
		return
	}
	if err != nil {
		s.logger.Error(ctx, "failed to fetch complaints for summary", err)
		c.String(http.StatusBadGateway, dashboard.ListTransportError)
		return
	}
	if len(complaints) == 0 {
		c.String(http.StatusNotFound, "No complaints available")
		return
	}

	lang := c.GetHeader("Accept-Language")
	png, err := summary.RenderTable(complaints, summary.Options{
		FormatDate: func(createdAt string) string { return s.dates.Format(createdAt, lang) },
	})
	if err != nil {
		s.logger.Error(ctx, "failed to render summary", err, logging.Fields{"count": len(complaints)})
		c.String(http.StatusInternalServerError, "failed to render summary")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// backHref is the non-script fallback of the Back button: the referring page
// when it is on this host, the list otherwise.
func backHref(c *gin.Context) string {
	ref, err := url.Parse(c.Request.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Request.Host) {
		return "/home"
	}
	if ref.RawQuery != "" {
		return ref.EscapedPath() + "?" + ref.RawQuery
	}
	return ref.EscapedPath()
}
