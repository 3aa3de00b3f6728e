package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fixxyadmin/internal/logging"
	"fixxyadmin/internal/telegram"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(n *Notifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	r.GET("/add", func(c *gin.Context) {
		n.Success(c, "Login successful")
		n.Error(c, "Wrong Credentials")
		c.Status(http.StatusNoContent)
	})
	r.GET("/pop", func(c *gin.Context) {
		c.JSON(http.StatusOK, n.Pop(c))
	})
	return r
}

func do(r http.Handler, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestToastsSurviveOneRequest(t *testing.T) {
	r := newRouter(New(nil, nil))

	added := do(r, "/add", nil)
	require.Equal(t, http.StatusNoContent, added.Code)
	cookies := added.Result().Cookies()
	require.NotEmpty(t, cookies)

	first := do(r, "/pop", cookies)
	assert.JSONEq(t, `[{"Kind":"success","Message":"Login successful"},{"Kind":"error","Message":"Wrong Credentials"}]`, first.Body.String())

	// the pop rewrote the cookie without the flashes
	second := do(r, "/pop", first.Result().Cookies())
	assert.Equal(t, "null", second.Body.String())
}

type fakeMirror struct {
	notices []telegram.ResolvedNotice
	err     error
}

func (f *fakeMirror) SendResolvedNotice(_ context.Context, n telegram.ResolvedNotice) error {
	f.notices = append(f.notices, n)
	return f.err
}

func TestResolvedMirrors(t *testing.T) {
	m := &fakeMirror{}
	New(m, nil).Resolved(context.Background(), telegram.ResolvedNotice{PostID: "7"})
	require.Len(t, m.notices, 1)
	assert.Equal(t, "7", m.notices[0].PostID)
}

func TestResolvedMirrorFailureIsSwallowed(t *testing.T) {
	m := &fakeMirror{err: errors.New("telegram down")}
	assert.NotPanics(t, func() {
		New(m, logging.NewNop()).Resolved(context.Background(), telegram.ResolvedNotice{PostID: "7"})
	})
}

func TestResolvedWithoutMirror(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil, nil).Resolved(context.Background(), telegram.ResolvedNotice{PostID: "7"})
	})
}
