package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"fixxyadmin/internal/complaint"
	"fixxyadmin/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
	errs  []error
}

func (r *recordingObserver) RecordCall(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
	r.errs = append(r.errs, err)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithHTTPClient(srv.Client())}, opts...)
	c, err := NewClient(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestLogin_Success(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(http.StatusOK, `{"message":"Login successful"}`)(w, r)
	})

	require.NoError(t, c.Login(context.Background(), "admin", "pw"))
	assert.Equal(t, map[string]string{"Username": "admin", "Password": "pw"}, got)
}

func TestLogin_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		rejected  bool
		message   string
		transport bool
		shape     bool
	}{
		{"wrong credentials", http.StatusUnauthorized, `{"message":"Invalid credentials"}`, true, "Invalid credentials", false, false},
		{"2xx with other message", http.StatusOK, `{"message":"Almost"}`, true, "Almost", false, false},
		{"no message", http.StatusForbidden, `{}`, true, "", false, false},
		{"html error page", http.StatusBadGateway, `<html>bad gateway</html>`, false, "", true, false},
		{"message not a string", http.StatusOK, `{"message": 42}`, false, "", false, true},
		{"body is an array", http.StatusOK, `[]`, false, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, respond(tt.status, tt.body))
			err := c.Login(context.Background(), "admin", "pw")
			require.Error(t, err)

			rejected, ok := errors.AsRejected(err)
			assert.Equal(t, tt.rejected, ok)
			if ok {
				assert.Equal(t, tt.message, rejected.Message)
				assert.Equal(t, tt.status, rejected.StatusCode)
			}
			assert.Equal(t, tt.transport, errors.IsTransport(err))
			assert.Equal(t, tt.shape, errors.IsShape(err))
		})
	}
}

func TestLogin_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url)
	require.NoError(t, err)

	err = c.Login(context.Background(), "admin", "pw")
	assert.True(t, errors.IsTransport(err))
}

func TestListComplaints(t *testing.T) {
	body := `{"posts":{"results":[
		{"PostId":7,"GoogleId":"g-1","Complaint":"Leaking tap","Status":"Pending","RoomNumber":"101","Floor":"1","Name":"Asha","CreatedAt":"2024-03-05T10:20:30Z"},
		{"PostId":3,"GoogleId":10987654321,"Complaint":"No wifi","Status":"Resolved","RoomNumber":204,"Floor":null}
	]}}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/posts", r.URL.Path)
		respond(http.StatusOK, body)(w, r)
	})

	got, err := c.ListComplaints(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	// response order is kept
	assert.Equal(t, complaint.Text("7"), got[0].PostID)
	assert.Equal(t, complaint.Text("Leaking tap"), got[0].Body)
	assert.Equal(t, complaint.Key{SubmitterID: "10987654321", PostID: "3"}, got[1].Key())
	assert.Equal(t, complaint.Text("204"), got[1].RoomNumber)
}

func TestListComplaints_Empty(t *testing.T) {
	c := newTestClient(t, respond(http.StatusOK, `{"posts":{"results":[]}}`))

	got, err := c.ListComplaints(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListComplaints_LenientItems(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		count int
	}{
		{"item without PostId", `{"posts":{"results":[{"PostId":1,"GoogleId":"a"},{"GoogleId":"g","Complaint":"Fan"}]}}`, 2},
		{"string PostId", `{"posts":{"results":[{"PostId":"7","GoogleId":"g"}]}}`, 1},
		{"numeric name", `{"posts":{"results":[{"PostId":1,"GoogleId":"g","Name":42}]}}`, 1},
		{"object id", `{"posts":{"results":[{"PostId":1,"GoogleId":{"x":1}}]}}`, 1},
		{"non-object element", `{"posts":{"results":[{"PostId":1,"GoogleId":"g"},null,"x"]}}`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, respond(http.StatusOK, tt.body))
			got, err := c.ListComplaints(context.Background())
			require.NoError(t, err)
			assert.Len(t, got, tt.count)
		})
	}
}

func TestListComplaints_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		transport bool
		shape     bool
	}{
		{"server error", http.StatusInternalServerError, `{"error":"db down"}`, true, false},
		{"not json", http.StatusOK, `oops`, true, false},
		{"missing posts", http.StatusOK, `{"results":[]}`, false, true},
		{"results not an array", http.StatusOK, `{"posts":{"results":{}}}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, respond(tt.status, tt.body))
			got, err := c.ListComplaints(context.Background())
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, tt.transport, errors.IsTransport(err))
			assert.Equal(t, tt.shape, errors.IsShape(err))
		})
	}
}

func TestGetComplaint(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/g%201/7", r.URL.EscapedPath())
		respond(http.StatusOK, `{"post":{"PostId":7,"GoogleId":"g 1","Name":"Asha","Status":"Pending"}}`)(w, r)
	})

	got, err := c.GetComplaint(context.Background(), complaint.Key{SubmitterID: "g 1", PostID: "7"})
	require.NoError(t, err)
	assert.Equal(t, complaint.Text("Asha"), got.Name)
	assert.Equal(t, complaint.Text("Pending"), got.Status)
}

func TestGetComplaint_PartialRecord(t *testing.T) {
	c := newTestClient(t, respond(http.StatusOK, `{"post":{"Name":"Asha","Status":"Pending"}}`))

	got, err := c.GetComplaint(context.Background(), complaint.Key{SubmitterID: "g", PostID: "7"})
	require.NoError(t, err)
	assert.Equal(t, complaint.Text("Asha"), got.Name)
	assert.Empty(t, got.PostID)
}

func TestGetComplaint_Failures(t *testing.T) {
	t.Run("post missing", func(t *testing.T) {
		c := newTestClient(t, respond(http.StatusOK, `{"message":"not found"}`))
		_, err := c.GetComplaint(context.Background(), complaint.Key{SubmitterID: "g", PostID: "1"})
		assert.True(t, errors.IsShape(err))
	})

	t.Run("post not an object", func(t *testing.T) {
		c := newTestClient(t, respond(http.StatusOK, `{"post":"nope"}`))
		_, err := c.GetComplaint(context.Background(), complaint.Key{SubmitterID: "g", PostID: "1"})
		assert.True(t, errors.IsShape(err))
	})

	t.Run("not found status", func(t *testing.T) {
		c := newTestClient(t, respond(http.StatusNotFound, `{"error":"missing"}`))
		_, err := c.GetComplaint(context.Background(), complaint.Key{SubmitterID: "g", PostID: "1"})
		assert.True(t, errors.IsTransport(err))
	})

	t.Run("missing key never calls the API", func(t *testing.T) {
		called := false
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })
		_, err := c.GetComplaint(context.Background(), complaint.Key{SubmitterID: "g"})
		assert.True(t, errors.IsMissingParam(err))
		assert.False(t, called)
	})
}

func TestGetComplaint_Cancelled(t *testing.T) {
	c := newTestClient(t, respond(http.StatusOK, `{"post":{"PostId":1,"GoogleId":"g"}}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetComplaint(ctx, complaint.Key{SubmitterID: "g", PostID: "1"})
	assert.True(t, errors.IsTransport(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveComplaint(t *testing.T) {
	var body map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/posts/g/7", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		respond(http.StatusOK, `{"message":"Complaint updated successfully"}`)(w, r)
	})

	require.NoError(t, c.ResolveComplaint(context.Background(), complaint.Key{SubmitterID: "g", PostID: "7"}))
	assert.Equal(t, map[string]string{"status": "Resolved"}, body)
}

func TestResolveComplaint_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error field", http.StatusBadRequest, `{"error":"Invalid status"}`, "Invalid status"},
		{"no error field", http.StatusInternalServerError, `{}`, ""},
		{"2xx without sentinel", http.StatusOK, `{"message":"Nothing changed"}`, ""},
		{"sentinel with failure status", http.StatusConflict, `{"message":"Complaint updated successfully","error":"stale"}`, "stale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, respond(tt.status, tt.body))
			err := c.ResolveComplaint(context.Background(), complaint.Key{SubmitterID: "g", PostID: "1"})
			rejected, ok := errors.AsRejected(err)
			require.True(t, ok, "expected rejection, got %v", err)
			assert.Equal(t, tt.message, rejected.Message)
		})
	}
}

func TestResolveComplaint_DebugMode(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true }, WithDebugMode(true))

	require.NoError(t, c.ResolveComplaint(context.Background(), complaint.Key{SubmitterID: "g", PostID: "1"}))
	assert.False(t, called)
}

func TestObserverSeesEveryCall(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestClient(t, respond(http.StatusOK, `{"posts":{"results":[]}}`), WithObserver(obs))

	_, err := c.ListComplaints(context.Background())
	require.NoError(t, err)
	_, err = c.GetComplaint(context.Background(), complaint.Key{SubmitterID: "g", PostID: "1"})
	require.Error(t, err)

	assert.Equal(t, []string{OpList, OpDetail}, obs.calls)
	assert.NoError(t, obs.errs[0])
	assert.Error(t, obs.errs[1])
}
