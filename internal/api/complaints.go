package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fixxyadmin/internal/complaint"
	"fixxyadmin/internal/errors"
	"fixxyadmin/internal/logging"
)

// Success sentinels. The API signals success through these exact messages,
// not through the status code alone.
const (
	LoginSuccessMessage   = "Login successful"
	ResolveSuccessMessage = "Complaint updated successfully"
)

// Operation names used in errors, logs and health reporting.
const (
	OpLogin   = "login"
	OpList    = "list complaints"
	OpDetail  = "get complaint"
	OpResolve = "resolve complaint"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Observer is told the outcome of every API call.
type Observer interface {
	RecordCall(op string, err error)
}

// Client talks to the complaint API. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	schemas   *schemaSet
	debugMode bool
	observer  Observer
	logger    *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithDebugMode makes ResolveComplaint log the call instead of sending it.
func WithDebugMode(enabled bool) Option {
	return func(c *Client) { c.debugMode = enabled }
}

// WithObserver registers an observer for call outcomes.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		schemas: schemas,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient(30*time.Second, 10)
	}
	return c, nil
}

// DebugMode reports whether resolves are simulated.
func (c *Client) DebugMode() bool {
	return c.debugMode
}

type loginRequest struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
}

type loginResponse struct {
	Message string `json:"message"`
}

// Login checks the administrator credentials.
//
// Returns nil only when the API answers 2xx with LoginSuccessMessage. Any
// other decodable answer, including a non-2xx one, is a RejectedError
// carrying the server message. Network failures and undecodable bodies are
// TransportErrors; bodies of the wrong shape are ShapeErrors.
func (c *Client) Login(ctx context.Context, username, password string) (err error) {
	defer func() { c.record(OpLogin, err) }()

	status, raw, err := c.do(ctx, OpLogin, http.MethodPost, "/admin/login", loginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	if err := c.decode(OpLogin, schemaLogin, status, raw); err != nil {
		return err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errors.NewShapeError(OpLogin, err.Error())
	}
	if isSuccess(status) && resp.Message == LoginSuccessMessage {
		return nil
	}
	return errors.NewRejectedError(OpLogin, status, resp.Message)
}

type listResponse struct {
	Posts struct {
		Results []complaint.Complaint `json:"results"`
	} `json:"posts"`
}

// ListComplaints fetches every complaint in the order the API returns them.
// An empty list is a valid result and comes back as a non-nil empty slice.
func (c *Client) ListComplaints(ctx context.Context) (complaints []complaint.Complaint, err error) {
	defer func() { c.record(OpList, err) }()

	status, raw, err := c.do(ctx, OpList, http.MethodGet, "/posts", nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, errors.NewTransportError(OpList, status, nil)
	}
	if err := c.decode(OpList, schemaList, status, raw); err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.NewShapeError(OpList, err.Error())
	}
	if resp.Posts.Results == nil {
		return []complaint.Complaint{}, nil
	}
	return resp.Posts.Results, nil
}

type detailResponse struct {
	Post complaint.Complaint `json:"post"`
}

// GetComplaint fetches one complaint by its identifier pair.
func (c *Client) GetComplaint(ctx context.Context, key complaint.Key) (_ *complaint.Complaint, err error) {
	defer func() { c.record(OpDetail, err) }()

	if missing := key.Missing(); len(missing) > 0 {
		return nil, errors.NewMissingParamError(missing...)
	}

	status, raw, err := c.do(ctx, OpDetail, http.MethodGet, "/posts/"+key.Path(), nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, errors.NewTransportError(OpDetail, status, nil)
	}
	if err := c.decode(OpDetail, schemaDetail, status, raw); err != nil {
		return nil, err
	}

	var resp detailResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.NewShapeError(OpDetail, err.Error())
	}
	return &resp.Post, nil
}

type resolveRequest struct {
	Status string `json:"status"`
}

type resolveResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ResolveComplaint sets the complaint's status to "Resolved".
//
// Returns nil only for a 2xx answer carrying ResolveSuccessMessage. Any other
// decodable answer is a RejectedError whose Message is the API's error field
// (possibly empty).
//
// Debug mode:
//   - When enabled, logs the call without sending it and reports success
func (c *Client) ResolveComplaint(ctx context.Context, key complaint.Key) (err error) {
	defer func() { c.record(OpResolve, err) }()

	if missing := key.Missing(); len(missing) > 0 {
		return errors.NewMissingParamError(missing...)
	}

	path := "/posts/" + key.Path()
	if c.debugMode {
		c.logger.Info(ctx, "debug mode: resolve call simulated", logging.Fields{
			"method": http.MethodPut,
			"url":    c.baseURL + path,
			"key":    key.String(),
		})
		return nil
	}

	status, raw, err := c.do(ctx, OpResolve, http.MethodPut, path, resolveRequest{Status: complaint.StatusResolved})
	if err != nil {
		return err
	}
	if err := c.decode(OpResolve, schemaResolve, status, raw); err != nil {
		return err
	}

	var resp resolveResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errors.NewShapeError(OpResolve, err.Error())
	}
	if isSuccess(status) && resp.Message == ResolveSuccessMessage {
		return nil
	}
	return errors.NewRejectedError(OpResolve, status, resp.Error)
}

// do sends one request and reads the whole body.
func (c *Client) do(ctx context.Context, op, method, path string, body interface{}) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, errors.NewTransportError(op, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug(ctx, "api request", logging.Fields{"op": op, "method": method, "path": path})

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, errors.NewTransportError(op, 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, errors.NewTransportError(op, resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug(ctx, "api response", logging.Fields{"op": op, "status": resp.StatusCode, "bytes": len(raw)})
	return resp.StatusCode, raw, nil
}

// decode checks that raw is JSON and matches the named schema.
func (c *Client) decode(op, schema string, status int, raw []byte) error {
	if !json.Valid(raw) {
		return errors.NewTransportError(op, status, fmt.Errorf("response is not valid JSON"))
	}
	return c.schemas.validate(op, schema, raw)
}

func (c *Client) record(op string, err error) {
	if c.observer != nil {
		c.observer.RecordCall(op, err)
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
