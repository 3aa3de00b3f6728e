// Package health reports the dashboard's liveness and the outcome of its most
// recent call to the complaint API.
//
// Output format:
//
//	{
//	  "status": "healthy",
//	  "uptime": "2h30m15s",
//	  "last_api_call_time": "2024-01-30 15:30:45",
//	  "last_api_call": "list complaints",
//	  "last_api_call_status": "success"
//	}
package health

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Status represents the health check response
type Status struct {
	Status            string `json:"status"`
	Uptime            string `json:"uptime"`
	LastAPICallTime   string `json:"last_api_call_time"`
	LastAPICall       string `json:"last_api_call"`
	LastAPICallStatus string `json:"last_api_call_status"`
}

// Monitor tracks service health. It satisfies the API client's observer
// interface.
//
// Thread-safety:
//   - RecordCall may be invoked by many requests at once
//   - All fields are protected by mu
type Monitor struct {
	startTime  time.Time
	lastCallAt time.Time
	lastOp     string
	lastStatus string
	mu         sync.RWMutex
	now        func() time.Time
}

// NewMonitor creates a health monitor; uptime counts from now.
func NewMonitor() *Monitor {
	return &Monitor{
		startTime:  time.Now(),
		lastStatus: "not started",
		now:        time.Now,
	}
}

// RecordCall stores the outcome of an API call. err == nil is a success;
// otherwise the status is the error text.
func (m *Monitor) RecordCall(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastCallAt = m.now()
	m.lastOp = op
	if err != nil {
		m.lastStatus = "error: " + err.Error()
		return
	}
	m.lastStatus = "success"
}

// GetStatus returns a snapshot of the current health.
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lastCall := ""
	if !m.lastCallAt.IsZero() {
		lastCall = m.lastCallAt.Format("2006-01-02 15:04:05")
	}

	return Status{
		Status:            "healthy",
		Uptime:            m.now().Sub(m.startTime).Round(time.Second).String(),
		LastAPICallTime:   lastCall,
		LastAPICall:       m.lastOp,
		LastAPICallStatus: m.lastStatus,
	}
}

// Handler serves GET /health.
func (m *Monitor) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, m.GetStatus())
	}
}
