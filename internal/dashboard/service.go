// Package dashboard builds the view models of the three dashboard screens:
// login, complaint list and complaint detail.
//
// Each loader performs at most one API call, bound to the caller's context.
// If that context is done by the time the call returns, the result is
// discarded: the loader reports ok == false and the caller must not render
// anything from it.
package dashboard

import (
	"context"

	"fixxyadmin/internal/complaint"
	"fixxyadmin/internal/logging"

	"github.com/go-playground/validator/v10"
)

// ComplaintAPI is the subset of the API client the screens use.
type ComplaintAPI interface {
	Login(ctx context.Context, username, password string) error
	ListComplaints(ctx context.Context) ([]complaint.Complaint, error)
	GetComplaint(ctx context.Context, key complaint.Key) (*complaint.Complaint, error)
	ResolveComplaint(ctx context.Context, key complaint.Key) error
}

// Service loads screen state from the complaint API.
type Service struct {
	api      ComplaintAPI
	dates    *complaint.DateFormatter
	validate *validator.Validate
	logger   *logging.Logger
}

// NewService creates the screen service.
func NewService(api ComplaintAPI, dates *complaint.DateFormatter, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		api:      api,
		dates:    dates,
		validate: validator.New(),
		logger:   logger,
	}
}

// discarded reports whether ctx ended while a fetch was in flight.
func (s *Service) discarded(ctx context.Context, screen string) bool {
	if ctx.Err() == nil {
		return false
	}
	s.logger.Debug(ctx, "screen left before fetch completed, result discarded", logging.Fields{
		"screen": screen,
		"reason": ctx.Err().Error(),
	})
	return true
}
