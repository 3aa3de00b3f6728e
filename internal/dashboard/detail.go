package dashboard

import (
	"context"

	"fixxyadmin/internal/complaint"
	"fixxyadmin/internal/errors"
	"fixxyadmin/internal/logging"
)

// Detail screen messages
const (
	DetailShapeError      = "Failed to load complaint details."
	DetailTransportError  = "Error fetching complaint details."
	ResolveSuccessNotice  = "Complaint marked as resolved"
	ResolveRejectedPrefix = "Failed to resolve complaint: "
	ResolveFailedPrefix   = "Error updating complaint: "
	UnknownError          = "Unknown error"
)

// DetailState is the phase of the detail screen.
type DetailState string

const (
	DetailPending DetailState = "pending"
	DetailLoaded  DetailState = "loaded"
	DetailError   DetailState = "error"
)

// Row is one line of the detail table.
type Row struct {
	Label string
	Value string
}

// DetailView is the state of the detail screen.
type DetailView struct {
	State DetailState
	Key   complaint.Key
	Rows  []Row
	Error string
}

// LoadDetail fetches one complaint.
//
// When either half of key is missing nothing is fetched and the view stays
// pending. Posted At is rendered for the locale in acceptLanguage.
func (s *Service) LoadDetail(ctx context.Context, key complaint.Key, acceptLanguage string) (view DetailView, ok bool) {
	view = DetailView{State: DetailPending, Key: key}

	if missing := key.Missing(); len(missing) > 0 {
		s.logger.Warn(ctx, "detail route is missing parameters, not fetching", logging.Fields{
			"missing": missing,
		})
		return view, true
	}

	c, err := s.api.GetComplaint(ctx, key)
	if s.discarded(ctx, "detail") {
		return DetailView{}, false
	}

	if err != nil {
		s.logger.Error(ctx, "failed to load complaint", err, logging.Fields{"key": key.String()})
		view.State = DetailError
		view.Error = DetailTransportError
		if errors.IsShape(err) {
			view.Error = DetailShapeError
		}
		return view, true
	}

	view.State = DetailLoaded
	view.Rows = []Row{
		{Label: "Name", Value: string(c.Name)},
		{Label: "Room Number", Value: string(c.RoomNumber)},
		{Label: "Floor", Value: string(c.Floor)},
		{Label: "Complaint", Value: string(c.Body)},
		{Label: "Status", Value: string(c.Status)},
		{Label: "Posted At", Value: s.dates.Format(string(c.CreatedAt), acceptLanguage)},
	}
	return view, true
}

// ResolveResult is the outcome of the resolve action.
type ResolveResult struct {
	Success bool
	Notice  string
}

// Resolve marks the complaint resolved. The displayed status is not touched
// here; the caller re-fetches by remounting the detail screen.
func (s *Service) Resolve(ctx context.Context, key complaint.Key) ResolveResult {
	err := s.api.ResolveComplaint(ctx, key)
	if err == nil {
		s.logger.Info(ctx, "complaint resolved", logging.Fields{"key": key.String()})
		return ResolveResult{Success: true, Notice: ResolveSuccessNotice}
	}

	s.logger.Error(ctx, "failed to resolve complaint", err, logging.Fields{"key": key.String()})

	if rejected, ok := errors.AsRejected(err); ok {
		reason := rejected.Message
		if reason == "" {
			reason = UnknownError
		}
		return ResolveResult{Notice: ResolveRejectedPrefix + reason}
	}
	if errors.IsShape(err) {
		return ResolveResult{Notice: ResolveRejectedPrefix + UnknownError}
	}
	return ResolveResult{Notice: ResolveFailedPrefix + err.Error()}
}
