package dashboard

import (
	"context"

	"fixxyadmin/internal/complaint"
	"fixxyadmin/internal/errors"
	"fixxyadmin/internal/logging"
)

// List screen messages
const (
	ListShapeError     = "Failed to load complaints. Unexpected data format."
	ListTransportError = "Error fetching complaints."
)

// Card is one complaint in the list.
type Card struct {
	Key        complaint.Key
	Body       string
	RoomNumber string
	Status     string
}

// Href is the detail route of the card.
func (c Card) Href() string {
	return "/details/" + c.Key.Path()
}

// ListView is the state of the list screen.
type ListView struct {
	Cards []Card
	Error string
}

// Count is the number shown in the "Today's Complaints" label.
func (v ListView) Count() int {
	return len(v.Cards)
}

// Empty reports a successful fetch that returned no complaints.
func (v ListView) Empty() bool {
	return v.Error == "" && len(v.Cards) == 0
}

// LoadList fetches every complaint once and builds one card per complaint in
// response order. ok is false when ctx ended first.
func (s *Service) LoadList(ctx context.Context) (view ListView, ok bool) {
	complaints, err := s.api.ListComplaints(ctx)
	if s.discarded(ctx, "list") {
		return ListView{}, false
	}

	if err != nil {
		s.logger.Error(ctx, "failed to load complaints", err)
		if errors.IsShape(err) {
			return ListView{Error: ListShapeError}, true
		}
		return ListView{Error: ListTransportError}, true
	}

	cards := make([]Card, 0, len(complaints))
	for _, c := range complaints {
		cards = append(cards, Card{
			Key:        c.Key(),
			Body:       string(c.Body),
			RoomNumber: string(c.RoomNumber),
			Status:     string(c.Status),
		})
	}
	s.logger.Debug(ctx, "complaints loaded", logging.Fields{"count": len(cards)})
	return ListView{Cards: cards}, true
}
