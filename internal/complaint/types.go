// Package complaint provides the complaint record and its identifier pair.
package complaint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
)

// StatusResolved is the only status value the dashboard ever writes.
const StatusResolved = "Resolved"

// Complaint is a single complaint as served by the complaint API.
//
// Every field is display-only and may be absent. Status is free-form;
// "Pending" and "Resolved" are common but the dashboard never checks for
// them. CreatedAt and UpdatedAt are opaque display strings.
type Complaint struct {
	PostID      Text `json:"PostId"`
	SubmitterID Text `json:"GoogleId"`
	Body        Text `json:"Complaint"`
	Status      Text `json:"Status"`
	Name        Text `json:"Name"`
	RoomNumber  Text `json:"RoomNumber"`
	Floor       Text `json:"Floor"`
	CreatedAt   Text `json:"CreatedAt"`
	UpdatedAt   Text `json:"UpdatedAt"`
}

// UnmarshalJSON decodes an object leniently. A list element that is not an
// object decodes to the zero Complaint so it still gets a card.
func (c *Complaint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*c = Complaint{}
		return nil
	}
	type plain Complaint
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode complaint: %w", err)
	}
	*c = Complaint(v)
	return nil
}

// Key returns the complaint's identifier pair.
func (c Complaint) Key() Key {
	return Key{
		SubmitterID: string(c.SubmitterID),
		PostID:      string(c.PostID),
	}
}

// Text is a display value the API may serve as a string, a number, a boolean
// or null (null decodes to ""). Objects and arrays keep their JSON text.
type Text string

func (t Text) String() string { return string(t) }

// UnmarshalJSON accepts any JSON value.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = Text(v)
		return nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return err
	}
	*t = Text(compact.String())
	return nil
}

// Key is the identifier pair of a complaint. It is the only key used to look
// up or update a complaint.
type Key struct {
	SubmitterID string
	PostID      string
}

// Missing lists the route parameter names that are empty.
func (k Key) Missing() []string {
	var missing []string
	if k.SubmitterID == "" {
		missing = append(missing, "submitterId")
	}
	if k.PostID == "" {
		missing = append(missing, "postId")
	}
	return missing
}

// Complete reports whether both halves of the key are present.
func (k Key) Complete() bool {
	return k.SubmitterID != "" && k.PostID != ""
}

// Path returns the escaped "{submitterId}/{postId}" path suffix shared by the
// API endpoints and the dashboard detail route.
func (k Key) Path() string {
	return url.PathEscape(k.SubmitterID) + "/" + url.PathEscape(k.PostID)
}

func (k Key) String() string {
	return k.SubmitterID + "/" + k.PostID
}
