package complaint

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplaint_DecodeSubmitterID(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected Key
	}{
		{"string id", `{"PostId": 7, "GoogleId": "10987654321"}`, Key{SubmitterID: "10987654321", PostID: "7"}},
		{"numeric id", `{"PostId": 12, "GoogleId": 10987654321}`, Key{SubmitterID: "10987654321", PostID: "12"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Complaint
			require.NoError(t, json.Unmarshal([]byte(tt.body), &c))
			assert.Equal(t, tt.expected, c.Key())
		})
	}
}

func TestComplaint_DecodeNumericRoom(t *testing.T) {
	var c Complaint
	require.NoError(t, json.Unmarshal([]byte(`{"PostId": 1, "GoogleId": "g", "RoomNumber": 204, "Floor": null, "Complaint": "Fan broken"}`), &c))
	assert.Equal(t, Text("204"), c.RoomNumber)
	assert.Equal(t, Text(""), c.Floor)
	assert.Equal(t, Text("Fan broken"), c.Body)
}

func TestComplaint_DecodeLenient(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected Complaint
	}{
		{"string post id", `{"PostId": "7", "GoogleId": "g"}`, Complaint{PostID: "7", SubmitterID: "g"}},
		{"missing ids", `{"Name": "Asha"}`, Complaint{Name: "Asha"}},
		{"numeric name", `{"Name": 42, "Status": true}`, Complaint{Name: "42", Status: "true"}},
		{"object id keeps json", `{"GoogleId": {"id": 1}}`, Complaint{SubmitterID: `{"id":1}`}},
		{"not an object", `"oops"`, Complaint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Complaint
			require.NoError(t, json.Unmarshal([]byte(tt.body), &c))
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestComplaint_DecodeListWithOddElements(t *testing.T) {
	var list []Complaint
	require.NoError(t, json.Unmarshal([]byte(`[{"PostId": 1, "GoogleId": "a"}, null, 5, {"Complaint": "Fan"}]`), &list))
	require.Len(t, list, 4)
	assert.Equal(t, Key{SubmitterID: "a", PostID: "1"}, list[0].Key())
	assert.Equal(t, Text("Fan"), list[3].Body)
}

func TestKey(t *testing.T) {
	assert.True(t, Key{SubmitterID: "a", PostID: "1"}.Complete())
	assert.Equal(t, []string{"postId"}, Key{SubmitterID: "a"}.Missing())
	assert.Equal(t, []string{"submitterId", "postId"}, Key{}.Missing())
	assert.Nil(t, Key{SubmitterID: "a", PostID: "1"}.Missing())

	assert.Equal(t, "a%20b/1", Key{SubmitterID: "a b", PostID: "1"}.Path())
	assert.Equal(t, "a b/1", Key{SubmitterID: "a b", PostID: "1"}.String())
}

func TestDateFormatter_Format(t *testing.T) {
	f, err := NewDateFormatter("en-US", time.UTC)
	require.NoError(t, err)

	tests := []struct {
		name           string
		createdAt      string
		acceptLanguage string
		expected       string
	}{
		{"default locale", "2024-03-05T10:20:30Z", "", "3/5/2024"},
		{"british", "2024-03-05T10:20:30Z", "en-GB,en;q=0.8", "05/03/2024"},
		{"german", "2024-03-05T10:20:30Z", "de-DE,de;q=0.9", "5.3.2024"},
		{"japanese", "2024-03-05T10:20:30Z", "ja", "2024/3/5"},
		{"sqlite timestamp", "2024-03-05 10:20:30", "en-US", "3/5/2024"},
		{"date only", "2024-12-25", "", "12/25/2024"},
		{"fractional seconds", "2024-03-05T10:20:30.123Z", "", "3/5/2024"},
		{"garbage header falls back", "2024-03-05T10:20:30Z", ";;;", "3/5/2024"},
		{"unparseable", "yesterday", "", InvalidDate},
		{"empty", "", "", InvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Format(tt.createdAt, tt.acceptLanguage))
		})
	}
}

func TestDateFormatter_DisplayZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	f, err := NewDateFormatter("en-GB", ist)
	require.NoError(t, err)

	// 23:30 UTC is already the next day in IST.
	assert.Equal(t, "06/03/2024", f.Format("2024-03-05T23:30:00Z", ""))
}

func TestNewDateFormatter_InvalidLocale(t *testing.T) {
	_, err := NewDateFormatter("!!", time.UTC)
	assert.Error(t, err)
}
