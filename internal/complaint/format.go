package complaint

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// InvalidDate is shown when a timestamp cannot be parsed.
const InvalidDate = "Invalid Date"

// dateLayouts maps supported display locales to their date-only layout.
// Order matters: the first entry is the matcher's fallback.
var dateLayouts = []struct {
	tag    language.Tag
	layout string
}{
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.MustParse("en-IN"), "2/1/2006"},
	{language.German, "2.1.2006"},
	{language.French, "02/01/2006"},
	{language.Spanish, "2/1/2006"},
	{language.Japanese, "2006/1/2"},
	{language.Chinese, "2006/1/2"},
	{language.Hindi, "2/1/2006"},
}

// timestampLayouts are tried in order when parsing CreatedAt.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02",
}

// DateFormatter renders complaint timestamps as locale-dependent date-only
// strings, the way a browser's toLocaleDateString would.
type DateFormatter struct {
	matcher  language.Matcher
	fallback int
	location *time.Location
}

// NewDateFormatter builds a formatter. defaultLocale is used when the
// request carries no usable Accept-Language header; loc is the display zone.
func NewDateFormatter(defaultLocale string, loc *time.Location) (*DateFormatter, error) {
	tags := make([]language.Tag, len(dateLayouts))
	for i, l := range dateLayouts {
		tags[i] = l.tag
	}
	matcher := language.NewMatcher(tags)

	def, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("invalid default locale %q: %w", defaultLocale, err)
	}
	_, idx, _ := matcher.Match(def)

	if loc == nil {
		loc = time.Local
	}

	return &DateFormatter{matcher: matcher, fallback: idx, location: loc}, nil
}

// Format renders createdAt as a date-only string for the locale preferred by
// acceptLanguage (an Accept-Language header value, may be empty).
func (f *DateFormatter) Format(createdAt, acceptLanguage string) string {
	t, ok := ParseTimestamp(createdAt, f.location)
	if !ok {
		return InvalidDate
	}
	return t.In(f.location).Format(dateLayouts[f.layoutIndex(acceptLanguage)].layout)
}

func (f *DateFormatter) layoutIndex(acceptLanguage string) int {
	if strings.TrimSpace(acceptLanguage) == "" {
		return f.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return f.fallback
	}
	_, idx, confidence := f.matcher.Match(tags...)
	if confidence == language.No {
		return f.fallback
	}
	return idx
}

// ParseTimestamp parses an API timestamp. Zoneless values are read in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
