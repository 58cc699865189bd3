package invite

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDetails(t *testing.T) (r *Resolver, now time.Time) {
	t.Helper()
	s := DefaultSettings()
	s.Title = "Valentine's Day Date"
	s.Description = "Dinner, then art; bring a coat"
	s.Location = "Nike Art Museum, Lagos, Nigeria"
	return NewResolver(s, lagos), at(2025, time.February, 13, 10, 0, 0)
}

// unfold joins RFC 5545 continuation lines.
func unfold(doc string) string {
	return strings.ReplaceAll(doc, "\r\n ", "")
}

func TestToCalendarFileEscapesAndUsesCRLF(t *testing.T) {
	r, now := sampleDetails(t)
	body, err := ToCalendarFile(r.Resolve(now))
	require.NoError(t, err)
	doc := string(body)

	require.True(t, strings.HasSuffix(doc, "\r\n"), "document must end with CRLF")
	for i, ch := range doc {
		if ch == '\n' {
			require.True(t, i > 0 && doc[i-1] == '\r', "bare LF at byte %d", i)
		}
	}

	lines := strings.Split(strings.TrimSuffix(unfold(doc), "\r\n"), "\r\n")
	assert.Equal(t, "BEGIN:VCALENDAR", lines[0])
	assert.Equal(t, "END:VCALENDAR", lines[len(lines)-1])
	assert.Contains(t, lines, "DTSTART:20250214T160000")
	assert.Contains(t, lines, "DTEND:20250214T200000")
	assert.Contains(t, lines, `DESCRIPTION:Dinner\, then art\; bring a coat`)
	assert.Contains(t, lines, `LOCATION:Nike Art Museum\, Lagos\, Nigeria`)
	assert.Contains(t, lines, "SUMMARY:Valentine's Day Date")
	assert.Contains(t, lines, "PRODID:"+ProductID)
}

func TestToCalendarFileEscapesBackslashAndNewline(t *testing.T) {
	r, now := sampleDetails(t)
	d := r.Resolve(now)
	d.Description = `a\b` + "\n" + "c"

	body, err := ToCalendarFile(d)
	require.NoError(t, err)
	assert.Contains(t, unfold(string(body)), `DESCRIPTION:a\\b\nc`)
}

func TestToCalendarFileIsDeterministic(t *testing.T) {
	r, now := sampleDetails(t)
	a, err := ToCalendarFile(r.Resolve(now))
	require.NoError(t, err)
	b, err := ToCalendarFile(r.Resolve(now))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestToCalendarFileRequiresStamps(t *testing.T) {
	r, now := sampleDetails(t)
	d := r.Resolve(now)
	d.StartStamp = ""
	_, err := ToCalendarFile(d)
	assert.Error(t, err)
}

func TestCalendarFileRoundTrip(t *testing.T) {
	r, now := sampleDetails(t)
	want := r.Resolve(now)

	body, err := ToCalendarFile(want)
	require.NoError(t, err)

	got, err := ParseCalendarFile(body, lagos)
	require.NoError(t, err)

	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Location, got.Location)
	assert.Equal(t, want.MapURL, got.MapURL)
	assert.Equal(t, want.StartStamp, got.StartStamp)
	assert.Equal(t, want.EndStamp, got.EndStamp)
	assert.Equal(t, want.DisplayDate, got.DisplayDate)
	assert.Equal(t, want.DisplayTime, got.DisplayTime)
	assert.True(t, want.Start.Equal(got.Start))
	assert.True(t, want.End.Equal(got.End))
}

func TestCalendarFileRoundTripKeepsEscapedText(t *testing.T) {
	r, now := sampleDetails(t)
	want := r.Resolve(now)
	want.Title = `Back\slash`
	want.Description = "Bring C:\\new\\things, and a \\; too\nsecond line"
	want.Location = `Gallery; Hall\2, Lagos`

	body, err := ToCalendarFile(want)
	require.NoError(t, err)

	got, err := ParseCalendarFile(body, lagos)
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Location, got.Location)
}

func TestParseCalendarFileErrors(t *testing.T) {
	_, err := ParseCalendarFile(nil, lagos)
	assert.Error(t, err)

	empty := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:x\r\nEND:VCALENDAR\r\n"
	_, err = ParseCalendarFile([]byte(empty), lagos)
	assert.Error(t, err)
}

func TestParseICSTime(t *testing.T) {
	utc, err := parseICSTime("20250214T150000Z", lagos)
	require.NoError(t, err)
	assert.Equal(t, 16, utc.Hour())

	date, err := parseICSTime("20250214", lagos)
	require.NoError(t, err)
	assert.Equal(t, 14, date.Day())

	_, err = parseICSTime("  ", lagos)
	assert.Error(t, err)
}

func TestCalendarLink(t *testing.T) {
	r, now := sampleDetails(t)
	link := CalendarLink(r.Resolve(now))

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "calendar.google.com", u.Host)

	q := u.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Valentine's Day Date", q.Get("text"))
	assert.Equal(t, "Dinner, then art; bring a coat", q.Get("details"))
	assert.Equal(t, "20250214T160000/20250214T200000", q.Get("dates"))
	assert.NotContains(t, link, "20250214T160000/")
}
