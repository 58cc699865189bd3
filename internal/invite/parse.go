package invite

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "valentine/internal/log"
	"valentine/internal/model"
)

// ParseCalendarFile reads back the first VEVENT of an exported document.
//
//   - TEXT values arrive already decoded by the ical parser.
//   - Floating DTSTART/DTEND are interpreted in loc (time.Local if nil);
//     UTC ("Z") and date-only forms are accepted as well.
//   - Display fields are recomputed the same way Resolve computes them.
func ParseCalendarFile(body []byte, loc *time.Location) (model.EventDetails, error) {
	var out model.EventDetails
	if len(body) == 0 {
		return out, errors.New("invite: empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "bytes", len(body))
		return out, err
	}

	events := cal.Events()
	if len(events) == 0 {
		return out, errors.New("invite: no VEVENT in calendar")
	}
	ve := events[0]

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
		out.LocationShort = out.Location
	}
	if p := ve.GetProperty(ical.ComponentPropertyUrl); p != nil {
		out.MapURL = p.Value
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return out, errors.New("invite: missing DTSTART")
	}
	if out.Start, err = parseICSTime(startProp.Value, loc); err != nil {
		return out, err
	}
	out.End = out.Start
	if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil {
		if out.End, err = parseICSTime(endProp.Value, loc); err != nil {
			return out, err
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertyDtstamp); p != nil {
		if t, err := parseICSTime(p.Value, loc); err == nil {
			out.ResolvedAt = t
		}
	}

	out.OccursOn = time.Date(out.Start.Year(), out.Start.Month(), out.Start.Day(), 0, 0, 0, 0, loc)
	describe(&out)
	appLog.Debug("ics parse completed", "summary", out.Title, "start", out.StartStamp)
	return out, nil
}

// parseICSTime parses a basic ICS date/date-time string into time.Time.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g., 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse(StampLayout+"Z", v)
		if err != nil {
			return time.Time{}, err
		}
		return t.In(loc), nil
	}

	// Floating date-time, e.g., 20250101T090000
	if strings.Contains(v, "T") {
		return stampTime(v, loc)
	}

	// Date-only, e.g., 20250101
	return time.ParseInLocation("20060102", v, loc)
}
