package invite

import (
	"errors"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"valentine/internal/model"
)

const (
	// FileName is the suggested download name for the calendar export.
	FileName = "valentine-date.ics"
	// MIMEType is served with the calendar export.
	MIMEType = "text/calendar; charset=utf-8"
	// ProductID identifies the generator in PRODID.
	ProductID = "-//Valentine Invitation//EN"
)

// uidNamespace scopes the name-based UIDs of exported events.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("valentine-invitation"))

// ToCalendarFile renders d as a single-event iCalendar document.
//
//   - DTSTART/DTEND are floating local times equal to StartStamp/EndStamp.
//   - SUMMARY, DESCRIPTION and LOCATION are TEXT-escaped (backslash,
//     semicolon, comma, newline) by the ical library setters.
//   - Lines end in CRLF.
//   - UID is derived from date and title, so the same details always produce
//     the same document.
func ToCalendarFile(d model.EventDetails) ([]byte, error) {
	if d.StartStamp == "" || d.EndStamp == "" {
		return nil, errors.New("invite: event details have no start/end stamps")
	}

	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)

	ev := cal.AddEvent(eventUID(d))
	stamp := d.ResolvedAt
	if stamp.IsZero() {
		stamp = d.Start
	}
	ev.SetDtStampTime(stamp.UTC())
	ev.SetProperty(ical.ComponentPropertyDtStart, d.StartStamp)
	ev.SetProperty(ical.ComponentPropertyDtEnd, d.EndStamp)
	ev.SetSummary(d.Title)
	if d.Description != "" {
		ev.SetDescription(d.Description)
	}
	if d.Location != "" {
		ev.SetLocation(d.Location)
	}
	if d.MapURL != "" {
		ev.SetURL(d.MapURL)
	}

	alarm := ev.AddAlarm()
	alarm.SetAction(ical.ActionDisplay)
	alarm.SetTrigger("-PT1H")
	alarm.SetDescription(d.Title)

	return []byte(cal.Serialize()), nil
}

func eventUID(d model.EventDetails) string {
	return uuid.NewSHA1(uidNamespace, []byte(d.StartStamp+"|"+d.Title)).String() + "@valentine"
}

// stampTime parses a StampLayout value in loc.
func stampTime(v string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(StampLayout, v, loc)
}
