package invite

import (
	"net/url"

	"valentine/internal/model"
)

const calendarRenderURL = "https://calendar.google.com/calendar/render"

// CalendarLink returns a Google Calendar "create event" URL prefilled with
// d. It is the fallback where a calendar file cannot be opened directly.
func CalendarLink(d model.EventDetails) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", d.Title)
	q.Set("details", d.Description)
	q.Set("location", d.Location)
	q.Set("dates", d.StartStamp+"/"+d.EndStamp)
	return calendarRenderURL + "?" + q.Encode()
}
