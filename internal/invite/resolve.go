// Package invite derives the invitation's event details from the clock and
// exports them as an iCalendar document or a calendar deep link.
package invite

import (
	"time"

	"github.com/teambition/rrule-go"

	"valentine/internal/config"
	appLog "valentine/internal/log"
	"valentine/internal/model"
)

// StampLayout is the compact floating timestamp used by ICS and deep links.
const StampLayout = "20060102T150405"

// Settings describes the annual event independent of any particular year.
type Settings struct {
	Title         string
	Description   string
	Location      string
	LocationShort string
	MapURL        string
	DressCode     string

	Month time.Month
	Day   int

	StartHour, StartMinute int
	EndHour, EndMinute     int
}

// DefaultSettings returns Feb 14, 16:00–20:00 with the stock texts.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.DefaultEvent())
}

// SettingsFromConfig converts the YAML event block. Invalid clock strings
// fall back to the stock times.
func SettingsFromConfig(ev config.EventConfig) Settings {
	s := Settings{
		Title:         ev.Title,
		Description:   ev.Description,
		Location:      ev.Location,
		LocationShort: ev.LocationShort,
		MapURL:        ev.MapURL,
		DressCode:     ev.DressCode,
		Month:         time.Month(ev.Month),
		Day:           ev.Day,
		StartHour:     16,
		EndHour:       20,
	}
	if s.Month < time.January || s.Month > time.December {
		s.Month = time.February
	}
	if s.Day < 1 || s.Day > 31 {
		s.Day = 14
	}
	if h, m, err := config.ParseClock(ev.Start); err == nil {
		s.StartHour, s.StartMinute = h, m
	}
	if h, m, err := config.ParseClock(ev.End); err == nil {
		s.EndHour, s.EndMinute = h, m
	}
	if s.LocationShort == "" {
		s.LocationShort = s.Location
	}
	return s
}

// Resolver computes EventDetails for a fixed annual date in one time zone.
// It holds no mutable state; every Resolve call recomputes from scratch.
type Resolver struct {
	settings Settings
	loc      *time.Location
}

// NewResolver returns a Resolver for s in loc (time.Local if nil).
func NewResolver(s Settings, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{settings: s, loc: loc}
}

// Location reports the zone dates are resolved in.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve returns the details of the next occurrence.
//
// The occurrence is the first local midnight of Month/Day strictly after now:
// on the event day itself (from 00:00 onward) the following year is chosen.
func (r *Resolver) Resolve(now time.Time) model.EventDetails {
	local := now.In(r.loc)
	day := r.nextOccurrence(local)

	s := r.settings
	start := time.Date(day.Year(), day.Month(), day.Day(), s.StartHour, s.StartMinute, 0, 0, r.loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), s.EndHour, s.EndMinute, 0, 0, r.loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	d := model.EventDetails{
		OccursOn:      day,
		Start:         start,
		End:           end,
		Title:         s.Title,
		Description:   s.Description,
		Location:      s.Location,
		LocationShort: s.LocationShort,
		MapURL:        s.MapURL,
		DressCode:     s.DressCode,
		ResolvedAt:    now,
	}
	describe(&d)
	return d
}

// Resolve uses the default settings in now's own location.
func Resolve(now time.Time) model.EventDetails {
	return NewResolver(DefaultSettings(), now.Location()).Resolve(now)
}

// nextOccurrence evaluates FREQ=YEARLY;BYMONTH=m;BYMONTHDAY=d anchored at
// local midnight and returns the first occurrence strictly after local.
func (r *Resolver) nextOccurrence(local time.Time) time.Time {
	s := r.settings
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.YEARLY,
		Bymonth:    []int{int(s.Month)},
		Bymonthday: []int{s.Day},
		Dtstart:    time.Date(local.Year()-1, time.January, 1, 0, 0, 0, 0, r.loc),
	})
	if err == nil {
		if next := rule.After(local, false); !next.IsZero() {
			return next
		}
	} else {
		appLog.Error("invite: recurrence rule rejected; using direct date math", err,
			"month", int(s.Month), "day", s.Day)
	}

	candidate := time.Date(local.Year(), s.Month, s.Day, 0, 0, 0, 0, r.loc)
	if !candidate.After(local) {
		candidate = time.Date(local.Year()+1, s.Month, s.Day, 0, 0, 0, 0, r.loc)
	}
	return candidate
}

// describe fills the derived display and stamp fields from Start/End.
func describe(d *model.EventDetails) {
	d.DisplayDate = d.OccursOn.Format("January 2, 2006")
	d.DisplayTime = d.Start.Format("3:04 PM")
	d.StartStamp = d.Start.Format(StampLayout)
	d.EndStamp = d.End.Format(StampLayout)
}
