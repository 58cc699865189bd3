package model

import "time"

// EventDetails is the invitation's event, derived from the clock on every
// read and never stored. Start/End fall on OccursOn in the configured zone.
type EventDetails struct {
	// OccursOn is local midnight of the event date.
	OccursOn time.Time
	Start    time.Time
	End      time.Time

	// DisplayDate is e.g. "February 14, 2026"; DisplayTime e.g. "4:00 PM".
	DisplayDate string
	DisplayTime string

	// StartStamp / EndStamp are compact floating timestamps
	// (20060102T150405) used by calendar exports and deep links.
	StartStamp string
	EndStamp   string

	Title         string
	Description   string
	Location      string
	LocationShort string
	MapURL        string
	DressCode     string

	// ResolvedAt is the "now" these details were derived from.
	ResolvedAt time.Time
}
