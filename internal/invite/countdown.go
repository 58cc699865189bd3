package invite

import (
	"time"

	"valentine/internal/model"
)

// TimeLeft is the countdown shown on the invitation card.
type TimeLeft struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Until breaks the time remaining before d.Start into days/hours/minutes/
// seconds. It never goes negative.
func Until(now time.Time, d model.EventDetails) TimeLeft {
	diff := d.Start.Sub(now)
	if diff <= 0 {
		return TimeLeft{}
	}
	secs := int64(diff / time.Second)
	return TimeLeft{
		Days:    int(secs / 86400),
		Hours:   int(secs / 3600 % 24),
		Minutes: int(secs / 60 % 60),
		Seconds: int(secs % 60),
	}
}

// Zero reports whether the countdown has run out.
func (t TimeLeft) Zero() bool {
	return t == TimeLeft{}
}
