package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
)

// weekdayNames maps the stored three-letter tokens to time.Weekday.
var weekdayNames = map[string]time.Weekday{
	"Mon": time.Monday,
	"Tue": time.Tuesday,
	"Wed": time.Wednesday,
	"Thu": time.Thursday,
	"Fri": time.Friday,
	"Sat": time.Saturday,
	"Sun": time.Sunday,
}

// Credential translates the persisted unit row into the value the
// validator decides over.  The redemption constraints stored as CSV
// weekdays and "HH:MM" window bounds are parsed here; malformed data
// is a stored-data error, not a rejection.
func (u RedeemableUnit) Credential() (lifecycle.Credential, error) {
	cred := lifecycle.Credential{
		Status:        u.Status,
		SingleUse:     u.Kind == UnitKindSingle,
		TotalUses:     u.TotalUses,
		UsesRemaining: u.UsesRemaining,
		ValidUntil:    u.ValidUntil,
	}
	if s := strings.TrimSpace(u.AllowedWeekdays); s != "" {
		for _, part := range strings.Split(s, ",") {
			day, ok := weekdayNames[strings.TrimSpace(part)]
			if !ok {
				return lifecycle.Credential{}, fmt.Errorf("unit %d: unknown weekday %q", u.ID, part)
			}
			cred.Weekdays = append(cred.Weekdays, day)
		}
	}
	if u.WindowStart != nil && u.WindowEnd != nil {
		start, err := parseClockMinute(*u.WindowStart)
		if err != nil {
			return lifecycle.Credential{}, fmt.Errorf("unit %d: %w", u.ID, err)
		}
		end, err := parseClockMinute(*u.WindowEnd)
		if err != nil {
			return lifecycle.Credential{}, fmt.Errorf("unit %d: %w", u.ID, err)
		}
		cred.Window = &lifecycle.ClockWindow{StartMinute: start, EndMinute: end}
	}
	return cred, nil
}

// parseClockMinute converts "HH:MM" into minutes since midnight.
func parseClockMinute(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("bad clock value %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
