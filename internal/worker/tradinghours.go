// Package worker runs the three long-lived ingestion loops (daily, slow
// intraday, crypto-tiered) plus the cron-driven maintenance sweep, all
// sharing one write-locked HealthStats snapshot.
package worker

import "time"

// session is one open/close window on a trading day, in HICT local time.
type session struct {
	openHour, openMinute   int
	closeHour, closeMinute int
}

// vnSessions are HOSE's two trading windows: morning continuous trading
// and the afternoon session, with the midday break excluded.
var vnSessions = []session{
	{openHour: 9, openMinute: 0, closeHour: 11, closeMinute: 30},
	{openHour: 13, openMinute: 0, closeHour: 15, closeMinute: 0},
}

var hanoiLocation = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}()

// IsTradingHours reports whether t falls within a HOSE trading session:
// Monday through Friday, 09:00-11:30 or 13:00-15:00 ICT. It does not
// consult a holiday calendar; a worker idling through a holiday at the
// shorter cadence is a cosmetic cost, not a correctness one.
func IsTradingHours(t time.Time) bool {
	local := t.In(hanoiLocation)
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	for _, s := range vnSessions {
		open := s.openHour*60 + s.openMinute
		close := s.closeHour*60 + s.closeMinute
		if minutes >= open && minutes < close {
			return true
		}
	}
	return false
}
