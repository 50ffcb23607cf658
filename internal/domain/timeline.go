package domain

import (
	"fmt"
	"time"
)

// TimeLayout is the timestamp format used in configuration files.
const TimeLayout = "2006-01-02 15:04"

// TimeSteps returns start, start+step, ... up to and including end.
func TimeSteps(start, end time.Time, step time.Duration) ([]time.Time, error) {
	if step <= 0 {
		return nil, fmt.Errorf("time step must be positive, got %s", step)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %s is before start %s", end.Format(TimeLayout), start.Format(TimeLayout))
	}

	var times []time.Time
	for t := start; !t.After(end); t = t.Add(step) {
		times = append(times, t)
	}
	return times, nil
}

// ParseTime parses a UTC timestamp in TimeLayout or RFC 3339.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(TimeLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected %q or RFC 3339", s, TimeLayout)
	}
	return t.UTC(), nil
}

// TimeUnits is the CF time unit of prescribed SST files.
const TimeUnits = "seconds since 1981-01-01 00:00:00"

// Epoch is the reference time of TimeUnits.
var Epoch = time.Date(1981, 1, 1, 0, 0, 0, 0, time.UTC)
