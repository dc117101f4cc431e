package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateTimeLayout is the wire format for every timestamp (yyyy-MM-dd HH:mm:ss).
const DateTimeLayout = "2006-01-02 15:04:05"

// DateTime is a second-precision UTC timestamp with the service's JSON layout.
type DateTime struct {
	time.Time
}

// NewDateTime truncates t to whole seconds in UTC so values survive a JSON round-trip.
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC().Truncate(time.Second)}
}

func (d DateTime) String() string {
	return d.Time.UTC().Format(DateTimeLayout)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("datetime: %w", ErrValidation)
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("datetime %q: %w", s, ErrValidation)
	}
	d.Time = t
	return nil
}
