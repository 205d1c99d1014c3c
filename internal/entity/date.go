package entity

import "time"

const dateLayout = "2006-01-02"

// Date is a day-precision point in time serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate builds a Date from a full timestamp, dropping the time of day.
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalCSV() (string, error) {
	return d.Format(dateLayout), nil
}

func (d *Date) UnmarshalCSV(s string) error {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// Timestamp is a point in time serialized as RFC 3339.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalCSV() (string, error) {
	return t.Format(time.RFC3339), nil
}

func (t *Timestamp) UnmarshalCSV(s string) error {
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}
