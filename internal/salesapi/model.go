package salesapi

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time component. The vendas API serialises
// dates as ISO strings; some deployments return full timestamps, which are
// truncated to their date part on decode.
type Date struct {
	t time.Time
}

// NewDate builds a Date from year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date string.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return Date{t: t}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Time returns the date as a UTC midnight time.Time.
func (d Date) Time() time.Time { return d.t }

// Before reports whether d is chronologically before other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// String renders the date as an ISO calendar date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SaleRecord is one transaction entry as served by the vendas API. Records are
// read-only from this system's point of view.
type SaleRecord struct {
	ID       string  `json:"id" validate:"required"`
	Product  string  `json:"produto"`
	Quantity int64   `json:"quantidade" validate:"gte=0"`
	Date     Date    `json:"data"`
	Value    float64 `json:"valor" validate:"gte=0"`
}

// Filter bounds a sale listing by calendar date. A zero bound leaves that side
// unbounded and is never transmitted.
type Filter struct {
	From Date
	To   Date
}

// IsZero reports whether no bound is set.
func (f Filter) IsZero() bool { return f.From.IsZero() && f.To.IsZero() }

// Values encodes the filter as query parameters, omitting absent bounds
// entirely rather than sending them empty.
func (f Filter) Values() url.Values {
	values := url.Values{}
	if !f.From.IsZero() {
		values.Set("dataInicio", f.From.String())
	}
	if !f.To.IsZero() {
		values.Set("dataFim", f.To.String())
	}
	return values
}

// CacheKey returns a stable token identifying the filter for memoisation.
func (f Filter) CacheKey() string {
	from := "-"
	to := "-"
	if !f.From.IsZero() {
		from = f.From.String()
	}
	if !f.To.IsZero() {
		to = f.To.String()
	}
	return from + ":" + to
}

// Credentials authenticates against the vendas API login endpoint.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required"`
}
