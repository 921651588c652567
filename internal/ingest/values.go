package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/kitchenops/internal/domain"
)

var timestampLayouts = []string{
	"1/2/06 3:04 PM",
	"1/2/2006 3:04 PM",
	"1/2/06 15:04",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// parseAmount reads a money or quantity cell. Blank is zero; currency
// symbols, thousands separators and accounting parentheses are accepted.
func parseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	if negative {
		v = -v
	}
	return v, nil
}

func parseCount(raw string) (int, error) {
	v, err := parseAmount(raw)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "1", "t":
		return true
	}
	return false
}

// parseExportDate reads MM/DD/YYYY, ignoring a trailing time of day.
// ISO dates are accepted too.
func parseExportDate(raw string) (domain.Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.Date{}, fmt.Errorf("date is empty")
	}
	if i := strings.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	for _, layout := range []string{"1/2/2006", "1/2/06", domain.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.DateOf(t), nil
		}
	}
	return domain.Date{}, fmt.Errorf("invalid date %q", raw)
}

// parseTimestamp reads an export timestamp as wall-clock time in loc.
func parseTimestamp(raw string, loc *time.Location) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q", raw)
}
