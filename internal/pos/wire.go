package pos

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// flexTime accepts the timestamp layouts vendors actually send.
type flexTime struct {
	time.Time
}

var flexLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range flexLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// money converts a vendor major-unit amount to the canonical float.
// No rounding: three-decimal currencies (KWD, BHD) keep their precision.
func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// minorMoney converts integer minor units (cents) to major units.
func minorMoney(amount int64) float64 {
	return decimal.New(amount, -2).InexactFloat64()
}

func optionalMoney(d *decimal.Decimal) *float64 {
	if d == nil || d.IsZero() {
		return nil
	}
	v := money(*d)
	return &v
}

func quantity(d decimal.Decimal) (int, error) {
	if !d.IsInteger() {
		return 0, fmt.Errorf("non-integer quantity %s", d.String())
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative quantity %s", d.String())
	}
	return int(d.IntPart()), nil
}

// referencesTable reports whether free text mentions "Table <id>", ignoring case.
func referencesTable(text, tableID string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower("Table "+tableID))
}

// mentionsTable reports whether text contains "Table <id>" as a whole token:
// "Table 12" mentions table 12 but not table 1.
func mentionsTable(text, tableID string) bool {
	if strings.TrimSpace(tableID) == "" {
		return false
	}
	re := regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])table\s+` + regexp.QuoteMeta(tableID) + `(?:$|[^\p{L}\p{N}])`)
	return re.MatchString(text)
}

// namesTable matches a vendor table name against a table id: "12" or "Table 12".
func namesTable(name, tableID string) bool {
	name = strings.TrimSpace(name)
	return strings.EqualFold(name, tableID) || strings.EqualFold(name, "Table "+tableID)
}

// latest picks the element with the greatest timestamp; the earlier one wins a tie.
func latest[T any](items []T, updated func(T) time.Time) (T, bool) {
	var best T
	found := false
	for _, it := range items {
		if !found || updated(it).After(updated(best)) {
			best = it
			found = true
		}
	}
	return best, found
}
