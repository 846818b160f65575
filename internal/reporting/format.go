package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const notAvailable = "n/a"

// FormatNumber renders v with a space as thousands separator and a dot as
// decimal separator. Non-finite values render as "n/a".
func FormatNumber(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	if decimals < 0 {
		decimals = 0
	}
	if decimals > 9 {
		decimals = 9
	}
	return humanize.FormatFloat("# ###."+strings.Repeat("#", decimals), v)
}

// FormatPercent renders a percentage with one decimal, e.g. "66.7 %".
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return fmt.Sprintf("%.1f %%", v)
}

// FormatOptional renders a nil-able value.
func FormatOptional(v *float64, decimals int) string {
	if v == nil {
		return notAvailable
	}
	return FormatNumber(*v, decimals)
}

// MonthName returns the English month name.
func MonthName(m time.Month) string {
	return m.String()
}

// SeasonLabel returns the display label of a season key.
func SeasonLabel(key string) string {
	if key == "" {
		return ""
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.Format("2006-01-02 15:04")
}

// cellValue keeps NaN out of spreadsheets; excelize would write it as text.
func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return v
}
