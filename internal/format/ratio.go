// Package format styles the reduce ratio column of the comparison report.
package format

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
)

// Band is the severity bucket of a latency change ratio.
type Band int

const (
	// BandStrongImprovement: v <= -1, and exactly 0
	BandStrongImprovement Band = iota
	// BandImprovement: -1 < v < 0
	BandImprovement
	// BandMild: 0 < v < 0.2
	BandMild
	// BandModerate: 0.2 <= v < 1
	BandModerate
	// BandSevere: v >= 1, latency more than doubled
	BandSevere
)

// Bands lists every band from best to worst.
var Bands = []Band{BandStrongImprovement, BandImprovement, BandMild, BandModerate, BandSevere}

// Classify places v into exactly one band. A ratio of exactly 0 (a change
// rounded away) shares the boldGreen band with v <= -1. NaN must be filtered
// out by the caller.
func Classify(v float64) Band {
	switch {
	case v >= 1:
		return BandSevere
	case v >= 0.2:
		return BandModerate
	case v > 0:
		return BandMild
	case v > -1 && v < 0:
		return BandImprovement
	default:
		return BandStrongImprovement
	}
}

// Class is the CSS class of the band.
func (b Band) Class() string {
	switch b {
	case BandSevere:
		return "red"
	case BandModerate:
		return "blue"
	case BandMild:
		return "black"
	case BandImprovement:
		return "green"
	default:
		return "boldGreen"
	}
}

// Color is the font color of the band as RGB hex.
func (b Band) Color() string {
	switch b {
	case BandSevere:
		return "FF0000"
	case BandModerate:
		return "0000FF"
	case BandMild:
		return "000000"
	default:
		return "008000"
	}
}

// Bold reports whether the band is emphasised.
func (b Band) Bold() bool {
	return b == BandSevere || b == BandStrongImprovement
}

func (b Band) String() string { return b.Class() }

// Ratio is a numeric reduce ratio read from the database.
type Ratio struct {
	Value float64
}

// String is the percentage-suffixed representation, e.g. "0.5%".
func (r Ratio) String() string {
	return strconv.FormatFloat(r.Value, 'f', -1, 64) + "%"
}

// Percent renders v*100 rounded half to even with one decimal, e.g. "150.0%".
func Percent(v float64) string {
	return strconv.FormatFloat(math.RoundToEven(v*100), 'f', 1, 64) + "%"
}

// Numeric extracts a float from the value types database drivers return.
func Numeric(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case Ratio:
		f = x.Value
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case []byte:
		return parse(string(x))
	case string:
		return parse(x)
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parse(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Span renders a numeric ratio as a styled HTML span.
func Span(v float64) template.HTML {
	return template.HTML(fmt.Sprintf(`<span class="%s">%s</span>`, Classify(v).Class(), Percent(v)))
}

// Style returns the styled span for numeric values and v unchanged otherwise.
func Style(v any) any {
	f, ok := Numeric(v)
	if !ok {
		return v
	}
	return Span(f)
}
