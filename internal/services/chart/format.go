package chart

import (
	"math"
	"strconv"
	"strings"

	"CryptoCast/pkg/util"

	"github.com/shopspring/decimal"
)

const (
	tooltipDateLayout  = "Jan 2, 2006"
	tickDateLayout     = "Jan 2"
	expectedDateLayout = "1/2/2006"
)

// FormatPrice renders a USD amount with two decimals, or up to six when
// the amount is below one dollar.
func FormatPrice(v float64) string {
	maxFrac := 2
	if v < 1 {
		maxFrac = 6
	}
	n := formatNumber(math.Abs(v), 2, maxFrac)
	if v < 0 && strings.Trim(n, "0.,") != "" {
		return "-$" + n
	}
	return "$" + n
}

// FormatTick renders a y-axis tick, abbreviating thousands as "k".
func FormatTick(v float64) string {
	if v >= 1000 {
		return "$" + formatNumber(v/1000, 0, 3) + "k"
	}
	return "$" + formatNumber(v, 0, 3)
}

// FormatPercent renders a percentage with exactly two decimals.
func FormatPercent(p float64) string {
	if !finite(p) {
		return strconv.FormatFloat(p, 'f', -1, 64)
	}
	return decimal.NewFromFloat(p).StringFixed(2)
}

// TooltipLabel renders "<series>: <price>" for a hovered point.
// A nil value renders the series name alone.
func TooltipLabel(series string, v *float64) string {
	label := series
	if label != "" {
		label += ": "
	}
	if v != nil {
		label += FormatPrice(*v)
	}
	return label
}

func FormatTooltipDate(label string) string { return util.FormatDate(label, tooltipDateLayout) }

func FormatTickDate(label string) string { return util.FormatDate(label, tickDateLayout) }

func FormatExpectedDate(label string) string { return util.FormatDate(label, expectedDateLayout) }

// formatNumber rounds half away from zero to maxFrac digits, keeps at least
// minFrac digits, and groups the integer part by thousands.
func formatNumber(v float64, minFrac, maxFrac int) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	s := decimal.NewFromFloat(v).Round(int32(maxFrac)).StringFixed(int32(maxFrac))
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	for len(frac) > minFrac && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}

	out := groupThousands(intPart)
	if frac != "" {
		out += "." + frac
	}
	if neg && strings.Trim(out, "0.,") != "" {
		out = "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
