// Package format provides display formatting for monetary amounts, areas,
// and ratios. Absent optional values render as a placeholder so report
// consumers can distinguish "not computed" from zero.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/ggtech/housing-feasibility/pkg/constants"
)

// Placeholder is rendered for absent optional values.
const Placeholder = "-"

// USD returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func USD(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// TRY returns a currency string with a lira sign and thousands separators (e.g., "₺1,234.56").
func TRY(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-₺" + formatted
	}
	return "₺" + formatted
}

// OptionalUSD renders a possibly-absent USD amount.
func OptionalUSD(amount *float64) string {
	if amount == nil {
		return Placeholder
	}
	return USD(*amount)
}

// OptionalTRY renders a possibly-absent TRY amount.
func OptionalTRY(amount *float64) string {
	if amount == nil {
		return Placeholder
	}
	return TRY(*amount)
}

// Percent renders a fraction as a percentage with one decimal (e.g., 0.382 -> "38.2%").
func Percent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*constants.PercentageMultiplier)
}

// OptionalPercent renders a possibly-absent fraction as a percentage.
func OptionalPercent(fraction *float64) string {
	if fraction == nil {
		return Placeholder
	}
	return Percent(*fraction)
}

// SquareMeters renders an area with thousands separators and the m² unit.
func SquareMeters(area float64) string {
	return groupThousands(fmt.Sprintf("%.0f", area)) + " m²"
}

// Count renders an integer with thousands separators.
func Count(n int) string {
	return groupThousands(fmt.Sprintf("%d", n))
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	return groupThousands(intPart) + "." + decPart
}

func groupThousands(intPart string) string {
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}
	if neg {
		return "-" + intPart
	}
	return intPart
}
