// Package report renders feasibility results into human-readable documents.
// Renderers are read-only consumers of the calculator's output: absent
// optional figures render as placeholders and are never substituted with
// zero.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/ggtech/housing-feasibility/internal/config"
	"github.com/ggtech/housing-feasibility/internal/feasibility"
	"github.com/ggtech/housing-feasibility/pkg/currency"
	"github.com/ggtech/housing-feasibility/pkg/format"
)

// Report bundles everything one rendered document covers.
type Report struct {
	Title       string
	Inputs      config.Inputs
	Outputs     *feasibility.Outputs
	Warnings    []string
	Sensitivity *feasibility.Result
	Quote       *currency.Quote
	GeneratedAt time.Time
}

// BuildMarkdown renders the report as GFM markdown, the input to both the
// PDF renderer and plain-text consumers.
func BuildMarkdown(r Report) string {
	var b strings.Builder
	out := r.Outputs

	title := r.Title
	if title == "" {
		title = "Residential Feasibility Report"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	if r.Quote != nil {
		fmt.Fprintf(&b, "Exchange rate: %.4f USD/TRY (%s", r.Quote.Rate, r.Quote.Source)
		if r.Quote.Date != "" {
			fmt.Fprintf(&b, ", %s", r.Quote.Date)
		}
		b.WriteString(")\n\n")
	} else {
		b.WriteString("Exchange rate: unavailable; TRY columns are empty\n\n")
	}

	b.WriteString("## Site Parameters\n\n")
	b.WriteString("| Parameter | Value |\n|---|---|\n")
	writeInputRow(&b, "Land area", optionalArea(r.Inputs.LandAreaM2))
	writeInputRow(&b, "Floor-area ratio", optionalNumber(r.Inputs.FloorAreaRatio))
	writeInputRow(&b, "Parking type", string(r.Inputs.ParkingType))
	writeInputRow(&b, "Housing class", string(r.Inputs.HousingClass))
	writeInputRow(&b, "Sellable coefficient", optionalNumber(r.Inputs.SellableCoefficient))
	writeInputRow(&b, "Parking coefficient", optionalNumber(r.Inputs.ParkingCoefficient))
	writeInputRow(&b, "Construction cost", optionalUnitPriceUSD(r.Inputs.ConstructionCostPerM2))
	writeInputRow(&b, "Land value", format.OptionalUSD(r.Inputs.LandTotalValueUSD))
	writeInputRow(&b, "Average unit size", optionalArea(r.Inputs.AvgUnitSizeM2))
	writeInputRow(&b, "Sale price", optionalUnitPriceUSD(r.Inputs.SalePricePerM2))
	b.WriteString("\n")

	b.WriteString("## Areas\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Permitted floor area | %s |\n", format.SquareMeters(out.FloorAreaM2))
	fmt.Fprintf(&b, "| Sellable area | %s |\n", format.SquareMeters(out.SellableAreaM2))
	fmt.Fprintf(&b, "| Total built area (incl. parking) | %s |\n", format.SquareMeters(out.BuiltAreaM2))
	fmt.Fprintf(&b, "| Estimated unit count | %s |\n", format.Count(out.UnitCount))
	fmt.Fprintf(&b, "| Remaining sellable area | %s |\n\n", format.SquareMeters(out.RemainingAreaM2))

	b.WriteString("## Costs\n\n")
	b.WriteString("| Item | USD | TRY |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Construction cost | %s | %s |\n", format.USD(out.ConstructionCostUSD), format.OptionalTRY(out.ConstructionCostTRY))
	fmt.Fprintf(&b, "| Land value | %s | %s |\n", format.USD(out.LandValueUSD), format.OptionalTRY(out.LandValueTRY))
	fmt.Fprintf(&b, "| Total project cost | %s | %s |\n\n", format.USD(out.TotalCostUSD), format.OptionalTRY(out.TotalCostTRY))

	b.WriteString("## Pricing\n\n")
	b.WriteString("| Price point | USD/m² | TRY/m² |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Breakeven | %s | %s |\n", format.USD(out.BreakevenUSDM2), format.OptionalTRY(out.BreakevenTRYM2))
	fmt.Fprintf(&b, "| Target at 10%% margin | %s | %s |\n", format.USD(out.Target10USDM2), format.OptionalTRY(out.Target10TRYM2))
	fmt.Fprintf(&b, "| Target at 30%% margin | %s | %s |\n", format.USD(out.Target30USDM2), format.OptionalTRY(out.Target30TRYM2))
	fmt.Fprintf(&b, "| Target at 50%% margin | %s | %s |\n\n", format.USD(out.Target50USDM2), format.OptionalTRY(out.Target50TRYM2))

	if out.RevenueUSD != nil {
		b.WriteString("## Revenue\n\n")
		b.WriteString("| Metric | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Sale price | %s/m² |\n", format.OptionalUSD(out.SalePriceUSDM2))
		fmt.Fprintf(&b, "| Project revenue | %s |\n", format.OptionalUSD(out.RevenueUSD))
		fmt.Fprintf(&b, "| Project profit | %s |\n", format.OptionalUSD(out.ProfitUSD))
		fmt.Fprintf(&b, "| Gross margin | %s |\n\n", format.OptionalPercent(out.GrossMargin))
	} else {
		b.WriteString("## Revenue\n\nNo sale price supplied; revenue figures are not computed. ")
		b.WriteString("Use the pricing ladder above to choose a candidate price.\n\n")
	}

	if r.Sensitivity != nil && len(r.Sensitivity.Grid) > 0 {
		b.WriteString("## Sensitivity (profit, USD)\n\n")
		b.WriteString("| Cost \\ Sale |")
		for _, sm := range r.Sensitivity.SaleMultipliers {
			fmt.Fprintf(&b, " %.0f%% |", sm*100)
		}
		b.WriteString("\n|---|")
		for range r.Sensitivity.SaleMultipliers {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for i, row := range r.Sensitivity.Grid {
			fmt.Fprintf(&b, "| %.0f%% |", r.Sensitivity.CostMultipliers[i]*100)
			for _, cell := range row {
				fmt.Fprintf(&b, " %s |", format.OptionalUSD(cell.ProfitUSD))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeInputRow(b *strings.Builder, label, value string) {
	if value == "" {
		value = format.Placeholder
	}
	fmt.Fprintf(b, "| %s | %s |\n", label, value)
}

func optionalNumber(v *float64) string {
	if v == nil {
		return format.Placeholder
	}
	return fmt.Sprintf("%.2f", *v)
}

func optionalArea(v *float64) string {
	if v == nil {
		return format.Placeholder
	}
	return format.SquareMeters(*v)
}

func optionalUnitPriceUSD(v *float64) string {
	if v == nil {
		return format.Placeholder
	}
	return format.USD(*v) + "/m²"
}
