// Package output provides utilities for formatting and displaying feasibility results.
package output

import (
	"fmt"
	"strings"

	"github.com/ggtech/housing-feasibility/internal/feasibility"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	unitUSD = "usd"
	unitM2  = "m2"
	unitPct = "pct"
	unitN   = "count"
)

type row struct {
	label  string
	unit   string
	value  *float64
	mirror *float64 // TRY counterpart where one exists
}

func resultRows(out *feasibility.Outputs) []row {
	return []row{
		{"Floor area", unitM2, &out.FloorAreaM2, nil},
		{"Sellable area", unitM2, &out.SellableAreaM2, nil},
		{"Total built area", unitM2, &out.BuiltAreaM2, nil},
		{"Unit count", unitN, float64Ptr(float64(out.UnitCount)), nil},
		{"Remaining sellable area", unitM2, &out.RemainingAreaM2, nil},
		{"Construction cost", unitUSD, &out.ConstructionCostUSD, out.ConstructionCostTRY},
		{"Land value", unitUSD, &out.LandValueUSD, out.LandValueTRY},
		{"Total project cost", unitUSD, &out.TotalCostUSD, out.TotalCostTRY},
		{"Breakeven per m²", unitUSD, &out.BreakevenUSDM2, out.BreakevenTRYM2},
		{"Target at 10% margin", unitUSD, &out.Target10USDM2, out.Target10TRYM2},
		{"Target at 30% margin", unitUSD, &out.Target30USDM2, out.Target30TRYM2},
		{"Target at 50% margin", unitUSD, &out.Target50USDM2, out.Target50TRYM2},
		{"Sale price per m²", unitUSD, out.SalePriceUSDM2, out.SalePriceTRYM2},
		{"Revenue", unitUSD, out.RevenueUSD, out.RevenueTRY},
		{"Profit", unitUSD, out.ProfitUSD, out.ProfitTRY},
		{"Gross margin", unitPct, out.GrossMargin, nil},
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(name string, result *feasibility.Result) {
	p := message.NewPrinter(language.English)
	fmt.Printf("--- Results for project %s ---\n", name)
	fmt.Printf("Metric                  | USD             | TRY\n")
	fmt.Printf("______                  | ___             | ___\n")
	for _, r := range resultRows(result.Base) {
		fmt.Printf("%-23s | ", r.label)
		if r.value == nil {
			fmt.Printf("%-15s | -\n", "-")
			continue
		}
		switch r.unit {
		case unitM2:
			_, _ = p.Printf("%-15s | -\n", p.Sprintf("%.0f m²", *r.value))
		case unitN:
			_, _ = p.Printf("%-15s | -\n", p.Sprintf("%.0f", *r.value))
		case unitPct:
			fmt.Printf("%-15s | -\n", fmt.Sprintf("%.1f%%", *r.value*100))
		default:
			usd := p.Sprintf("$%.2f", *r.value)
			if r.mirror != nil {
				_, _ = p.Printf("%-15s | ₺%.2f\n", usd, *r.mirror)
			} else {
				fmt.Printf("%-15s | -\n", usd)
			}
		}
	}
	if len(result.Grid) > 0 {
		fmt.Printf("\n--- Sensitivity (profit, USD) ---\n")
		fmt.Printf("Cost \\ Sale")
		for _, sm := range result.SaleMultipliers {
			fmt.Printf(" | %.0f%%", sm*100)
		}
		fmt.Printf("\n")
		for i, gridRow := range result.Grid {
			fmt.Printf("%.0f%%", result.CostMultipliers[i]*100)
			for _, cell := range gridRow {
				if cell.ProfitUSD == nil {
					fmt.Printf(" | -")
					continue
				}
				_, _ = p.Printf(" | $%.2f", *cell.ProfitUSD)
			}
			fmt.Printf("\n")
		}
	}
	if len(result.BaseWarnings) > 0 {
		fmt.Printf("\n--- Warnings ---\n")
		for _, w := range result.BaseWarnings {
			fmt.Printf("%s\n", w)
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(name string, result *feasibility.Result) {
	fmt.Printf("\"project\",\"metric\",\"usd\",\"try\"\n")
	for _, r := range resultRows(result.Base) {
		fmt.Printf("%q,%q,", name, r.label)
		if r.value == nil {
			fmt.Printf(`"",""`)
			fmt.Printf("\n")
			continue
		}
		fmt.Printf(`"%.2f",`, *r.value)
		if r.mirror != nil {
			fmt.Printf(`"%.2f"`, *r.mirror)
		} else {
			fmt.Printf(`""`)
		}
		fmt.Printf("\n")
	}
	for i, gridRow := range result.Grid {
		for j, cell := range gridRow {
			if cell.ProfitUSD == nil {
				continue
			}
			label := fmt.Sprintf("sensitivity cost %.0f%% sale %.0f%%",
				result.CostMultipliers[i]*100, result.SaleMultipliers[j]*100)
			fmt.Printf("%q,%q,\"%.2f\",", name, label, *cell.ProfitUSD)
			if cell.ProfitTRY != nil {
				fmt.Printf(`"%.2f"`, *cell.ProfitTRY)
			} else {
				fmt.Printf(`""`)
			}
			fmt.Printf("\n")
		}
	}
	if len(result.BaseWarnings) > 0 {
		fmt.Printf("%q,%q,%q,%q\n", name, "warnings", strings.Join(result.BaseWarnings, "; "), "")
	}
}
