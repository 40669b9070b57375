package feasibility

import (
	"fmt"

	"github.com/ggtech/housing-feasibility/internal/config"
	"go.uber.org/zap"
)

// Multipliers applied to the sale price and the unit construction cost when
// building the sensitivity grid, in ascending order.
var sensitivityMultipliers = []float64{0.9, 1.0, 1.1}

// Cell is one outcome of the sensitivity grid.
type Cell struct {
	SaleMultiplier float64  `json:"sale_mult"`
	CostMultiplier float64  `json:"cost_mult"`
	ProfitUSD      *float64 `json:"profit_usd"`
	ProfitTRY      *float64 `json:"profit_try"`
	GrossMargin    *float64 `json:"gross_margin"`
}

// Result holds the base case plus the 3×3 grid of perturbed outcomes. Rows
// follow the cost multipliers, columns the sale multipliers, both ascending.
// The grid is empty when the input carries no sale price.
type Result struct {
	Base            *Outputs  `json:"base"`
	BaseWarnings    []string  `json:"base_warnings"`
	Grid            [][]Cell  `json:"grid"`
	SaleMultipliers []float64 `json:"sale_multipliers"`
	CostMultipliers []float64 `json:"cost_multipliers"`
}

// Sensitivity recomputes the calculator across sale-price and
// construction-cost perturbations. Warnings from the grid sub-calls are
// discarded; only the base call's warnings are surfaced.
func (e *Engine) Sensitivity(inputs config.Inputs, rate *float64) (*Result, error) {
	base, baseWarnings, err := e.Compute(inputs, rate)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Base:            base,
		BaseWarnings:    baseWarnings,
		Grid:            [][]Cell{},
		SaleMultipliers: append([]float64(nil), sensitivityMultipliers...),
		CostMultipliers: append([]float64(nil), sensitivityMultipliers...),
	}

	// Perturbing the sale price is meaningless without a reference price.
	if inputs.SalePricePerM2 == nil {
		e.logger.Debug("sensitivity grid skipped: no sale price on the input record",
			zap.String("op", "feasibility.Sensitivity"),
		)
		return result, nil
	}

	basePrice := *inputs.SalePricePerM2
	baseUnitCost := e.defaults.ConstructionCostUSDPerM2[inputs.HousingClass]
	if inputs.ConstructionCostPerM2 != nil {
		baseUnitCost = *inputs.ConstructionCostPerM2
	}

	for _, cm := range sensitivityMultipliers {
		row := make([]Cell, 0, len(sensitivityMultipliers))
		for _, sm := range sensitivityMultipliers {
			perturbed := inputs.Clone()
			perturbed.SalePricePerM2 = config.Float(basePrice * sm)
			perturbed.ConstructionCostPerM2 = config.Float(baseUnitCost * cm)

			out, _, computeErr := e.Compute(perturbed, rate)
			if computeErr != nil {
				return nil, fmt.Errorf("sensitivity cell (sale %.1f, cost %.1f): %w", sm, cm, computeErr)
			}

			row = append(row, Cell{
				SaleMultiplier: sm,
				CostMultiplier: cm,
				ProfitUSD:      out.ProfitUSD,
				ProfitTRY:      out.ProfitTRY,
				GrossMargin:    out.GrossMargin,
			})
		}
		result.Grid = append(result.Grid, row)
	}

	return result, nil
}
