// Package feasibility implements the residential development feasibility
// calculator and its sensitivity analyzer. Both are pure functions over an
// input record: no I/O, no shared state, safe for concurrent use.
package feasibility

import (
	"fmt"
	"math"

	"github.com/ggtech/housing-feasibility/internal/config"
	"github.com/ggtech/housing-feasibility/pkg/constants"
	"go.uber.org/zap"
)

// Outputs holds every figure derived from one feasibility calculation.
// USD fields are always computed; TRY mirrors are nil unless an exchange
// rate was supplied. Revenue-mode fields are nil unless a positive sale
// price was supplied; nil means "not computed", never zero.
type Outputs struct {
	// Areas
	FloorAreaM2    float64 `json:"floor_area_m2"`
	SellableAreaM2 float64 `json:"sellable_area_m2"`
	BuiltAreaM2    float64 `json:"built_area_m2"`

	// Costs
	ConstructionCostUSD float64  `json:"construction_cost_usd"`
	LandValueUSD        float64  `json:"land_value_usd"`
	TotalCostUSD        float64  `json:"total_cost_usd"`
	ConstructionCostTRY *float64 `json:"construction_cost_try"`
	LandValueTRY        *float64 `json:"land_value_try"`
	TotalCostTRY        *float64 `json:"total_cost_try"`

	// Unit economics
	UnitCount       int     `json:"unit_count"`
	RemainingAreaM2 float64 `json:"remaining_sellable_area_m2"`

	// Pricing (per m² of sellable area)
	BreakevenUSDM2 float64  `json:"breakeven_usd_m2"`
	Target10USDM2  float64  `json:"target_10_usd_m2"`
	Target30USDM2  float64  `json:"target_30_usd_m2"`
	Target50USDM2  float64  `json:"target_50_usd_m2"`
	BreakevenTRYM2 *float64 `json:"breakeven_try_m2"`
	Target10TRYM2  *float64 `json:"target_10_try_m2"`
	Target30TRYM2  *float64 `json:"target_30_try_m2"`
	Target50TRYM2  *float64 `json:"target_50_try_m2"`

	// Sale price echo
	SalePriceUSDM2 *float64 `json:"sale_price_usd_m2"`
	SalePriceTRYM2 *float64 `json:"sale_price_try_m2"`

	// Revenue mode
	RevenueUSD  *float64 `json:"revenue_usd"`
	RevenueTRY  *float64 `json:"revenue_try"`
	ProfitUSD   *float64 `json:"profit_usd"`
	ProfitTRY   *float64 `json:"profit_try"`
	GrossMargin *float64 `json:"gross_margin"`
}

// Engine computes feasibility outputs. It carries a logger and the default
// lookup tables; it holds no per-call state.
type Engine struct {
	logger   *zap.Logger
	defaults config.Defaults
}

// NewEngine creates an engine with the builtin default tables.
func NewEngine(logger *zap.Logger) *Engine {
	return NewEngineWithDefaults(logger, config.BuiltinDefaults())
}

// NewEngineWithDefaults creates an engine with deployment-tuned default tables.
func NewEngineWithDefaults(logger *zap.Logger, defaults config.Defaults) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, defaults: defaults}
}

// Compute derives areas, costs, breakeven and target prices, and (when a
// positive sale price is present) revenue figures from the input record.
// It fails only when a required field is absent; every other input, however
// implausible, produces a usable output plus warnings.
func (e *Engine) Compute(inputs config.Inputs, rate *float64) (*Outputs, []string, error) {
	if err := inputs.ValidateRequired(); err != nil {
		return nil, nil, err
	}

	landArea := *inputs.LandAreaM2
	ratio := *inputs.FloorAreaRatio
	landValue := *inputs.LandTotalValueUSD

	sellableCoef := e.defaults.SellableCoefficient
	if inputs.SellableCoefficient != nil {
		sellableCoef = *inputs.SellableCoefficient
	}

	// An unrecognized parking type or housing class resolves to a zero
	// coefficient/cost, which the sanity warnings below flag.
	parkingCoef := e.defaults.ParkingCoefficient[inputs.ParkingType]
	if inputs.ParkingCoefficient != nil {
		parkingCoef = *inputs.ParkingCoefficient
	}

	unitCost := e.defaults.ConstructionCostUSDPerM2[inputs.HousingClass]
	if inputs.ConstructionCostPerM2 != nil {
		unitCost = *inputs.ConstructionCostPerM2
	}

	avgUnitSize := e.defaults.AvgUnitSizeM2
	if inputs.AvgUnitSizeM2 != nil {
		avgUnitSize = *inputs.AvgUnitSizeM2
	}

	// Area chain
	floorArea := landArea * ratio
	sellableArea := floorArea * sellableCoef
	builtArea := sellableArea * parkingCoef

	// Costs
	constructionCost := builtArea * unitCost
	totalCost := constructionCost + landValue

	// Unit economics
	unitCount := 0
	if avgUnitSize > 0 {
		if q := sellableArea / avgUnitSize; q > 0 {
			unitCount = int(math.Floor(q))
		}
	}
	remainingArea := sellableArea
	if unitCount > 0 {
		remainingArea = sellableArea - float64(unitCount)*avgUnitSize
	}

	// Breakeven and target prices; zero when sellable area is degenerate.
	breakeven := 0.0
	if sellableArea > 0 {
		breakeven = totalCost / sellableArea
	}
	targetPrice := func(margin float64) float64 {
		if sellableArea <= 0 {
			return 0.0
		}
		return totalCost * (1.0 + margin) / sellableArea
	}
	target10 := targetPrice(constants.TargetMarginLow)
	target30 := targetPrice(constants.TargetMarginMid)
	target50 := targetPrice(constants.TargetMarginHigh)

	out := &Outputs{
		FloorAreaM2:    floorArea,
		SellableAreaM2: sellableArea,
		BuiltAreaM2:    builtArea,

		ConstructionCostUSD: constructionCost,
		LandValueUSD:        landValue,
		TotalCostUSD:        totalCost,
		ConstructionCostTRY: toTRY(constructionCost, rate),
		LandValueTRY:        toTRY(landValue, rate),
		TotalCostTRY:        toTRY(totalCost, rate),

		UnitCount:       unitCount,
		RemainingAreaM2: remainingArea,

		BreakevenUSDM2: breakeven,
		Target10USDM2:  target10,
		Target30USDM2:  target30,
		Target50USDM2:  target50,
		BreakevenTRYM2: toTRY(breakeven, rate),
		Target10TRYM2:  toTRY(target10, rate),
		Target30TRYM2:  toTRY(target30, rate),
		Target50TRYM2:  toTRY(target50, rate),
	}

	// Revenue mode only for a present, positive sale price. A zero or
	// negative price leaves the revenue fields absent so callers can tell
	// "no price chosen" from "computed as zero".
	var salePrice *float64
	if inputs.SalePricePerM2 != nil {
		v := *inputs.SalePricePerM2
		salePrice = &v
		out.SalePriceUSDM2 = &v
		out.SalePriceTRYM2 = toTRY(v, rate)
	}
	if salePrice != nil && *salePrice > 0 {
		revenue := sellableArea * *salePrice
		profit := revenue - totalCost
		margin := 0.0
		if totalCost > 0 {
			margin = profit / totalCost
		}
		out.RevenueUSD = &revenue
		out.RevenueTRY = toTRY(revenue, rate)
		out.ProfitUSD = &profit
		out.ProfitTRY = toTRY(profit, rate)
		out.GrossMargin = &margin
	}

	warnings := e.collectWarnings(warningInputs{
		landArea:     landArea,
		ratio:        ratio,
		sellableCoef: sellableCoef,
		parkingCoef:  parkingCoef,
		unitCost:     unitCost,
		landValue:    landValue,
		avgUnitSize:  avgUnitSize,
		hasRate:      rate != nil,
		grossMargin:  out.GrossMargin,
	})

	e.logger.Debug(fmt.Sprintf("computed feasibility: sellable %.0f m², total cost %.0f USD, %d warnings",
		sellableArea, totalCost, len(warnings)),
		zap.String("op", "feasibility.Compute"),
	)

	return out, warnings, nil
}

type warningInputs struct {
	landArea     float64
	ratio        float64
	sellableCoef float64
	parkingCoef  float64
	unitCost     float64
	landValue    float64
	avgUnitSize  float64
	hasRate      bool
	grossMargin  *float64
}

// collectWarnings evaluates every advisory predicate in a fixed order. The
// predicates are independent; several can fire for one call.
func (e *Engine) collectWarnings(w warningInputs) []string {
	warnings := []string{}

	// Hard sanity: values that must be positive (or non-negative) but are not.
	if w.ratio <= 0 {
		warnings = append(warnings, "floor-area ratio is zero or negative")
	}
	if w.landArea <= 0 {
		warnings = append(warnings, "land area is zero or negative")
	}
	if w.sellableCoef <= 0 {
		warnings = append(warnings, "sellable coefficient is zero or negative")
	}
	if w.parkingCoef <= 0 {
		warnings = append(warnings, "parking coefficient is zero or negative")
	}
	if w.landValue < 0 {
		warnings = append(warnings, "land value is negative")
	}
	if w.unitCost <= 0 {
		warnings = append(warnings, "construction cost (USD/m²) is zero or negative")
	}

	// Plausibility: technically valid but outside the typical range.
	if w.ratio > constants.MaxTypicalFloorAreaRatio {
		warnings = append(warnings, "floor-area ratio looks unusually high; double-check the value and its unit")
	}
	if w.sellableCoef < constants.MinTypicalSellableCoefficient || w.sellableCoef > constants.MaxTypicalSellableCoefficient {
		warnings = append(warnings, "sellable coefficient is outside the typical 1.0 to 1.6 range")
	}
	if w.avgUnitSize < constants.MinTypicalUnitSizeM2 || w.avgUnitSize > constants.MaxTypicalUnitSizeM2 {
		warnings = append(warnings, "average unit size is outside the typical 60 to 250 m² range")
	}
	if !w.hasRate {
		warnings = append(warnings, "no USD/TRY exchange rate available; TRY figures will be empty")
	}

	// Profitability bands, only in revenue mode. A margin of 20% or more
	// produces no advisory.
	if w.grossMargin != nil {
		gm := *w.grossMargin
		switch {
		case gm < 0:
			warnings = append(warnings, "project appears to be at a loss (negative gross margin)")
		case gm < constants.ThinMarginThreshold:
			warnings = append(warnings, "gross margin is below 10% (thin)")
		case gm < constants.ModerateMarginThreshold:
			warnings = append(warnings, "gross margin is between 10% and 20% (moderate)")
		}
	}

	return warnings
}

func toTRY(usd float64, rate *float64) *float64 {
	if rate == nil {
		return nil
	}
	v := usd * *rate
	return &v
}
