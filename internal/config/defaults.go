package config

import "github.com/ggtech/housing-feasibility/pkg/constants"

// Defaults holds the lookup tables applied by EnsureDefaults. They are plain
// data so deployments can tune them from configuration without touching the
// calculation logic.
type Defaults struct {
	SellableCoefficient      float64
	AvgUnitSizeM2            float64
	ParkingCoefficient       map[ParkingType]float64
	ConstructionCostUSDPerM2 map[HousingClass]float64
}

// BuiltinDefaults returns the standard default tables.
func BuiltinDefaults() Defaults {
	return Defaults{
		SellableCoefficient: constants.DefaultSellableCoefficient,
		AvgUnitSizeM2:       constants.DefaultAvgUnitSizeM2,
		ParkingCoefficient: map[ParkingType]float64{
			ParkingOpen:     constants.DefaultParkingCoefficientOpen,
			ParkingEnclosed: constants.DefaultParkingCoefficientEnclosed,
		},
		ConstructionCostUSDPerM2: map[HousingClass]float64{
			ClassLow:  constants.DefaultConstructionCostLow,
			ClassMid:  constants.DefaultConstructionCostMid,
			ClassHigh: constants.DefaultConstructionCostHigh,
		},
	}
}

// DefaultsConfig carries optional per-deployment overrides of the default
// tables, as loaded from the configuration file.
type DefaultsConfig struct {
	SellableCoefficient       *float64 `yaml:"sellableCoefficient,omitempty"`
	AvgUnitSizeM2             *float64 `yaml:"avgUnitSizeM2,omitempty"`
	ParkingCoefficientOpen    *float64 `yaml:"parkingCoefficientOpen,omitempty"`
	ParkingCoefficientClosed  *float64 `yaml:"parkingCoefficientEnclosed,omitempty"`
	ConstructionCostLowUSDM2  *float64 `yaml:"constructionCostLowUSDM2,omitempty"`
	ConstructionCostMidUSDM2  *float64 `yaml:"constructionCostMidUSDM2,omitempty"`
	ConstructionCostHighUSDM2 *float64 `yaml:"constructionCostHighUSDM2,omitempty"`
}

// Resolve merges the overrides onto the builtin tables.
func (dc DefaultsConfig) Resolve() Defaults {
	d := BuiltinDefaults()
	if dc.SellableCoefficient != nil {
		d.SellableCoefficient = *dc.SellableCoefficient
	}
	if dc.AvgUnitSizeM2 != nil {
		d.AvgUnitSizeM2 = *dc.AvgUnitSizeM2
	}
	if dc.ParkingCoefficientOpen != nil {
		d.ParkingCoefficient[ParkingOpen] = *dc.ParkingCoefficientOpen
	}
	if dc.ParkingCoefficientClosed != nil {
		d.ParkingCoefficient[ParkingEnclosed] = *dc.ParkingCoefficientClosed
	}
	if dc.ConstructionCostLowUSDM2 != nil {
		d.ConstructionCostUSDPerM2[ClassLow] = *dc.ConstructionCostLowUSDM2
	}
	if dc.ConstructionCostMidUSDM2 != nil {
		d.ConstructionCostUSDPerM2[ClassMid] = *dc.ConstructionCostMidUSDM2
	}
	if dc.ConstructionCostHighUSDM2 != nil {
		d.ConstructionCostUSDPerM2[ClassHigh] = *dc.ConstructionCostHighUSDM2
	}
	return d
}
