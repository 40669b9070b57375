package config

import "fmt"

// ParkingType selects the default parking coefficient.
type ParkingType string

const (
	ParkingOpen     ParkingType = "OPEN"
	ParkingEnclosed ParkingType = "ENCLOSED"
)

// Valid reports whether the parking type is one of the recognized values.
func (p ParkingType) Valid() bool {
	return p == ParkingOpen || p == ParkingEnclosed
}

// HousingClass selects the default unit construction cost.
type HousingClass string

const (
	ClassLow  HousingClass = "LOW"
	ClassMid  HousingClass = "MID"
	ClassHigh HousingClass = "HIGH"
)

// Valid reports whether the housing class is one of the recognized values.
func (h HousingClass) Valid() bool {
	return h == ClassLow || h == ClassMid || h == ClassHigh
}

// Inputs is the caller-supplied record describing a residential development
// site. Optional numeric fields are pointers so that "absent" stays
// distinguishable from an explicit zero; records assembled incrementally
// (chat patches, partial forms) leave unknown fields nil.
type Inputs struct {
	LandAreaM2            *float64     `json:"land_area_m2,omitempty" yaml:"landAreaM2,omitempty"`
	FloorAreaRatio        *float64     `json:"floor_area_ratio,omitempty" yaml:"floorAreaRatio,omitempty"`
	SellableCoefficient   *float64     `json:"sellable_coefficient,omitempty" yaml:"sellableCoefficient,omitempty"`
	ParkingType           ParkingType  `json:"parking_type,omitempty" yaml:"parkingType,omitempty"`
	ParkingCoefficient    *float64     `json:"parking_coefficient,omitempty" yaml:"parkingCoefficient,omitempty"`
	HousingClass          HousingClass `json:"housing_class,omitempty" yaml:"housingClass,omitempty"`
	ConstructionCostPerM2 *float64     `json:"construction_cost_per_m2,omitempty" yaml:"constructionCostPerM2,omitempty"`
	LandTotalValueUSD     *float64     `json:"land_total_value_usd,omitempty" yaml:"landTotalValueUSD,omitempty"`
	AvgUnitSizeM2         *float64     `json:"avg_unit_size_m2,omitempty" yaml:"avgUnitSizeM2,omitempty"`
	SalePricePerM2        *float64     `json:"sale_price_per_m2_usd,omitempty" yaml:"salePricePerM2,omitempty"`
}

// MissingFieldError reports the first required input field that is absent.
// Callers surface it as a request for more information, never as a
// computation failure.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// ValidateRequired checks the five required fields in declaration order and
// returns a MissingFieldError for the first one that is absent.
func (in Inputs) ValidateRequired() error {
	if in.LandAreaM2 == nil {
		return &MissingFieldError{Field: "land_area_m2"}
	}
	if in.FloorAreaRatio == nil {
		return &MissingFieldError{Field: "floor_area_ratio"}
	}
	if in.ParkingType == "" {
		return &MissingFieldError{Field: "parking_type"}
	}
	if in.HousingClass == "" {
		return &MissingFieldError{Field: "housing_class"}
	}
	if in.LandTotalValueUSD == nil {
		return &MissingFieldError{Field: "land_total_value_usd"}
	}
	return nil
}

// Complete reports whether all required fields are present, i.e. whether the
// record can be handed to the calculator.
func (in Inputs) Complete() bool {
	return in.ValidateRequired() == nil
}

// Clone returns a deep copy of the record. The sensitivity analyzer perturbs
// copies and must not alias the caller's pointers.
func (in Inputs) Clone() Inputs {
	out := in
	out.LandAreaM2 = cloneFloat(in.LandAreaM2)
	out.FloorAreaRatio = cloneFloat(in.FloorAreaRatio)
	out.SellableCoefficient = cloneFloat(in.SellableCoefficient)
	out.ParkingCoefficient = cloneFloat(in.ParkingCoefficient)
	out.ConstructionCostPerM2 = cloneFloat(in.ConstructionCostPerM2)
	out.LandTotalValueUSD = cloneFloat(in.LandTotalValueUSD)
	out.AvgUnitSizeM2 = cloneFloat(in.AvgUnitSizeM2)
	out.SalePricePerM2 = cloneFloat(in.SalePricePerM2)
	return out
}

// MergePatch overlays the present fields of patch onto base and returns the
// result. It is a total function: the merged record may still be incomplete
// and must pass through EnsureDefaults and ValidateRequired before it reaches
// the calculator.
func MergePatch(base, patch Inputs) Inputs {
	merged := base.Clone()
	if patch.LandAreaM2 != nil {
		merged.LandAreaM2 = cloneFloat(patch.LandAreaM2)
	}
	if patch.FloorAreaRatio != nil {
		merged.FloorAreaRatio = cloneFloat(patch.FloorAreaRatio)
	}
	if patch.SellableCoefficient != nil {
		merged.SellableCoefficient = cloneFloat(patch.SellableCoefficient)
	}
	if patch.ParkingType != "" {
		merged.ParkingType = patch.ParkingType
	}
	if patch.ParkingCoefficient != nil {
		merged.ParkingCoefficient = cloneFloat(patch.ParkingCoefficient)
	}
	if patch.HousingClass != "" {
		merged.HousingClass = patch.HousingClass
	}
	if patch.ConstructionCostPerM2 != nil {
		merged.ConstructionCostPerM2 = cloneFloat(patch.ConstructionCostPerM2)
	}
	if patch.LandTotalValueUSD != nil {
		merged.LandTotalValueUSD = cloneFloat(patch.LandTotalValueUSD)
	}
	if patch.AvgUnitSizeM2 != nil {
		merged.AvgUnitSizeM2 = cloneFloat(patch.AvgUnitSizeM2)
	}
	if patch.SalePricePerM2 != nil {
		merged.SalePricePerM2 = cloneFloat(patch.SalePricePerM2)
	}
	return merged
}

// EnsureDefaults fills the defaultable fields of the record from the default
// tables. The sellable coefficient and average unit size apply
// unconditionally when absent; the parking coefficient and construction cost
// apply only when the corresponding category field holds a recognized value.
func EnsureDefaults(in Inputs, d Defaults) Inputs {
	out := in.Clone()
	if out.SellableCoefficient == nil {
		v := d.SellableCoefficient
		out.SellableCoefficient = &v
	}
	if out.AvgUnitSizeM2 == nil {
		v := d.AvgUnitSizeM2
		out.AvgUnitSizeM2 = &v
	}
	if out.ParkingCoefficient == nil && out.ParkingType.Valid() {
		if v, ok := d.ParkingCoefficient[out.ParkingType]; ok {
			out.ParkingCoefficient = &v
		}
	}
	if out.ConstructionCostPerM2 == nil && out.HousingClass.Valid() {
		if v, ok := d.ConstructionCostUSDPerM2[out.HousingClass]; ok {
			out.ConstructionCostPerM2 = &v
		}
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float is a convenience constructor for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
