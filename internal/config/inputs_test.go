package config

import (
	"errors"
	"testing"
)

func completeInputs() Inputs {
	return Inputs{
		LandAreaM2:        Float(5000),
		FloorAreaRatio:    Float(1.8),
		ParkingType:       ParkingOpen,
		HousingClass:      ClassMid,
		LandTotalValueUSD: Float(2500000),
	}
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*Inputs)
		wantField    string
		wantComplete bool
	}{
		{
			name:         "All required fields present",
			mutate:       func(in *Inputs) {},
			wantComplete: true,
		},
		{
			name:      "Missing land area",
			mutate:    func(in *Inputs) { in.LandAreaM2 = nil },
			wantField: "land_area_m2",
		},
		{
			name:      "Missing floor area ratio",
			mutate:    func(in *Inputs) { in.FloorAreaRatio = nil },
			wantField: "floor_area_ratio",
		},
		{
			name:      "Missing parking type",
			mutate:    func(in *Inputs) { in.ParkingType = "" },
			wantField: "parking_type",
		},
		{
			name:      "Missing housing class",
			mutate:    func(in *Inputs) { in.HousingClass = "" },
			wantField: "housing_class",
		},
		{
			name:      "Missing land value",
			mutate:    func(in *Inputs) { in.LandTotalValueUSD = nil },
			wantField: "land_total_value_usd",
		},
		{
			name: "First missing field wins",
			mutate: func(in *Inputs) {
				in.FloorAreaRatio = nil
				in.LandTotalValueUSD = nil
			},
			wantField: "floor_area_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := completeInputs()
			tt.mutate(&in)

			err := in.ValidateRequired()
			if tt.wantComplete {
				if err != nil {
					t.Fatalf("ValidateRequired() = %v, expected nil", err)
				}
				if !in.Complete() {
					t.Errorf("Complete() = false, expected true")
				}
				return
			}

			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("ValidateRequired() = %v, expected MissingFieldError", err)
			}
			if missing.Field != tt.wantField {
				t.Errorf("MissingFieldError.Field = %q, expected %q", missing.Field, tt.wantField)
			}
			if in.Complete() {
				t.Errorf("Complete() = true, expected false")
			}
		})
	}
}

func TestEnsureDefaults(t *testing.T) {
	d := BuiltinDefaults()

	t.Run("Unconditional numeric defaults", func(t *testing.T) {
		out := EnsureDefaults(Inputs{}, d)
		if out.SellableCoefficient == nil || *out.SellableCoefficient != 1.25 {
			t.Errorf("SellableCoefficient = %v, expected 1.25", out.SellableCoefficient)
		}
		if out.AvgUnitSizeM2 == nil || *out.AvgUnitSizeM2 != 120 {
			t.Errorf("AvgUnitSizeM2 = %v, expected 120", out.AvgUnitSizeM2)
		}
	})

	t.Run("Category defaults require recognized enums", func(t *testing.T) {
		out := EnsureDefaults(Inputs{}, d)
		if out.ParkingCoefficient != nil {
			t.Errorf("ParkingCoefficient = %v, expected nil without a parking type", *out.ParkingCoefficient)
		}
		if out.ConstructionCostPerM2 != nil {
			t.Errorf("ConstructionCostPerM2 = %v, expected nil without a housing class", *out.ConstructionCostPerM2)
		}
	})

	t.Run("Unrecognized enums fill nothing", func(t *testing.T) {
		out := EnsureDefaults(Inputs{ParkingType: "UNDERGROUND", HousingClass: "LUXURY"}, d)
		if out.ParkingCoefficient != nil {
			t.Errorf("ParkingCoefficient filled for unrecognized parking type")
		}
		if out.ConstructionCostPerM2 != nil {
			t.Errorf("ConstructionCostPerM2 filled for unrecognized housing class")
		}
	})

	t.Run("Category defaults by enum value", func(t *testing.T) {
		tests := []struct {
			parking  ParkingType
			class    HousingClass
			wantCoef float64
			wantCost float64
		}{
			{ParkingOpen, ClassLow, 1.20, 700},
			{ParkingOpen, ClassMid, 1.20, 900},
			{ParkingEnclosed, ClassHigh, 1.60, 1100},
		}
		for _, tt := range tests {
			out := EnsureDefaults(Inputs{ParkingType: tt.parking, HousingClass: tt.class}, d)
			if out.ParkingCoefficient == nil || *out.ParkingCoefficient != tt.wantCoef {
				t.Errorf("%s: ParkingCoefficient = %v, expected %v", tt.parking, out.ParkingCoefficient, tt.wantCoef)
			}
			if out.ConstructionCostPerM2 == nil || *out.ConstructionCostPerM2 != tt.wantCost {
				t.Errorf("%s: ConstructionCostPerM2 = %v, expected %v", tt.class, out.ConstructionCostPerM2, tt.wantCost)
			}
		}
	})

	t.Run("Explicit values are preserved", func(t *testing.T) {
		in := Inputs{
			SellableCoefficient:   Float(1.10),
			ParkingType:           ParkingEnclosed,
			ParkingCoefficient:    Float(1.45),
			HousingClass:          ClassHigh,
			ConstructionCostPerM2: Float(1250),
			AvgUnitSizeM2:         Float(90),
		}
		out := EnsureDefaults(in, d)
		if *out.SellableCoefficient != 1.10 || *out.ParkingCoefficient != 1.45 ||
			*out.ConstructionCostPerM2 != 1250 || *out.AvgUnitSizeM2 != 90 {
			t.Errorf("EnsureDefaults overwrote explicit values: %+v", out)
		}
	})
}

func TestMergePatch(t *testing.T) {
	base := completeInputs()
	base.SalePricePerM2 = Float(1800)

	patch := Inputs{
		LandAreaM2:   Float(6000),
		HousingClass: ClassHigh,
	}

	merged := MergePatch(base, patch)

	if *merged.LandAreaM2 != 6000 {
		t.Errorf("LandAreaM2 = %v, expected patched 6000", *merged.LandAreaM2)
	}
	if merged.HousingClass != ClassHigh {
		t.Errorf("HousingClass = %v, expected patched HIGH", merged.HousingClass)
	}
	if *merged.FloorAreaRatio != 1.8 {
		t.Errorf("FloorAreaRatio = %v, expected untouched 1.8", *merged.FloorAreaRatio)
	}
	if *merged.SalePricePerM2 != 1800 {
		t.Errorf("SalePricePerM2 = %v, expected untouched 1800", *merged.SalePricePerM2)
	}

	// The merged record must not alias the base's pointers.
	*merged.LandAreaM2 = 9999
	if *base.LandAreaM2 != 5000 {
		t.Errorf("MergePatch aliased base pointers; base LandAreaM2 = %v", *base.LandAreaM2)
	}
}

func TestClone(t *testing.T) {
	in := completeInputs()
	in.SalePricePerM2 = Float(1800)

	clone := in.Clone()
	*clone.SalePricePerM2 = 2100
	*clone.LandAreaM2 = 1

	if *in.SalePricePerM2 != 1800 || *in.LandAreaM2 != 5000 {
		t.Errorf("Clone shares pointers with the original: %+v", in)
	}
	if clone.ParkingType != in.ParkingType || clone.HousingClass != in.HousingClass {
		t.Errorf("Clone dropped enum fields: %+v", clone)
	}
}

func TestDefaultsResolve(t *testing.T) {
	dc := DefaultsConfig{
		SellableCoefficient:      Float(1.30),
		ConstructionCostMidUSDM2: Float(950),
	}
	d := dc.Resolve()

	if d.SellableCoefficient != 1.30 {
		t.Errorf("SellableCoefficient = %v, expected override 1.30", d.SellableCoefficient)
	}
	if d.ConstructionCostUSDPerM2[ClassMid] != 950 {
		t.Errorf("ConstructionCost[MID] = %v, expected override 950", d.ConstructionCostUSDPerM2[ClassMid])
	}
	if d.ConstructionCostUSDPerM2[ClassLow] != 700 {
		t.Errorf("ConstructionCost[LOW] = %v, expected builtin 700", d.ConstructionCostUSDPerM2[ClassLow])
	}
	if d.AvgUnitSizeM2 != 120 {
		t.Errorf("AvgUnitSizeM2 = %v, expected builtin 120", d.AvgUnitSizeM2)
	}
	if d.ParkingCoefficient[ParkingEnclosed] != 1.60 {
		t.Errorf("ParkingCoefficient[ENCLOSED] = %v, expected builtin 1.60", d.ParkingCoefficient[ParkingEnclosed])
	}
}
