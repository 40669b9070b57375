// Package testutil provides common utility functions for testing.
package testutil

import (
	"strings"

	"github.com/ggtech/housing-feasibility/internal/config"
)

// ReferenceInputs returns a complete input record for a 5,000 m² mid-segment
// site with open parking. Its outcomes are easy to verify by hand: 9,000 m²
// of floor area, 11,250 m² sellable, and a total cost of $14,650,000.
func ReferenceInputs() config.Inputs {
	return config.Inputs{
		LandAreaM2:        config.Float(5000),
		FloorAreaRatio:    config.Float(1.8),
		ParkingType:       config.ParkingOpen,
		HousingClass:      config.ClassMid,
		LandTotalValueUSD: config.Float(2500000),
		AvgUnitSizeM2:     config.Float(100),
	}
}

// HasWarning reports whether any warning contains the given substring.
func HasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
