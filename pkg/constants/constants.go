// Package constants provides shared constants for the housing-feasibility application.
package constants

// Default input coefficients applied by the ensure-defaults merge.
const (
	// DefaultSellableCoefficient converts permitted floor area to sellable area
	DefaultSellableCoefficient = 1.25

	// DefaultAvgUnitSizeM2 is the assumed average apartment size in m²
	DefaultAvgUnitSizeM2 = 120.0

	// DefaultParkingCoefficientOpen applies when parking is open-air
	DefaultParkingCoefficientOpen = 1.20

	// DefaultParkingCoefficientEnclosed applies when parking is enclosed
	DefaultParkingCoefficientEnclosed = 1.60

	// DefaultConstructionCostLow is the unit construction cost (USD/m²) for low-segment housing
	DefaultConstructionCostLow = 700.0

	// DefaultConstructionCostMid is the unit construction cost (USD/m²) for mid-segment housing
	DefaultConstructionCostMid = 900.0

	// DefaultConstructionCostHigh is the unit construction cost (USD/m²) for high-segment housing
	DefaultConstructionCostHigh = 1100.0
)

// Target margins for the pricing ladder (profit over total cost).
const (
	TargetMarginLow  = 0.10
	TargetMarginMid  = 0.30
	TargetMarginHigh = 0.50
)

// Plausibility bounds used by the calculator's advisory warnings.
const (
	// MaxTypicalFloorAreaRatio flags unusually dense zoning
	MaxTypicalFloorAreaRatio = 5.0

	// MinTypicalSellableCoefficient and MaxTypicalSellableCoefficient bound the usual range
	MinTypicalSellableCoefficient = 1.0
	MaxTypicalSellableCoefficient = 1.6

	// MinTypicalUnitSizeM2 and MaxTypicalUnitSizeM2 bound the usual apartment size
	MinTypicalUnitSizeM2 = 60.0
	MaxTypicalUnitSizeM2 = 250.0
)

// Profitability bands for revenue-mode advisories.
const (
	// ThinMarginThreshold is the upper bound of the "thin" gross-margin band
	ThinMarginThreshold = 0.10

	// ModerateMarginThreshold is the upper bound of the "moderate" gross-margin band
	ModerateMarginThreshold = 0.20
)

// Financial comparison constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxRequestSizeBytes int64 = 256 * 1024

	// DefaultDailyQuota is the default number of feasibility computations per caller per day
	DefaultDailyQuota = 100
)

// Currency provider defaults
const (
	// TCMBRateURL is the central bank daily-rates endpoint (USD/TRY)
	TCMBRateURL = "https://www.tcmb.gov.tr/kurlar/today.xml"

	// DefaultRateCacheTTLMinutes is how long a fetched exchange rate is reused
	DefaultRateCacheTTLMinutes = 30

	// DefaultRateFetchTimeoutSeconds bounds a single rate lookup
	DefaultRateFetchTimeoutSeconds = 10
)
