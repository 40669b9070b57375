// Package extract turns free-form user messages into structured input
// patches via a text model. It is a collaborator of the feasibility core:
// its output is merged, default-filled, and validated before any
// calculation, and its failures surface as an empty patch, never as a
// calculator error.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ggtech/housing-feasibility/internal/config"
	"go.uber.org/zap"
)

const maxAttempts = 3

// Extraction is the structured result of one extraction call.
type Extraction struct {
	Patch         config.Inputs `json:"patch"`
	Explanations  []string      `json:"explanations"`
	NextQuestions []string      `json:"next_questions"`
	Confirmations []string      `json:"confirmations"`
}

// Extractor drives the extraction loop against an LLM caller.
type Extractor struct {
	logger *zap.Logger
	caller LLMCaller
}

// NewExtractor creates an extractor.
func NewExtractor(logger *zap.Logger, caller LLMCaller) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger, caller: caller}
}

const schemaPrompt = `Produce a JSON object with this shape:
{
  "patch": {
    "land_area_m2": number,
    "floor_area_ratio": number,
    "sellable_coefficient": number,
    "parking_type": "OPEN" | "ENCLOSED",
    "parking_coefficient": number,
    "housing_class": "LOW" | "MID" | "HIGH",
    "construction_cost_per_m2": number,
    "land_total_value_usd": number,
    "avg_unit_size_m2": number,
    "sale_price_per_m2_usd": number
  },
  "explanations": [string],
  "next_questions": [string],
  "confirmations": [string]
}
Include in "patch" only the fields the user's message provides; omit everything else.
Use "next_questions" to ask for required fields that are still missing.`

// Extract asks the model for an input patch derived from the user's message,
// given the inputs collected so far. Enum fields are validated; an invalid
// response is retried with feedback and ultimately fails with an error the
// caller treats as "empty patch".
func (e *Extractor) Extract(ctx context.Context, userText string, current config.Inputs) (*Extraction, error) {
	currentJSON, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("encoding current inputs: %w", err)
	}

	basePrompt := fmt.Sprintf("%s\n\nCurrent inputs: %s\n\nUser message: %s\n\nRespond with only valid JSON matching the schema.",
		schemaPrompt, currentJSON, userText)

	feedback := ""
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		prompt := basePrompt
		if feedback != "" {
			prompt += "\n\n" + feedback
		}

		raw, callErr := e.caller.GenerateJSON(ctx, prompt)
		if callErr != nil {
			return nil, fmt.Errorf("extraction transport failure: %w", callErr)
		}

		raw = strings.TrimSpace(raw)
		if raw == "" {
			feedback = "Your previous response was empty. Respond with valid JSON."
			continue
		}

		var extraction Extraction
		if unmarshalErr := json.Unmarshal([]byte(stripCodeFences(raw)), &extraction); unmarshalErr != nil {
			e.logger.Debug("extraction response was not valid JSON",
				zap.String("op", "extract.Extract"),
				zap.Int("attempt", attempt),
				zap.Error(unmarshalErr),
			)
			feedback = "Your previous response was not valid JSON. Respond with only valid JSON."
			continue
		}

		if validateErr := validatePatch(&extraction.Patch); validateErr != nil {
			feedback = fmt.Sprintf("Your response failed validation: %s. Fix these issues.", validateErr)
			continue
		}

		return &extraction, nil
	}

	return nil, fmt.Errorf("extraction failed after %d attempts", maxAttempts)
}

// validatePatch normalizes enum casing and rejects unrecognized values so a
// malformed patch never reaches the merge step.
func validatePatch(patch *config.Inputs) error {
	if patch.ParkingType != "" {
		normalized := config.ParkingType(strings.ToUpper(string(patch.ParkingType)))
		if !normalized.Valid() {
			return fmt.Errorf("parking_type must be OPEN or ENCLOSED, got %q", patch.ParkingType)
		}
		patch.ParkingType = normalized
	}
	if patch.HousingClass != "" {
		normalized := config.HousingClass(strings.ToUpper(string(patch.HousingClass)))
		if !normalized.Valid() {
			return fmt.Errorf("housing_class must be LOW, MID, or HIGH, got %q", patch.HousingClass)
		}
		patch.HousingClass = normalized
	}
	return nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
