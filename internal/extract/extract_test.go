package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ggtech/housing-feasibility/internal/config"
	"go.uber.org/zap"
)

type fakeCaller struct {
	responses []string
	err       error
	prompts   []string
}

func (f *fakeCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	i := len(f.prompts) - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func TestExtractParsesPatch(t *testing.T) {
	caller := &fakeCaller{responses: []string{`{
		"patch": {"land_area_m2": 5000, "parking_type": "OPEN", "housing_class": "MID"},
		"explanations": ["Land area read as 5000 m²"],
		"next_questions": ["What is the floor-area ratio?"],
		"confirmations": []
	}`}}
	extractor := NewExtractor(zap.NewNop(), caller)

	extraction, err := extractor.Extract(context.Background(), "the site is 5000 m2, open parking, mid segment", config.Inputs{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if extraction.Patch.LandAreaM2 == nil || *extraction.Patch.LandAreaM2 != 5000 {
		t.Errorf("patch land area = %v, expected 5000", extraction.Patch.LandAreaM2)
	}
	if extraction.Patch.ParkingType != config.ParkingOpen {
		t.Errorf("patch parking type = %q, expected OPEN", extraction.Patch.ParkingType)
	}
	if extraction.Patch.HousingClass != config.ClassMid {
		t.Errorf("patch housing class = %q, expected MID", extraction.Patch.HousingClass)
	}
	if len(extraction.NextQuestions) != 1 {
		t.Errorf("next questions = %v, expected one", extraction.NextQuestions)
	}
	if extraction.Patch.SalePricePerM2 != nil {
		t.Errorf("patch sale price = %v, expected absent", *extraction.Patch.SalePricePerM2)
	}
}

func TestExtractIncludesCurrentInputsInPrompt(t *testing.T) {
	caller := &fakeCaller{responses: []string{`{"patch": {}}`}}
	extractor := NewExtractor(zap.NewNop(), caller)

	current := config.Inputs{LandAreaM2: config.Float(5000), ParkingType: config.ParkingOpen}
	if _, err := extractor.Extract(context.Background(), "mid class housing", current); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	prompt := caller.prompts[0]
	if !strings.Contains(prompt, `"land_area_m2":5000`) {
		t.Errorf("prompt does not carry the current inputs: %s", prompt)
	}
	if !strings.Contains(prompt, "mid class housing") {
		t.Errorf("prompt does not carry the user message: %s", prompt)
	}
}

func TestExtractStripsCodeFences(t *testing.T) {
	caller := &fakeCaller{responses: []string{
		"```json\n{\"patch\": {\"floor_area_ratio\": 1.8}}\n```",
	}}
	extractor := NewExtractor(zap.NewNop(), caller)

	extraction, err := extractor.Extract(context.Background(), "emsal is 1.8", config.Inputs{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if extraction.Patch.FloorAreaRatio == nil || *extraction.Patch.FloorAreaRatio != 1.8 {
		t.Errorf("patch ratio = %v, expected 1.8", extraction.Patch.FloorAreaRatio)
	}
}

func TestExtractRetriesInvalidJSON(t *testing.T) {
	caller := &fakeCaller{responses: []string{
		"not json at all",
		`{"patch": {"land_area_m2": 8500}}`,
	}}
	extractor := NewExtractor(zap.NewNop(), caller)

	extraction, err := extractor.Extract(context.Background(), "8500 m2 site", config.Inputs{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(caller.prompts) != 2 {
		t.Errorf("caller invoked %d times, expected a retry", len(caller.prompts))
	}
	if !strings.Contains(caller.prompts[1], "not valid JSON") {
		t.Errorf("retry prompt carries no feedback: %s", caller.prompts[1])
	}
	if extraction.Patch.LandAreaM2 == nil || *extraction.Patch.LandAreaM2 != 8500 {
		t.Errorf("patch land area = %v, expected 8500", extraction.Patch.LandAreaM2)
	}
}

func TestExtractNormalizesEnumCasing(t *testing.T) {
	caller := &fakeCaller{responses: []string{
		`{"patch": {"parking_type": "enclosed", "housing_class": "high"}}`,
	}}
	extractor := NewExtractor(zap.NewNop(), caller)

	extraction, err := extractor.Extract(context.Background(), "closed parking, high segment", config.Inputs{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if extraction.Patch.ParkingType != config.ParkingEnclosed {
		t.Errorf("parking type = %q, expected normalized ENCLOSED", extraction.Patch.ParkingType)
	}
	if extraction.Patch.HousingClass != config.ClassHigh {
		t.Errorf("housing class = %q, expected normalized HIGH", extraction.Patch.HousingClass)
	}
}

func TestExtractRejectsUnknownEnums(t *testing.T) {
	caller := &fakeCaller{responses: []string{
		`{"patch": {"parking_type": "UNDERGROUND"}}`,
		`{"patch": {"parking_type": "ENCLOSED"}}`,
	}}
	extractor := NewExtractor(zap.NewNop(), caller)

	extraction, err := extractor.Extract(context.Background(), "underground parking", config.Inputs{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(caller.prompts) != 2 {
		t.Errorf("caller invoked %d times, expected a validation retry", len(caller.prompts))
	}
	if !strings.Contains(caller.prompts[1], "failed validation") {
		t.Errorf("retry prompt carries no validation feedback: %s", caller.prompts[1])
	}
	if extraction.Patch.ParkingType != config.ParkingEnclosed {
		t.Errorf("parking type = %q, expected ENCLOSED after retry", extraction.Patch.ParkingType)
	}
}

func TestExtractTransportFailure(t *testing.T) {
	caller := &fakeCaller{err: errors.New("connection refused")}
	extractor := NewExtractor(zap.NewNop(), caller)

	if _, err := extractor.Extract(context.Background(), "anything", config.Inputs{}); err == nil {
		t.Fatal("Extract() expected an error on transport failure")
	}
}

func TestExtractGivesUpAfterRetries(t *testing.T) {
	caller := &fakeCaller{responses: []string{"nope", "still nope", "garbage"}}
	extractor := NewExtractor(zap.NewNop(), caller)

	if _, err := extractor.Extract(context.Background(), "anything", config.Inputs{}); err == nil {
		t.Fatal("Extract() expected an error after exhausting retries")
	}
	if len(caller.prompts) != 3 {
		t.Errorf("caller invoked %d times, expected 3 attempts", len(caller.prompts))
	}
}
