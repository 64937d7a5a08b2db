package business_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/wasteworks/reclaim/internal/business"
	"github.com/wasteworks/reclaim/internal/issues"
	"github.com/wasteworks/reclaim/internal/registration"
	"github.com/wasteworks/reclaim/internal/validation"
	"github.com/wasteworks/reclaim/internal/workbook"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func parsedWith(fields map[string]any) *workbook.Parsed {
	parsed := &workbook.Parsed{
		Meta: make(map[string]workbook.MetaField),
		Data: make(map[string]workbook.Table),
	}
	for name, value := range fields {
		parsed.Meta[name] = workbook.MetaField{
			Value:    value,
			Location: workbook.Location{Sheet: "Cover", Row: 3, Column: 2},
		}
	}
	return parsed
}

func matchingWorkbook() *workbook.Parsed {
	return parsedWith(map[string]any{
		validation.FieldRegistrationNumber:  "REG-001",
		validation.FieldAccreditationNumber: "ACC-001",
		validation.FieldMaterial:            "Glass",
		validation.FieldProcessingType:      "Reprocessor",
		validation.FieldReportingPeriod:     "January to June 2025",
	})
}

func matchingRegistration() *registration.Registration {
	return &registration.Registration{
		RegistrationNumber: "REG-001",
		Material:           registration.MaterialGlass,
		ProcessingType:     string(validation.ProcessingReprocessor),
		Accreditation:      &registration.Accreditation{Number: "ACC-001"},
	}
}

func TestValidatePasses(t *testing.T) {
	result := business.Validate(matchingWorkbook(), matchingRegistration(), discard)
	if !result.OK {
		t.Fatalf("expected OK, got issues %v", result.Issues.Items)
	}
}

func TestValidateMaterialMismatch(t *testing.T) {
	parsed := matchingWorkbook()
	parsed.Meta[validation.FieldMaterial] = workbook.MetaField{
		Value:    "Plastic",
		Location: workbook.Location{Sheet: "Cover", Row: 5, Column: 2},
	}

	result := business.Validate(parsed, matchingRegistration(), discard)
	if result.OK {
		t.Fatal("expected failure")
	}
	if result.Issues.Len() != 1 {
		t.Fatalf("issues = %d, want 1 (short-circuit)", result.Issues.Len())
	}

	got := result.Issues.Items[0]
	if got.Code != business.CodeMaterialMismatch {
		t.Errorf("code = %s, want %s", got.Code, business.CodeMaterialMismatch)
	}
	if got.Category != issues.CategoryBusiness {
		t.Errorf("category = %s, want business", got.Category)
	}
	if got.Context.Expected != "GL" || got.Context.Actual != "Plastic" {
		t.Errorf("context = %+v, want expected GL actual Plastic", got.Context)
	}
	if got.Context.Location == nil || got.Context.Location.Row != 5 {
		t.Errorf("location = %+v, want row 5", got.Context.Location)
	}
}

func TestValidateShortCircuitOrder(t *testing.T) {
	// Both the registration number and the material mismatch; only the
	// registration number check may report.
	parsed := matchingWorkbook()
	parsed.Meta[validation.FieldRegistrationNumber] = workbook.MetaField{Value: "REG-999"}
	parsed.Meta[validation.FieldMaterial] = workbook.MetaField{Value: "Plastic"}

	result := business.Validate(parsed, matchingRegistration(), discard)
	if result.OK {
		t.Fatal("expected failure")
	}
	if result.Issues.Len() != 1 {
		t.Fatalf("issues = %d, want 1", result.Issues.Len())
	}
	if got := result.Issues.Items[0].Code; got != business.CodeRegistrationNumberMismatch {
		t.Errorf("code = %s, want %s (registration number checks first)",
			got, business.CodeRegistrationNumberMismatch)
	}
}

func TestValidateProcessingTypeMismatch(t *testing.T) {
	parsed := matchingWorkbook()
	parsed.Meta[validation.FieldProcessingType] = workbook.MetaField{Value: "Exporter"}

	result := business.Validate(parsed, matchingRegistration(), discard)
	if result.OK {
		t.Fatal("expected failure")
	}
	if got := result.Issues.Items[0].Code; got != business.CodeProcessingTypeMismatch {
		t.Errorf("code = %s, want %s", got, business.CodeProcessingTypeMismatch)
	}
}

func TestValidateAccreditationMismatch(t *testing.T) {
	parsed := matchingWorkbook()
	parsed.Meta[validation.FieldAccreditationNumber] = workbook.MetaField{Value: "ACC-999"}

	result := business.Validate(parsed, matchingRegistration(), discard)
	if result.OK {
		t.Fatal("expected failure")
	}
	if got := result.Issues.Items[0].Code; got != business.CodeAccreditationMismatch {
		t.Errorf("code = %s, want %s", got, business.CodeAccreditationMismatch)
	}
}

func TestValidateAccreditationSkippedWithoutAccreditation(t *testing.T) {
	parsed := matchingWorkbook()
	parsed.Meta[validation.FieldAccreditationNumber] = workbook.MetaField{Value: "ACC-999"}

	reg := matchingRegistration()
	reg.Accreditation = nil

	result := business.Validate(parsed, reg, discard)
	if !result.OK {
		t.Errorf("accreditation check should be skipped, got %v", result.Issues.Items)
	}
}

func TestValidateMissingSides(t *testing.T) {
	t.Run("missing in workbook", func(t *testing.T) {
		parsed := matchingWorkbook()
		delete(parsed.Meta, validation.FieldRegistrationNumber)

		result := business.Validate(parsed, matchingRegistration(), discard)
		if result.OK {
			t.Fatal("expected failure")
		}
		if got := result.Issues.Items[0].Code; got != business.CodeFieldMissingInWorkbook {
			t.Errorf("code = %s, want %s", got, business.CodeFieldMissingInWorkbook)
		}
	})

	t.Run("missing on registration", func(t *testing.T) {
		reg := matchingRegistration()
		reg.RegistrationNumber = ""

		result := business.Validate(matchingWorkbook(), reg, discard)
		if result.OK {
			t.Fatal("expected failure")
		}
		if got := result.Issues.Items[0].Code; got != business.CodeFieldMissingOnRegistration {
			t.Errorf("code = %s, want %s", got, business.CodeFieldMissingOnRegistration)
		}
	})
}

func TestMaterialCodesCoverTemplateValues(t *testing.T) {
	for _, name := range validation.MaterialValues {
		if _, ok := business.MaterialCodes[name]; !ok {
			t.Errorf("material %q has no canonical code", name)
		}
	}
}

func TestProcessingTypesCoverTemplateValues(t *testing.T) {
	for _, name := range validation.ProcessingTypeValues {
		if _, ok := business.ProcessingTypes[name]; !ok {
			t.Errorf("processing type %q has no mapping", name)
		}
	}
}
