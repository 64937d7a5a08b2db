// Package business implements the cross-checks between a parsed summary log
// and the registration record it claims to report against. The checks run in
// a fixed sequence and short-circuit on the first fatal finding, unlike the
// accumulate-everything data syntax validator; the two policies are
// intentionally different and must not be unified.
package business

import (
	"log/slog"

	"github.com/wasteworks/reclaim/internal/issues"
	"github.com/wasteworks/reclaim/internal/registration"
	"github.com/wasteworks/reclaim/internal/validation"
	"github.com/wasteworks/reclaim/internal/workbook"
)

// Issue codes raised by the business validators.
const (
	CodeRegistrationNumberMismatch = "REGISTRATION_NUMBER_MISMATCH"
	CodeMaterialMismatch           = "MATERIAL_MISMATCH"
	CodeProcessingTypeMismatch     = "PROCESSING_TYPE_MISMATCH"
	CodeAccreditationMismatch      = "ACCREDITATION_NUMBER_MISMATCH"
	CodeFieldMissingInWorkbook     = "FIELD_MISSING_IN_WORKBOOK"
	CodeFieldMissingOnRegistration = "FIELD_MISSING_ON_REGISTRATION"
)

// MaterialCodes maps the material names organisations type into spreadsheets
// to canonical material codes. The mapping is fixed: template values change
// only with a template release.
var MaterialCodes = map[string]registration.Material{
	"Aluminium":       registration.MaterialAluminium,
	"Glass":           registration.MaterialGlass,
	"Paper and board": registration.MaterialPaper,
	"Plastic":         registration.MaterialPlastic,
	"Steel":           registration.MaterialSteel,
	"Wood":            registration.MaterialWood,
}

// ProcessingTypes maps spreadsheet processing-type values to canonical
// waste processing types.
var ProcessingTypes = map[string]validation.ProcessingType{
	"Exporter":    validation.ProcessingExporter,
	"Reprocessor": validation.ProcessingReprocessor,
}

// Result is the outcome of the business validation sequence. OK is false as
// soon as any check raises a fatal issue; Issues then holds exactly the
// findings of the check that failed.
type Result struct {
	OK     bool
	Issues issues.Set
}

// Check is one business validator in the sequence.
type Check func(parsed *workbook.Parsed, reg *registration.Registration, logger *slog.Logger) issues.Set

// Sequence returns the fixed check order: registration number, material,
// processing type, and accreditation number when the registration carries an
// accreditation.
func Sequence() []Check {
	return []Check{
		CheckRegistrationNumber,
		CheckMaterial,
		CheckProcessingType,
		CheckAccreditationNumber,
	}
}

// Validate folds the check sequence over the parsed workbook, stopping at the
// first check that produces a fatal issue.
func Validate(parsed *workbook.Parsed, reg *registration.Registration, logger *slog.Logger) Result {
	for _, check := range Sequence() {
		set := check(parsed, reg, logger)
		if set.IsFatal() {
			return Result{OK: false, Issues: set}
		}
	}
	return Result{OK: true}
}

// CheckRegistrationNumber verifies the workbook's registration number matches
// the registration record.
func CheckRegistrationNumber(parsed *workbook.Parsed, reg *registration.Registration, logger *slog.Logger) issues.Set {
	field, present := parsed.Meta[validation.FieldRegistrationNumber]
	actual := validation.AsString(field.Value)

	if !present || actual == "" {
		return missingInWorkbook(validation.FieldRegistrationNumber)
	}
	if reg.RegistrationNumber == "" {
		return missingOnRegistration(validation.FieldRegistrationNumber)
	}

	if actual != reg.RegistrationNumber {
		return mismatch(
			CodeRegistrationNumberMismatch,
			"registration number in the summary log does not match the registration",
			reg.RegistrationNumber, actual,
			validation.FieldRegistrationNumber, field.Location,
		)
	}

	logger.Info("registration number matched", "registration_number", actual)
	return issues.Set{}
}

// CheckMaterial verifies the workbook's material maps to the registration's
// canonical material code.
func CheckMaterial(parsed *workbook.Parsed, reg *registration.Registration, logger *slog.Logger) issues.Set {
	field, present := parsed.Meta[validation.FieldMaterial]
	actual := validation.AsString(field.Value)

	if !present || actual == "" {
		return missingInWorkbook(validation.FieldMaterial)
	}
	if reg.Material == "" {
		return missingOnRegistration(validation.FieldMaterial)
	}

	code, known := MaterialCodes[actual]
	if !known || code != reg.Material {
		return mismatch(
			CodeMaterialMismatch,
			"material in the summary log does not match the registration",
			string(reg.Material), actual,
			validation.FieldMaterial, field.Location,
		)
	}

	logger.Info("material matched", "material", string(code))
	return issues.Set{}
}

// CheckProcessingType verifies the workbook's processing type maps to the
// registration's waste processing type.
func CheckProcessingType(parsed *workbook.Parsed, reg *registration.Registration, logger *slog.Logger) issues.Set {
	field, present := parsed.Meta[validation.FieldProcessingType]
	actual := validation.AsString(field.Value)

	if !present || actual == "" {
		return missingInWorkbook(validation.FieldProcessingType)
	}
	if reg.ProcessingType == "" {
		return missingOnRegistration(validation.FieldProcessingType)
	}

	pt, known := ProcessingTypes[actual]
	if !known || string(pt) != reg.ProcessingType {
		return mismatch(
			CodeProcessingTypeMismatch,
			"processing type in the summary log does not match the registration",
			reg.ProcessingType, actual,
			validation.FieldProcessingType, field.Location,
		)
	}

	logger.Info("processing type matched", "processing_type", string(pt))
	return issues.Set{}
}

// CheckAccreditationNumber verifies the workbook's accreditation number when
// the registration carries an accreditation. Registrations without one skip
// the check entirely.
func CheckAccreditationNumber(parsed *workbook.Parsed, reg *registration.Registration, logger *slog.Logger) issues.Set {
	if reg.Accreditation == nil {
		return issues.Set{}
	}

	field, present := parsed.Meta[validation.FieldAccreditationNumber]
	actual := validation.AsString(field.Value)

	if !present || actual == "" {
		return missingInWorkbook(validation.FieldAccreditationNumber)
	}
	if reg.Accreditation.Number == "" {
		return missingOnRegistration(validation.FieldAccreditationNumber)
	}

	if actual != reg.Accreditation.Number {
		return mismatch(
			CodeAccreditationMismatch,
			"accreditation number in the summary log does not match the accreditation",
			reg.Accreditation.Number, actual,
			validation.FieldAccreditationNumber, field.Location,
		)
	}

	logger.Info("accreditation number matched", "accreditation_number", actual)
	return issues.Set{}
}

func missingInWorkbook(name string) issues.Set {
	return issues.New(issues.Fatal(issues.CategoryBusiness, CodeFieldMissingInWorkbook,
		name+" is missing from the summary log"))
}

func missingOnRegistration(name string) issues.Set {
	return issues.New(issues.Fatal(issues.CategoryBusiness, CodeFieldMissingOnRegistration,
		name+" is missing from the registration record"))
}

func mismatch(code, message, expected, actual, field string, loc workbook.Location) issues.Set {
	return issues.New(
		issues.Fatal(issues.CategoryBusiness, code, message).
			Expecting(expected, actual).
			At(issues.Location{
				Sheet:  loc.Sheet,
				Row:    loc.Row,
				Column: loc.Column,
				Field:  field,
			}),
	)
}
