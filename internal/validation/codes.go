package validation

// Issue codes raised by the syntax validators. Field-specific codes come from
// the lookup table below; the generic codes cover fields and violations with
// no specific mapping.
const (
	CodeMetaFieldMissing = "META_FIELD_MISSING"
	CodeMetaFieldInvalid = "META_FIELD_INVALID"

	CodeRowFieldMissing   = "ROW_FIELD_MISSING"
	CodeRowFieldType      = "ROW_FIELD_INVALID_TYPE"
	CodeRowFieldValue     = "ROW_FIELD_INVALID_VALUE"
	CodeRowFieldRange     = "ROW_FIELD_OUT_OF_RANGE"
	CodeTableMissing      = "TABLE_MISSING"
	CodeTableUnrecognized = "TABLE_NOT_RECOGNIZED"
	CodeColumnUnknown     = "COLUMN_NOT_RECOGNIZED"
	CodeTonnageLarge      = "TONNAGE_UNUSUALLY_LARGE"
)

type codeKey struct {
	field     string
	violation Violation
}

// metaCodes maps (field, violation) pairs to specific issue codes. Downstream
// rendering keys guidance text off these, so they stay stable per field.
var metaCodes = map[codeKey]string{
	{FieldRegistrationNumber, ViolationMissing}: "REGISTRATION_NUMBER_MISSING",
	{FieldMaterial, ViolationMissing}:           "MATERIAL_MISSING",
	{FieldMaterial, ViolationValue}:             "MATERIAL_NOT_RECOGNIZED",
	{FieldProcessingType, ViolationMissing}:     "PROCESSING_TYPE_MISSING",
	{FieldProcessingType, ViolationValue}:       "PROCESSING_TYPE_NOT_RECOGNIZED",
	{FieldReportingPeriod, ViolationMissing}:    "REPORTING_PERIOD_MISSING",
}

// metaCode resolves the issue code for a metadata violation, falling back to
// a generic code when no specific mapping exists.
func metaCode(field string, v Violation) string {
	if code, ok := metaCodes[codeKey{field, v}]; ok {
		return code
	}
	if v == ViolationMissing {
		return CodeMetaFieldMissing
	}
	return CodeMetaFieldInvalid
}

// rowCode resolves the issue code for a row-level violation.
func rowCode(v Violation) string {
	switch v {
	case ViolationMissing:
		return CodeRowFieldMissing
	case ViolationType:
		return CodeRowFieldType
	case ViolationValue:
		return CodeRowFieldValue
	case ViolationRange:
		return CodeRowFieldRange
	default:
		return CodeRowFieldValue
	}
}
