package validation

import "github.com/shopspring/decimal"

// ProcessingType identifies how an organisation processes packaging waste.
// It selects which tables a summary log must carry and which schema each
// table is validated against.
type ProcessingType string

const (
	ProcessingExporter    ProcessingType = "exporter"
	ProcessingReprocessor ProcessingType = "reprocessor"
)

// Metadata field names recognized by meta markers.
const (
	FieldRegistrationNumber  = "REGISTRATION_NUMBER"
	FieldAccreditationNumber = "ACCREDITATION_NUMBER"
	FieldMaterial            = "MATERIAL"
	FieldProcessingType      = "PROCESSING_TYPE"
	FieldReportingPeriod     = "REPORTING_PERIOD"
)

// Table names recognized by data markers.
const (
	TableReceived  = "RECEIVED"
	TableProcessed = "PROCESSED"
	TableSentOn    = "SENT_ON"
	TableExported  = "EXPORTED"
)

// Column names shared across table schemas.
const (
	ColRowID              = "ROW_ID"
	ColDateReceived       = "DATE_RECEIVED"
	ColSupplierName       = "SUPPLIER_NAME"
	ColIntermediateSite   = "INTERMEDIATE_SITE"
	ColTonnageReceived    = "TONNAGE_RECEIVED"
	ColNetTonnage         = "NET_TONNAGE"
	ColPRNIssued          = "PRN_ISSUED"
	ColDateProcessed      = "DATE_PROCESSED"
	ColTonnageProcessed   = "TONNAGE_PROCESSED"
	ColOutputProduct      = "OUTPUT_PRODUCT"
	ColDateSentOn         = "DATE_SENT_ON"
	ColRecipientName      = "RECIPIENT_NAME"
	ColTonnageSentOn      = "TONNAGE_SENT_ON"
	ColDateShipped        = "DATE_SHIPPED"
	ColDestinationCountry = "DESTINATION_COUNTRY"
	ColTonnes             = "TONNES"
)

// Materials and processing types as they appear in spreadsheet cells.
var (
	MaterialValues       = []string{"Aluminium", "Glass", "Paper and board", "Plastic", "Steel", "Wood"}
	ProcessingTypeValues = []string{"Exporter", "Reprocessor"}
)

// MetaSchema declares the rules for every recognized metadata field.
var MetaSchema = map[string]FieldRule{
	FieldRegistrationNumber:  {Required: true, Kind: KindString},
	FieldAccreditationNumber: {Kind: KindString},
	FieldMaterial:            {Required: true, Kind: KindEnum, Enum: MaterialValues},
	FieldProcessingType:      {Required: true, Kind: KindEnum, Enum: ProcessingTypeValues},
	FieldReportingPeriod:     {Required: true, Kind: KindString},
}

// TableSchema declares the rules for one data table: a rule per column, and
// the gate columns whose collective emptiness marks a row as intentionally
// non-applicable (EXCLUDED) rather than incomplete (REJECTED).
type TableSchema struct {
	Fields map[string]FieldRule
	Gates  []string
}

var zero = decimal.Zero

var receivedSchema = TableSchema{
	Fields: map[string]FieldRule{
		ColRowID:            {Required: true, Kind: KindInteger},
		ColDateReceived:     {Required: true, Kind: KindDate},
		ColSupplierName:     {Kind: KindString},
		ColIntermediateSite: {Kind: KindBool},
		ColTonnageReceived:  {Required: true, Kind: KindDecimal, Min: &zero},
		ColNetTonnage:       {Kind: KindDecimal, Min: &zero},
		ColPRNIssued:        {Kind: KindBool},
	},
	Gates: []string{ColDateReceived, ColTonnageReceived},
}

var processedSchema = TableSchema{
	Fields: map[string]FieldRule{
		ColRowID:            {Required: true, Kind: KindInteger},
		ColDateProcessed:    {Required: true, Kind: KindDate},
		ColTonnageProcessed: {Required: true, Kind: KindDecimal, Min: &zero},
		ColOutputProduct:    {Kind: KindString},
		ColPRNIssued:        {Kind: KindBool},
	},
	Gates: []string{ColDateProcessed, ColTonnageProcessed},
}

var sentOnSchema = TableSchema{
	Fields: map[string]FieldRule{
		ColRowID:         {Required: true, Kind: KindInteger},
		ColDateSentOn:    {Required: true, Kind: KindDate},
		ColRecipientName: {Kind: KindString},
		ColTonnageSentOn: {Required: true, Kind: KindDecimal, Min: &zero},
	},
	Gates: []string{ColDateSentOn, ColTonnageSentOn},
}

var exportedSchema = TableSchema{
	Fields: map[string]FieldRule{
		ColRowID:              {Required: true, Kind: KindInteger},
		ColDateShipped:        {Required: true, Kind: KindDate},
		ColDestinationCountry: {Kind: KindString},
		ColPRNIssued:          {Kind: KindBool},
		ColTonnes:             {Required: true, Kind: KindDecimal, Min: &zero},
	},
	Gates: []string{ColDateShipped, ColTonnes},
}

// TableSchemas maps each processing type to the tables its summary logs must
// carry. Every listed table is required; tables the scanner finds beyond
// these draw a warning and are otherwise ignored.
var TableSchemas = map[ProcessingType]map[string]TableSchema{
	ProcessingExporter: {
		TableExported: exportedSchema,
	},
	ProcessingReprocessor: {
		TableReceived:  receivedSchema,
		TableProcessed: processedSchema,
		TableSentOn:    sentOnSchema,
	},
}

// TonnageWarningThreshold flags implausibly large single-row tonnages.
// Rows above it still validate; the warning exists for reviewer attention.
var TonnageWarningThreshold = decimal.NewFromInt(10000)
