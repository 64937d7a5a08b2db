package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wasteworks/reclaim/internal/records"
	"github.com/wasteworks/reclaim/internal/validation"
)

// Extraction is the transaction-relevant reading of one waste record: when
// the material moved, how much of it, and whether a recycling note was
// already issued against it.
type Extraction struct {
	DispatchDate time.Time
	Amount       decimal.Decimal
	PRNIssued    bool
}

// Extractor reads transaction fields from a waste record of one processing
// shape. A nil return is not an error: it signals the record is not the
// extractor's shape or its reporting data is absent or invalid, and the
// record simply does not post.
type Extractor func(rec *records.Record) *Extraction

// Extractors returns the extractor sequence, one per processing shape:
// exporter, reprocessor input, reprocessor output.
func Extractors() []Extractor {
	return []Extractor{
		ExtractExporter,
		ExtractReprocessorInput,
		ExtractReprocessorOutput,
	}
}

// Extract runs the extractor sequence and returns the first extraction, or
// nil when no extractor recognizes the record.
func Extract(rec *records.Record) *Extraction {
	for _, ex := range Extractors() {
		if e := ex(rec); e != nil {
			return e
		}
	}
	return nil
}

// ExtractExporter reads exported records: dispatch date from DATE_SHIPPED,
// tonnage from TONNES.
func ExtractExporter(rec *records.Record) *Extraction {
	if rec.Type != records.TypeExported {
		return nil
	}
	return extract(rec.Data, validation.ColDateShipped, validation.ColTonnes)
}

// ExtractReprocessorInput reads received records: dispatch date from
// DATE_RECEIVED. Tonnage comes from NET_TONNAGE when the row reports an
// intermediate site, otherwise from TONNAGE_RECEIVED.
func ExtractReprocessorInput(rec *records.Record) *Extraction {
	if rec.Type != records.TypeReceived {
		return nil
	}

	tonnageField := validation.ColTonnageReceived
	if intermediate, ok := validation.AsBool(rec.Data[validation.ColIntermediateSite]); ok && intermediate {
		tonnageField = validation.ColNetTonnage
	}

	return extract(rec.Data, validation.ColDateReceived, tonnageField)
}

// ExtractReprocessorOutput reads processed records: dispatch date from
// DATE_PROCESSED, tonnage from TONNAGE_PROCESSED.
func ExtractReprocessorOutput(rec *records.Record) *Extraction {
	if rec.Type != records.TypeProcessed {
		return nil
	}
	return extract(rec.Data, validation.ColDateProcessed, validation.ColTonnageProcessed)
}

func extract(data map[string]any, dateField, tonnageField string) *Extraction {
	date, ok := validation.AsDate(data[dateField])
	if !ok {
		return nil
	}

	amount, ok := validation.AsDecimal(data[tonnageField])
	if !ok || amount.IsNegative() {
		return nil
	}

	prnIssued, _ := validation.AsBool(data[validation.ColPRNIssued])

	return &Extraction{
		DispatchDate: date,
		Amount:       amount,
		PRNIssued:    prnIssued,
	}
}
