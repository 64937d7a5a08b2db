package summarylog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wasteworks/reclaim/internal/business"
	"github.com/wasteworks/reclaim/internal/issues"
	"github.com/wasteworks/reclaim/internal/ledger"
	"github.com/wasteworks/reclaim/internal/records"
	"github.com/wasteworks/reclaim/internal/registration"
	"github.com/wasteworks/reclaim/internal/validation"
	"github.com/wasteworks/reclaim/internal/workbook"
	"github.com/wasteworks/reclaim/pkg/formatting"
	"github.com/wasteworks/reclaim/pkg/storage"
)

// Issue codes the pipeline itself raises, ahead of any validator.
const (
	CodeWorkbookCorrupt = "WORKBOOK_CORRUPT"
	CodeFileMissing     = "FILE_MISSING"
)

// Uploads is the slice of the upload store the pipeline needs: workbook
// bytes by reference.
type Uploads interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Pipeline runs one summary log from upload reference to terminal status:
// fetch, parse, metadata validation, data validation, business validation,
// record materialization, ledger posting. Stages share nothing but the
// parsed workbook; each failure mode maps to exactly one terminal status.
type Pipeline struct {
	store        Store
	uploads      Uploads
	oracle       registration.Oracle
	materializer *records.Materializer
	ledger       *ledger.Service
	logger       *slog.Logger
}

// NewPipeline assembles a pipeline over the given ports.
func NewPipeline(
	store Store,
	uploads Uploads,
	oracle registration.Oracle,
	materializer *records.Materializer,
	ledgerSvc *ledger.Service,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		store:        store,
		uploads:      uploads,
		oracle:       oracle,
		materializer: materializer,
		ledger:       ledgerSvc,
		logger:       logger.With("system", "summarylog"),
	}
}

// Run executes the full ingestion for one summary log and returns the
// document in its terminal status. Infrastructure failures return an error
// with the document left in validating; re-running is safe because
// materialization appends nothing for rows it has already seen.
func (p *Pipeline) Run(ctx context.Context, id uuid.UUID) (*SummaryLog, error) {
	doc, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load summary log: %w", err)
	}

	logger := p.logger.With("summary_log_id", doc.ID)
	logger.Info("summary log run starting", "file", doc.FileName)

	if doc, err = p.store.Transition(ctx, doc.ID, StatusValidating, nil); err != nil {
		return nil, fmt.Errorf("transition to validating: %w", err)
	}

	data, err := p.uploads.Fetch(ctx, doc.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return p.finish(ctx, doc, StatusRejected, logger, issues.New(
				issues.Fatal(issues.CategoryTechnical, CodeFileMissing,
					"the uploaded file could not be found"),
			))
		}
		return nil, fmt.Errorf("fetch workbook: %w", err)
	}

	logger.Info("workbook fetched", "size", formatting.FormatBytes(int64(len(data)), 1))

	parsed, err := workbook.Parse(data)
	if err != nil {
		logger.Warn("workbook unreadable", "error", err)
		return p.finish(ctx, doc, StatusRejected, logger, issues.New(
			issues.Fatal(issues.CategoryTechnical, CodeWorkbookCorrupt,
				"the uploaded file could not be read as a spreadsheet"),
		))
	}

	found := validation.ValidateMeta(parsed)
	if found.IsFatal() {
		return p.finish(ctx, doc, StatusInvalid, logger, found)
	}

	reg, err := p.oracle.Registration(ctx, doc.OrganisationID, doc.RegistrationID)
	if err != nil {
		return nil, fmt.Errorf("lookup registration: %w", err)
	}

	pt := business.ProcessingTypes[validation.AsString(parsed.MetaValue(validation.FieldProcessingType))]

	dataResult := validation.ValidateData(parsed, pt)
	found.Merge(dataResult.Issues)
	if dataResult.Issues.IsFatal() {
		return p.finish(ctx, doc, StatusInvalid, logger, found)
	}

	biz := business.Validate(parsed, reg, logger)
	found.Merge(biz.Issues)
	if !biz.OK {
		return p.finish(ctx, doc, StatusInvalid, logger, found)
	}

	if err := p.materialize(ctx, doc, reg, dataResult); err != nil {
		return nil, err
	}

	return p.finish(ctx, doc, StatusValidated, logger, found)
}

// materialize turns accepted rows into record versions and posts them to the
// ledger when the registration carries an accreditation. Created versions
// post the record's full tonnage; updated versions post only the difference
// the correction makes, so resubmissions never re-credit what an earlier run
// already posted.
func (p *Pipeline) materialize(
	ctx context.Context,
	doc *SummaryLog,
	reg *registration.Registration,
	dataResult validation.DataResult,
) error {
	sub := records.Submission{
		OrganisationID:  doc.OrganisationID,
		RegistrationID:  doc.RegistrationID,
		AccreditationID: doc.AccreditationID,
		SummaryLogID:    doc.ID,
		Tables:          dataResult.Tables,
	}

	appended, err := p.materializer.Materialize(ctx, sub)
	if err != nil {
		return fmt.Errorf("materialize records: %w", err)
	}

	if reg.Accreditation == nil {
		return nil
	}

	for _, m := range appended {
		var (
			posting *ledger.Posting
			err     error
		)
		switch m.Version.Status {
		case records.StatusCreated:
			posting, err = p.ledger.PostRecord(ctx, m.Record, reg.Accreditation, doc.ID.String())
		case records.StatusUpdated:
			posting, err = p.ledger.PostRecordUpdate(ctx, m.Record, m.Prior, reg.Accreditation, doc.ID.String())
		}
		if err != nil {
			return fmt.Errorf("post record %s: %w", m.Record.ID, err)
		}
		if posting != nil {
			p.logger.Info("record posted to balance",
				"summary_log_id", doc.ID,
				"record_id", m.Record.ID,
				"transactions", len(posting.Transactions),
			)
		}
	}

	return nil
}

func (p *Pipeline) finish(
	ctx context.Context,
	doc *SummaryLog,
	status Status,
	logger *slog.Logger,
	found issues.Set,
) (*SummaryLog, error) {
	final, err := p.store.Transition(ctx, doc.ID, status, found.Items)
	if err != nil {
		return nil, fmt.Errorf("transition to %s: %w", status, err)
	}

	logger.Info("summary log run finished",
		"status", status,
		"issues", found.Len(),
		"fatal", found.IsFatal(),
	)
	return final, nil
}
