package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wasteworks/reclaim/internal/business"
	"github.com/wasteworks/reclaim/internal/issues"
	"github.com/wasteworks/reclaim/internal/registration"
	"github.com/wasteworks/reclaim/internal/validation"
	"github.com/wasteworks/reclaim/internal/workbook"
)

var (
	regNumber  string
	regMat     string
	regType    string
	accrNumber string
)

var validateCmd = &cobra.Command{
	Use:   "validate <workbook.xlsx>",
	Short: "Validate a summary log workbook",
	Long: `Validate parses the workbook, checks its metadata and row data, and
reports every concern found. When --registration-number is supplied the
business checks also run against the given registration details.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(args[0])
	},
}

func init() {
	validateCmd.Flags().StringVar(&regNumber, "registration-number", "", "Registration number to validate against")
	validateCmd.Flags().StringVar(&regMat, "material", "", "Registered material code (AL, GL, PB, PL, ST, WD)")
	validateCmd.Flags().StringVar(&regType, "processing-type", "", "Registered processing type (exporter, reprocessor)")
	validateCmd.Flags().StringVar(&accrNumber, "accreditation-number", "", "Accreditation number to validate against")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}

	parsed, err := workbook.Parse(data)
	if err != nil {
		fmt.Printf("rejected: %v\n", err)
		os.Exit(1)
	}

	found := validation.ValidateMeta(parsed)
	if found.IsFatal() {
		report("invalid", found)
		os.Exit(1)
	}

	pt := business.ProcessingTypes[validation.AsString(parsed.MetaValue(validation.FieldProcessingType))]
	result := validation.ValidateData(parsed, pt)
	found.Merge(result.Issues)

	if regNumber != "" {
		reg := &registration.Registration{
			RegistrationNumber: regNumber,
			Material:           registration.Material(regMat),
			ProcessingType:     string(pt),
		}
		if regType != "" {
			reg.ProcessingType = regType
		}
		if accrNumber != "" {
			reg.Accreditation = &registration.Accreditation{Number: accrNumber}
		}

		biz := business.Validate(parsed, reg, logger)
		found.Merge(biz.Issues)
	}

	for _, name := range []string{validation.TableReceived, validation.TableProcessed, validation.TableSentOn, validation.TableExported} {
		table, ok := result.Tables[name]
		if !ok {
			continue
		}
		included, excluded, rejected := 0, 0, 0
		for _, row := range table.Rows {
			switch row.Outcome {
			case validation.OutcomeIncluded:
				included++
			case validation.OutcomeExcluded:
				excluded++
			case validation.OutcomeRejected:
				rejected++
			}
		}
		fmt.Printf("%s: %d included, %d excluded, %d rejected\n", name, included, excluded, rejected)
	}

	if found.IsFatal() {
		report("invalid", found)
		os.Exit(1)
	}

	report("validated", found)
	return nil
}

func report(status string, found issues.Set) {
	fmt.Printf("status: %s\n", status)
	for _, i := range found.Items {
		fmt.Printf("  %s\n", i.String())
	}
}
