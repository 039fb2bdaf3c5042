package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/cassiomorais/yamoney/internal/bootstrap"
	"github.com/cassiomorais/yamoney/pkg/yamoney"
	"github.com/spf13/cobra"
)

type OperationHistoryFlags struct {
	From        string
	Till        string
	Label       string
	Types       []string
	StartRecord uint64
	Records     uint
	Detailed    bool
}

func (f *OperationHistoryFlags) Validate() (yamoney.HistoryFilter, error) {
	filter := yamoney.HistoryFilter{
		Label:       f.Label,
		StartRecord: f.StartRecord,
		Records:     f.Records,
		Details:     f.Detailed,
	}

	for _, raw := range f.Types {
		t, err := yamoney.ParseOperationType(raw)
		if err != nil {
			return yamoney.HistoryFilter{}, fmt.Errorf("invalid --type: %w", err)
		}
		filter.Types = append(filter.Types, t)
	}

	var err error
	if filter.From, err = parseTime("from", f.From); err != nil {
		return yamoney.HistoryFilter{}, err
	}
	if filter.Till, err = parseTime("till", f.Till); err != nil {
		return yamoney.HistoryFilter{}, err
	}
	if filter.From != nil && filter.Till != nil && !filter.From.Before(*filter.Till) {
		return yamoney.HistoryFilter{}, errors.New("--from must be before --till")
	}
	if f.Records > 100 {
		return yamoney.HistoryFilter{}, errors.New("--records must be between 1 and 100")
	}

	return filter, nil
}

func NewCmdOperationHistory(app *bootstrap.App) *cobra.Command {
	f := &OperationHistoryFlags{}

	cmd := &cobra.Command{
		Use:   "operation-history",
		Short: "List wallet operations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := f.Validate()
			if err != nil {
				return err
			}
			// Flags are valid, so later failures are not usage errors.
			cmd.SilenceUsage = true

			w := cmd.OutOrStdout()
			for op, err := range app.Client().OperationHistory(cmd.Context(), filter) {
				if err != nil {
					return fmt.Errorf("couldn't list operations: %w", err)
				}
				var out any = op
				if op.Details != nil {
					out = op.Details
				}
				if err := printJSON(w, out); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.From, "from", "", "Only operations at or after this RFC 3339 time")
	cmd.Flags().StringVar(&f.Till, "till", "", "Only operations before this RFC 3339 time")
	cmd.Flags().StringVar(&f.Label, "label", "", "Only operations with this label")
	cmd.Flags().StringSliceVar(&f.Types, "type", nil, "Operation types: deposition, payment (repeatable)")
	cmd.Flags().Uint64Var(&f.StartRecord, "start-record", 0, "Skip this many operations")
	cmd.Flags().UintVar(&f.Records, "records", 0, "Page size, up to 100")
	cmd.Flags().BoolVar(&f.Detailed, "detailed", false, "Include operation details")

	return cmd
}

func NewCmdOperationDetails(app *bootstrap.App) *cobra.Command {
	var operationID string

	cmd := &cobra.Command{
		Use:   "operation-details",
		Short: "Show one operation in full",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			details, err := app.Client().OperationDetails(cmd.Context(), operationID)
			if err != nil {
				return fmt.Errorf("couldn't get operation details: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), details)
		},
	}

	cmd.Flags().StringVar(&operationID, "operation-id", "", "Operation ID from the history")
	_ = cmd.MarkFlagRequired("operation-id")

	return cmd
}

func parseTime(flag, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: must be an RFC 3339 time", flag, raw)
	}
	return &t, nil
}
