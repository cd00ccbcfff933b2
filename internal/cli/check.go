package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/LeadParser/internal/validation"
)

// ErrHasErrors is returned by check when the file does not validate.
var ErrHasErrors = errors.New("file has validation errors")

type checkOutput struct {
	File     string        `json:"file"`
	AutoFix  int           `json:"autoFixes"`
	Sheets   []sheetResult `json:"sheets"`
	Errors   int           `json:"totalErrors"`
	Proceeds bool          `json:"canProceed"`
}

// NewCheckCmd creates the check subcommand.
func NewCheckCmd() *cobra.Command {
	var (
		jsonOut bool
		filter  string
	)

	cmd := &cobra.Command{
		Use:          "check <file>",
		Short:        "Validate a lead file and list its problems",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := validation.ParseFilter(filter)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc := newService()
			st, err := openFile(ctx, svc, args[0])
			if err != nil {
				return err
			}
			sheets, err := validateAll(ctx, svc, st.SessionID)
			if err != nil {
				return err
			}

			out := checkOutput{File: args[0], AutoFix: len(st.File.AutoFixes), Sheets: sheets}
			for i := range out.Sheets {
				out.Errors += len(out.Sheets[i].Errors)
				out.Sheets[i].Errors = validation.FilterErrors(out.Sheets[i].Errors, f)
			}
			out.Proceeds = out.Errors == 0

			if jsonOut {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
			} else {
				printCheck(cmd, out)
			}

			if !out.Proceeds {
				return ErrHasErrors
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the result as JSON")
	cmd.Flags().StringVar(&filter, "filter", "all", "errors to list: all, auto-fixable, required-fields")
	return cmd
}

func printCheck(cmd *cobra.Command, out checkOutput) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d sheet(s), %d auto-fix(es) applied on import\n", out.File, len(out.Sheets), out.AutoFix)
	for _, s := range out.Sheets {
		fmt.Fprintf(w, "\n[%s] %d row(s)\n", s.Name, s.Rows)
		for _, col := range s.Missing {
			fmt.Fprintf(w, "  missing required column: %s\n", col)
		}
		for _, e := range s.Errors {
			fix := ""
			if e.SuggestedFix != nil {
				fix = fmt.Sprintf(" (suggest %q)", *e.SuggestedFix)
			}
			fmt.Fprintf(w, "  row %d, %s: %s%s\n", e.RowIndex, e.Field, e.Message, fix)
		}
	}
	if out.Proceeds {
		fmt.Fprintln(w, "\nno errors")
	} else {
		fmt.Fprintf(w, "\n%d error(s)\n", out.Errors)
	}
}
