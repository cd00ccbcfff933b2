package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/LeadParser/internal/schema"
	"github.com/JonMunkholm/LeadParser/internal/workbook"
)

// NewCleanCmd creates the clean subcommand.
func NewCleanCmd() *cobra.Command {
	var (
		output   string
		applyAll bool
	)

	cmd := &cobra.Command{
		Use:          "clean <file>",
		Short:        "Normalize a lead file and write <name>_cleaned.xlsx",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc := newService()
			st, err := openFile(ctx, svc, args[0])
			if err != nil {
				return err
			}

			applied := 0
			if applyAll {
				for i := range st.File.Sheets {
					if _, err := svc.SelectSheet(ctx, st.SessionID, i); err != nil {
						return err
					}
					_, n, err := svc.ApplyFixes(ctx, st.SessionID, nil)
					if err != nil {
						return err
					}
					applied += n
				}
			}

			sheets, err := validateAll(ctx, svc, st.SessionID)
			if err != nil {
				return err
			}
			remaining := 0
			for _, s := range sheets {
				remaining += len(s.Errors)
			}

			res, err := svc.Export(ctx, st.SessionID)
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Join(filepath.Dir(args[0]), res.FileName)
			}
			if err := os.WriteFile(output, res.Data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "wrote %s (%d auto-fix(es) on import, %d suggested fix(es) applied)\n",
				output, len(st.File.AutoFixes), applied)
			if remaining > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d validation error(s) remain; run check for details\n", remaining)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default <name>_cleaned.xlsx next to the input)")
	cmd.Flags().BoolVar(&applyAll, "apply-fixes", false, "also apply every suggested dropdown and spacing fix")
	return cmd
}

// NewTemplateCmd creates the template subcommand.
func NewTemplateCmd() *cobra.Command {
	var (
		output string
		rows   int
	)

	cmd := &cobra.Command{
		Use:          "template",
		Short:        "Write an empty lead workbook with every schema column",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rows < 1 {
				return fmt.Errorf("--rows must be at least 1")
			}
			file := workbook.Blank(schema.MustLead(), rows, time.Now())
			data, err := workbook.Export(file.Sheets)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "leads_template.xlsx", "output path")
	cmd.Flags().IntVar(&rows, "rows", workbook.BlankRows, "number of empty rows")
	return cmd
}
