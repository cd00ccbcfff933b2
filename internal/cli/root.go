// Package cli implements the leadclean command-line tool: the same
// parse, fix, validate and export pipeline as the server, run on local files.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/LeadParser/internal/core"
	"github.com/JonMunkholm/LeadParser/internal/logging"
	"github.com/JonMunkholm/LeadParser/internal/model"
	"github.com/JonMunkholm/LeadParser/internal/schema"
)

// NewRootCmd creates the leadclean command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "leadclean",
		Short:         "leadclean - check and clean lead spreadsheets",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger := logging.Discard()
			if verbose {
				logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			cmd.SetContext(logging.NewContext(contextOf(cmd), logger))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline steps to stderr")

	root.AddCommand(NewCheckCmd())
	root.AddCommand(NewCleanCmd())
	root.AddCommand(NewTemplateCmd())
	root.AddCommand(NewSchemaCmd())
	root.AddCommand(NewHistoryCmd())
	return root
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openFile reads path and opens an unsaved session on it.
func openFile(ctx context.Context, svc *core.Service, path string) (*core.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	st, err := svc.Upload(ctx, filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", path, core.FormatUserError(err))
	}
	return st, nil
}

// sheetResult is the validation outcome of one sheet.
type sheetResult struct {
	Name    string                  `json:"name"`
	Rows    int                     `json:"rows"`
	Errors  []model.ValidationError `json:"errors"`
	Missing []string                `json:"missingRequiredColumns,omitempty"`
}

// validateAll visits every sheet of session id and collects its errors.
// The session is left on the last sheet.
func validateAll(ctx context.Context, svc *core.Service, id string) ([]sheetResult, error) {
	cur, err := svc.State(ctx, id)
	if err != nil {
		return nil, err
	}
	var out []sheetResult
	for i := range cur.File.Sheets {
		if i != cur.CurrentSheet {
			if cur, err = svc.SelectSheet(ctx, id, i); err != nil {
				return nil, err
			}
		}
		sheet := cur.File.Sheets[i]
		out = append(out, sheetResult{
			Name:    sheet.Name,
			Rows:    len(sheet.Rows),
			Errors:  cur.Errors,
			Missing: cur.Headers.MissingRequired,
		})
	}
	return out, nil
}

func newService() *core.Service {
	return core.NewService(schema.MustLead())
}
