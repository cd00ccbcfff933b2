package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/LeadParser/internal/schema"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "List the lead columns and their rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := schema.MustLead()
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(reg.Fields())
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tCOLUMN\tREQUIRED\tFORMAT\tOPTIONS")
			for _, f := range reg.Fields() {
				req := ""
				switch {
				case f.Required:
					req = "yes"
				case f.SystemGenerated:
					req = "system"
				}
				opts := reg.Options(f.Name)
				list := strings.Join(opts, ", ")
				if len(opts) > 4 {
					list = strings.Join(opts[:4], ", ") + fmt.Sprintf(", ... (%d)", len(opts))
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", f.Order, f.Name, req, f.DisplayFormat, list)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the schema as JSON")
	return cmd
}
