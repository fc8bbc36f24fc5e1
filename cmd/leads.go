package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/export"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Manage saved leads",
}

// -- leads list --

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.ListLeads(ctx, leadFilterFromFlags(cmd))
		if err != nil {
			return eris.Wrap(err, "leads list")
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, leads)
		}
		if len(leads) == 0 {
			fmt.Fprintln(os.Stderr, "No leads found.")
			return nil
		}
		formatLeads(os.Stdout, leads, region())
		return nil
	},
}

// -- leads status --

var leadsStatusCmd = &cobra.Command{
	Use:   "status <lead-id> <new|contacted|negotiation|closed>",
	Short: "Move a lead to another pipeline stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.UpdateLeadStatus(ctx, args[0], model.LeadStatus(args[1])); err != nil {
			return eris.Wrapf(err, "lead %s", args[0])
		}
		fmt.Fprintf(os.Stderr, "Lead %s moved to %s\n", args[0], args[1])
		return nil
	},
}

// -- leads remove --

var leadsRemoveCmd = &cobra.Command{
	Use:     "remove <lead-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved lead",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteLead(ctx, args[0]); err != nil {
			return eris.Wrapf(err, "lead %s", args[0])
		}
		fmt.Fprintf(os.Stderr, "Lead %s removed\n", args[0])
		return nil
	},
}

// -- leads export --

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved leads to CSV or XLSX",
	Long:  "Writes CSV to stdout, or to --out. A path ending in .xlsx produces a spreadsheet.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.ListLeads(ctx, leadFilterFromFlags(cmd))
		if err != nil {
			return eris.Wrap(err, "leads export")
		}

		out, _ := cmd.Flags().GetString("out")
		return exportLeads(out, leads)
	},
}

func exportLeads(out string, leads []model.Lead) error {
	switch {
	case out == "" || out == "-":
		return export.WriteCSV(os.Stdout, leads)
	case strings.EqualFold(filepath.Ext(out), ".xlsx"):
		return export.WriteXLSX(out, leads)
	default:
		f, err := os.Create(out)
		if err != nil {
			return eris.Wrap(err, "create export file")
		}
		if err := export.WriteCSV(f, leads); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		return f.Close()
	}
}

func addLeadFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("status", "", "filter by pipeline stage")
	cmd.Flags().String("score", "", "filter by score: hot, warm or cold")
	cmd.Flags().StringP("query", "q", "", "filter by name substring")
	cmd.Flags().Int("limit", 0, "max leads (default 500)")
}

func leadFilterFromFlags(cmd *cobra.Command) store.LeadFilter {
	status, _ := cmd.Flags().GetString("status")
	score, _ := cmd.Flags().GetString("score")
	query, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")
	return store.LeadFilter{
		Status: model.LeadStatus(status),
		Score:  model.Score(score),
		Query:  query,
		Limit:  limit,
	}
}

func init() {
	addLeadFilterFlags(leadsListCmd)
	leadsListCmd.Flags().Bool("json", false, "print leads as JSON")
	addLeadFilterFlags(leadsExportCmd)
	leadsExportCmd.Flags().StringP("out", "o", "", "output file (.csv or .xlsx); stdout when empty")

	leadsCmd.AddCommand(leadsListCmd, leadsStatusCmd, leadsRemoveCmd, leadsExportCmd)
	rootCmd.AddCommand(leadsCmd)
}
