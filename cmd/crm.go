package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/crm"
	"github.com/sells-group/prospect-cli/pkg/notion"
	"github.com/sells-group/prospect-cli/pkg/salesforce"
)

var crmCmd = &cobra.Command{
	Use:   "crm",
	Short: "Sync saved leads to a CRM",
}

var crmPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push saved leads to Notion or Salesforce",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		name, _ := cmd.Flags().GetString("sink")
		sink, err := initSink(name)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		results, err := storePipeline(st).Push(ctx, sink, leadFilterFromFlags(cmd))
		if err != nil {
			return eris.Wrap(err, "crm push")
		}

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "%s: %v\n", r.LeadID, r.Err)
				continue
			}
			fmt.Fprintf(os.Stdout, "%s\t%s\n", r.LeadID, r.ExternalID)
		}
		fmt.Fprintf(os.Stderr, "Pushed %d of %d leads to %s\n", len(results)-failed, len(results), sink.Name())
		if failed > 0 {
			return eris.Errorf("crm push: %d leads failed", failed)
		}
		return nil
	},
}

func initSink(name string) (crm.Sink, error) {
	switch name {
	case "notion":
		if cfg.Notion.Token == "" {
			return nil, eris.New("notion token is required (PROSPECT_NOTION_TOKEN)")
		}
		if cfg.Notion.LeadDB == "" {
			return nil, eris.New("notion lead database is required (PROSPECT_NOTION_LEAD_DB)")
		}
		db, err := notion.NewLeadDB(cfg.Notion.Token, cfg.Notion.LeadDB)
		if err != nil {
			return nil, err
		}
		return crm.NewNotionSink(db), nil
	case "salesforce":
		client, err := salesforce.Dial(salesforce.Creds{
			LoginURL: cfg.Salesforce.LoginURL,
			Username: cfg.Salesforce.Username,
			ClientID: cfg.Salesforce.ClientID,
			KeyPath:  cfg.Salesforce.KeyPath,
		}, salesforce.WithRateLimit(5))
		if err != nil {
			return nil, err
		}
		return crm.NewSalesforceSink(client), nil
	default:
		return nil, eris.Errorf("unknown sink %q (notion, salesforce)", name)
	}
}

func init() {
	crmPushCmd.Flags().String("sink", "notion", "destination: notion or salesforce")
	addLeadFilterFlags(crmPushCmd)

	crmCmd.AddCommand(crmPushCmd)
	rootCmd.AddCommand(crmCmd)
}
