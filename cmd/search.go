package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

var (
	searchNiche       string
	searchLocation    string
	searchSize        string
	searchCount       int
	searchWebsite     string
	searchInstagram   bool
	searchMobile      bool
	searchInstruction string
	searchSave        bool
	searchUser        string
	searchJSON        bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find businesses with a reachable phone number",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "search")
		if err != nil {
			return err
		}
		defer env.Close()

		count := searchCount
		if count == 0 {
			count = cfg.Search.DefaultCount
		}
		req := model.SearchRequest{
			Niche:       searchNiche,
			Location:    searchLocation,
			Size:        model.BusinessSize(searchSize),
			TargetCount: count,
			Filters: model.Filters{
				WebsiteRule:       model.WebsiteRule(searchWebsite),
				InstagramRequired: searchInstagram,
				MobileOnly:        searchMobile,
			},
			CustomInstruction: searchInstruction,
		}

		res, err := env.Pipeline.Search(ctx, searchUser, req)
		if err != nil {
			return eris.Wrap(err, "search")
		}

		if searchSave && !res.Empty() {
			n, err := env.Pipeline.Save(ctx, res.Leads)
			if err != nil {
				return err
			}
			zap.L().Info("leads saved", zap.Int("saved", n))
		}

		if searchJSON {
			return writeJSON(os.Stdout, res)
		}
		if res.Empty() {
			fmt.Fprintln(os.Stderr, res.Message)
			return nil
		}
		formatLeads(os.Stdout, res.Leads, region())
		formatSources(os.Stdout, res.Sources)
		fmt.Fprintf(os.Stderr, "\n%d leads in %d attempts (%d provider calls)\n", len(res.Leads), res.Attempts, res.ProviderCalls)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		items, err := st.ListSearchHistory(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "history")
		}
		if len(items) == 0 {
			fmt.Fprintln(os.Stderr, "No searches yet.")
			return nil
		}
		formatHistory(os.Stdout, items)
		return nil
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchNiche, "niche", "", "business niche, e.g. \"padarias\" (required)")
	f.StringVar(&searchLocation, "location", "", "city or region (required)")
	f.StringVar(&searchSize, "size", "", "business size hint: small, medium or large")
	f.IntVar(&searchCount, "count", 0, "number of leads to find (default from config)")
	f.StringVar(&searchWebsite, "website", "any", "website filter: any, must_have or must_not_have")
	f.BoolVar(&searchInstagram, "instagram", false, "only leads with an Instagram handle")
	f.BoolVar(&searchMobile, "mobile", false, "only leads with a mobile number")
	f.StringVar(&searchInstruction, "instruction", "", "extra instruction appended to the prompt")
	f.BoolVar(&searchSave, "save", false, "save the leads found")
	f.StringVar(&searchUser, "user", os.Getenv("USER"), "caller name for the duplicate-search guard")
	f.BoolVar(&searchJSON, "json", false, "print the result as JSON")
	_ = searchCmd.MarkFlagRequired("niche")
	_ = searchCmd.MarkFlagRequired("location")

	historyCmd.Flags().Int("limit", 20, "max searches to show")

	rootCmd.AddCommand(searchCmd, historyCmd)
}
