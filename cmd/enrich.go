package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/enrich"
	"github.com/sells-group/prospect-cli/pkg/google"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Add Google rating and review counts to saved leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if cfg.Google.PlacesKey == "" {
			return eris.New("google places key is required (PROSPECT_GOOGLE_PLACES_KEY)")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		location, _ := cmd.Flags().GetString("location")
		enricher := enrich.NewPlacesEnricher(google.NewClient(cfg.Google.PlacesKey), cfg.Google.RateLimit)

		n, err := storePipeline(st).EnrichSaved(ctx, enricher, leadFilterFromFlags(cmd), location)
		if err != nil {
			return eris.Wrap(err, "enrich")
		}
		fmt.Fprintf(os.Stderr, "Enriched %d leads\n", n)
		return nil
	},
}

func init() {
	enrichCmd.Flags().String("location", "", "city appended to each Places query")
	addLeadFilterFlags(enrichCmd)
	rootCmd.AddCommand(enrichCmd)
}
