package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/model"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Show or describe the service you sell",
}

var serviceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		svc, err := st.GetServiceContext(ctx)
		if err != nil {
			return err
		}
		formatService(os.Stdout, svc)
		return nil
	},
}

var serviceSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Describe the service you sell",
	Long:  "Updates the flags given and keeps the rest. The service steers searches and outreach copy.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		svc, err := st.GetServiceContext(ctx)
		if err != nil {
			return err
		}
		if svc == nil {
			svc = &model.ServiceContext{}
		}

		f := cmd.Flags()
		if f.Changed("name") {
			svc.ServiceName, _ = f.GetString("name")
		}
		if f.Changed("description") {
			svc.Description, _ = f.GetString("description")
		}
		if f.Changed("audience") {
			svc.TargetAudience, _ = f.GetString("audience")
		}
		if f.Changed("ticket") {
			svc.TicketValue, _ = f.GetFloat64("ticket")
		}
		if !svc.Configured() {
			return eris.New("service: --name is required")
		}

		if err := st.SetServiceContext(ctx, *svc); err != nil {
			return err
		}
		formatService(os.Stdout, svc)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the saved lead pipeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.ListLeads(ctx, allLeads)
		if err != nil {
			return eris.Wrap(err, "stats")
		}
		svc, err := st.GetServiceContext(ctx)
		if err != nil {
			return err
		}
		stats := model.NewDashboardStats(leads, svc)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, stats)
		}
		formatStats(os.Stdout, stats)
		return nil
	},
}

func init() {
	serviceSetCmd.Flags().String("name", "", "service name, e.g. \"Sites para restaurantes\"")
	serviceSetCmd.Flags().String("description", "", "what the offer includes")
	serviceSetCmd.Flags().String("audience", "", "ideal customer")
	serviceSetCmd.Flags().Float64("ticket", 0, "average deal value in BRL")

	statsCmd.Flags().Bool("json", false, "print stats as JSON")

	serviceCmd.AddCommand(serviceShowCmd, serviceSetCmd)
	rootCmd.AddCommand(serviceCmd, statsCmd)
}
