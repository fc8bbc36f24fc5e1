package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/coach"
	"github.com/sells-group/prospect-cli/internal/model"
)

// -- pitch --

var pitchCmd = &cobra.Command{
	Use:   "pitch [lead-id]",
	Short: "Write a cold WhatsApp message for a lead",
	Long:  "Writes a message for one lead, or with --all for every saved lead matching the filters.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "coach")
		if err != nil {
			return err
		}
		defer env.Close()

		svc, err := env.Store.GetServiceContext(ctx)
		if err != nil {
			return err
		}

		all, _ := cmd.Flags().GetBool("all")
		if !all {
			if len(args) != 1 {
				return eris.New("pitch: a lead id is required unless --all is set")
			}
			lead, err := env.Store.GetLead(ctx, args[0])
			if err != nil {
				return eris.Wrapf(err, "lead %s", args[0])
			}
			msg, err := env.Coach.Pitch(ctx, *lead, svc)
			if err != nil {
				return err
			}
			printPitch(os.Stdout, *lead, msg)
			return nil
		}

		leads, err := env.Store.ListLeads(ctx, leadFilterFromFlags(cmd))
		if err != nil {
			return eris.Wrap(err, "pitch: list leads")
		}
		msgs, err := env.Coach.PitchAll(ctx, leads, svc, cfg.Coach.Concurrency)
		if err != nil {
			return err
		}
		for _, l := range leads {
			if msg, ok := msgs[l.ID]; ok {
				printPitch(os.Stdout, l, msg)
			}
		}
		return nil
	},
}

func printPitch(w io.Writer, lead model.Lead, msg string) {
	fmt.Fprintf(w, "== %s (%s)\n%s\n", lead.Name, lead.Phone, msg)
	if link := region().WhatsAppLink(lead.Phone, msg); link != "" {
		fmt.Fprintf(w, "%s\n", link)
	}
	fmt.Fprintln(w)
}

// -- audit --

var auditCmd = &cobra.Command{
	Use:   "audit <lead-id>",
	Short: "Write a short technical audit of a lead's web presence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "coach")
		if err != nil {
			return err
		}
		defer env.Close()

		lead, err := env.Store.GetLead(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "lead %s", args[0])
		}
		svc, err := env.Store.GetServiceContext(ctx)
		if err != nil {
			return err
		}
		text, err := env.Coach.Audit(ctx, *lead, svc)
		if err != nil {
			return err
		}
		if err := env.Store.UpdateLeadAudit(ctx, lead.ID, text); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, text)
		return nil
	},
}

// -- insights --

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Recommend a niche and ticket for your service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "coach")
		if err != nil {
			return err
		}
		defer env.Close()

		svc, err := env.Store.GetServiceContext(ctx)
		if err != nil {
			return err
		}
		if svc == nil {
			svc = &model.ServiceContext{}
		}
		if name, _ := cmd.Flags().GetString("service"); name != "" {
			svc.ServiceName = name
		}
		if desc, _ := cmd.Flags().GetString("description"); desc != "" {
			svc.Description = desc
		}

		out, err := env.Coach.Insights(ctx, svc.ServiceName, svc.Description)
		if err != nil {
			return err
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			svc.Insights = out
			if err := env.Store.SetServiceContext(ctx, *svc); err != nil {
				return err
			}
		}
		return writeJSON(os.Stdout, out)
	},
}

// -- sequence --

var sequenceCmd = &cobra.Command{
	Use:   "sequence",
	Short: "Design a five-touch follow-up cadence for your service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "coach")
		if err != nil {
			return err
		}
		defer env.Close()

		svc, err := env.Store.GetServiceContext(ctx)
		if err != nil {
			return err
		}
		steps, err := env.Coach.Sequence(ctx, svc)
		if err != nil {
			return err
		}
		formatSequence(os.Stdout, steps)
		return nil
	},
}

// -- roleplay --

var roleplayCmd = &cobra.Command{
	Use:   "roleplay",
	Short: "Practice objection handling against a simulated prospect",
	Long:  "Reads your messages from stdin, one per line. Type \"sair\" or send EOF to end.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "coach")
		if err != nil {
			return err
		}
		defer env.Close()

		name, _ := cmd.Flags().GetString("profile")
		profile := model.ParseRoleplayProfile(name)
		if !profile.Valid() {
			return eris.Wrapf(coach.ErrUnknownProfile, "%q (skeptic, cheapskate, hurried)", name)
		}
		svc, err := env.Store.GetServiceContext(ctx)
		if err != nil {
			return err
		}

		return runRoleplay(cmd.InOrStdin(), cmd.OutOrStdout(), func(history []model.RoleplayMessage) (model.RoleplayMessage, error) {
			return env.Coach.Roleplay(ctx, profile, history, svc)
		})
	},
}

// runRoleplay drives the conversation loop. reply produces the prospect's
// next message for the history so far.
func runRoleplay(in io.Reader, out io.Writer, reply func([]model.RoleplayMessage) (model.RoleplayMessage, error)) error {
	history := []model.RoleplayMessage{coach.OpeningLine()}
	printTurn(out, history[0])

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "sair") {
			break
		}

		history = append(history, model.RoleplayMessage{Sender: model.SenderUser, Text: line})
		msg, err := reply(history)
		if err != nil {
			return err
		}
		history = append(history, msg)
		printTurn(out, msg)
	}
	fmt.Fprintln(out)
	return sc.Err()
}

func printTurn(w io.Writer, m model.RoleplayMessage) {
	fmt.Fprintf(w, "Cliente: %s\n", m.Text)
	if m.Feedback != "" {
		fmt.Fprintf(w, "  [nota %d/10] %s\n", m.Score, m.Feedback)
	}
}

func init() {
	pitchCmd.Flags().Bool("all", false, "pitch every saved lead matching the filters")
	addLeadFilterFlags(pitchCmd)

	insightsCmd.Flags().String("service", "", "service name (default: configured service)")
	insightsCmd.Flags().String("description", "", "service description (default: configured service)")
	insightsCmd.Flags().Bool("save", false, "store the insights with the service")

	roleplayCmd.Flags().String("profile", string(model.ProfileSkeptic), "prospect persona: skeptic, cheapskate or hurried")

	rootCmd.AddCommand(pitchCmd, auditCmd, insightsCmd, sequenceCmd, roleplayCmd)
}
