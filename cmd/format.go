package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/phone"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatLeads(w io.Writer, leads []model.Lead, r phone.Region) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tSCORE\tSTATUS\tINSTAGRAM\tWEBSITE\tWHATSAPP")
	for _, l := range leads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(l.ID), l.Name, l.Phone, l.Score, l.Status,
			orDash(l.Instagram), orDash(l.Website), orDash(r.WhatsAppLink(l.Phone, "")),
		)
	}
	tw.Flush() //nolint:errcheck
}

func formatSources(w io.Writer, sources []model.GroundingSource) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for _, s := range sources {
		fmt.Fprintf(w, "  - %s (%s)\n", orDash(s.Title), s.URI)
	}
}

func formatHistory(w io.Writer, items []model.SearchHistoryItem) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tNICHE\tLOCATION\tFOUND")
	for _, h := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\n",
			h.Timestamp.Local().Format("2006-01-02 15:04"), h.Niche, h.Location, h.Found, h.Count)
	}
	tw.Flush() //nolint:errcheck
}

func formatStats(w io.Writer, s model.DashboardStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Saved leads\t%d\n", s.SavedLeads)
	fmt.Fprintf(tw, "Valid phones\t%d\n", s.ValidPhones)
	for _, st := range model.LeadStatuses {
		fmt.Fprintf(tw, "  %s\t%d\n", st, s.ByStatus[st])
	}
	scores := make([]string, 0, len(s.ByScore))
	for sc := range s.ByScore {
		scores = append(scores, string(sc))
	}
	sort.Strings(scores)
	for _, sc := range scores {
		fmt.Fprintf(tw, "  %s\t%d\n", sc, s.ByScore[model.Score(sc)])
	}
	fmt.Fprintf(tw, "Ticket\tR$ %.2f\n", s.TicketValue)
	fmt.Fprintf(tw, "Potential revenue\tR$ %.2f\n", s.PotentialRevenue)
	tw.Flush() //nolint:errcheck
}

func formatService(w io.Writer, svc *model.ServiceContext) {
	if !svc.Configured() {
		fmt.Fprintln(w, "No service configured. Run `prospect-cli service set --name ...`.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Service\t%s\n", svc.ServiceName)
	fmt.Fprintf(tw, "Description\t%s\n", orDash(svc.Description))
	fmt.Fprintf(tw, "Audience\t%s\n", orDash(svc.TargetAudience))
	fmt.Fprintf(tw, "Ticket\tR$ %.2f\n", svc.Ticket())
	if in := svc.Insights; in != nil {
		fmt.Fprintf(tw, "Recommended niche\t%s\n", in.RecommendedNiche)
		fmt.Fprintf(tw, "Suggested ticket\tR$ %.2f\n", in.SuggestedTicket)
	}
	tw.Flush() //nolint:errcheck
}

func formatSequence(w io.Writer, steps []model.SequenceStep) {
	for _, s := range steps {
		fmt.Fprintf(w, "Day %d [%s]\n  %s\n", s.Day, s.Trigger, s.Message)
		if s.Explanation != "" {
			fmt.Fprintf(w, "  (%s)\n", s.Explanation)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
