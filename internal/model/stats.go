package model

// NewDashboardStats tallies saved leads. Potential revenue assumes every saved
// lead closes at the service's ticket value.
func NewDashboardStats(leads []Lead, svc *ServiceContext) DashboardStats {
	stats := DashboardStats{
		SavedLeads:  len(leads),
		ByStatus:    make(map[LeadStatus]int, len(LeadStatuses)),
		ByScore:     make(map[Score]int, 3),
		TicketValue: svc.Ticket(),
	}
	for _, s := range LeadStatuses {
		stats.ByStatus[s] = 0
	}
	for _, l := range leads {
		if len(l.NormalizedPhone) >= 8 {
			stats.ValidPhones++
		}
		status := l.Status
		if status == "" {
			status = StatusNew
		}
		stats.ByStatus[status]++
		if l.Score != "" {
			stats.ByScore[l.Score]++
		}
	}
	stats.PotentialRevenue = float64(stats.SavedLeads) * stats.TicketValue
	return stats
}
