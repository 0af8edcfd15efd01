// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Summarizes accounts, pipeline and initiatives as plain text
package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/state"
)

// StaleAfter is how long an open opportunity may go without an update before
// it needs attention.
const StaleAfter = 14 * 24 * time.Hour

type DashboardStats struct {
	Pipeline models.PipelineSummary

	TotalAccounts    int
	AccountsByStatus map[models.AccountStatus]int
	ReadyAccounts    int
	TotalARR         float64

	TotalContacts    int
	TotalInitiatives int
	AverageProgress  float64

	AtRisk     []string
	StaleDeals []StaleDeal
}

type StaleDeal struct {
	Name      string
	DaysSince int
}

// GenerateDashboardStats derives dashboard figures from store snapshots.
func GenerateDashboardStats(accounts state.AccountSnapshot, portfolio state.PortfolioSnapshot, now time.Time) *DashboardStats {
	stats := &DashboardStats{
		Pipeline:         models.SummarizePipeline(portfolio.Opportunities),
		TotalAccounts:    len(accounts.Accounts),
		AccountsByStatus: make(map[models.AccountStatus]int),
		TotalContacts:    len(portfolio.Contacts),
		TotalInitiatives: len(portfolio.Initiatives),
		AverageProgress:  models.AverageProgress(portfolio.Initiatives),
	}

	for _, a := range accounts.Accounts {
		stats.AccountsByStatus[a.Status]++
		stats.TotalARR += a.ARR
		if a.TransformationReadiness {
			stats.ReadyAccounts++
		}
		if a.Status == models.AccountAtRisk {
			stats.AtRisk = append(stats.AtRisk, a.Name)
		}
	}
	sort.Strings(stats.AtRisk)

	for _, o := range portfolio.Opportunities {
		if o.Stage == models.StageClosedWon || o.Stage == models.StageClosedLost {
			continue
		}
		last := o.UpdatedAt
		if o.LastUpdated != nil {
			last = *o.LastUpdated
		}
		if last.IsZero() {
			continue
		}
		if age := now.Sub(last); age > StaleAfter {
			stats.StaleDeals = append(stats.StaleDeals, StaleDeal{Name: o.Name, DaysSince: int(age.Hours() / 24)})
		}
	}

	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  KEY ACCOUNTS DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.Pipeline)
	out.WriteString(fmt.Sprintf("  Total %s  Weighted %s\n\n",
		FormatMoney(stats.Pipeline.TotalValue), FormatMoney(stats.Pipeline.WeightedValue)))

	out.WriteString("ACCOUNTS\n")
	out.WriteString(fmt.Sprintf("  🏢 %d accounts  ARR %s  ✅ %d transformation-ready\n",
		stats.TotalAccounts, FormatMoney(stats.TotalARR), stats.ReadyAccounts))
	for _, status := range models.AccountStatuses() {
		out.WriteString(fmt.Sprintf("  %-10s %d\n", status, stats.AccountsByStatus[status]))
	}
	out.WriteString("\n")

	out.WriteString("PORTFOLIO\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  🎯 %d initiatives (avg %.0f%% complete)\n\n",
		stats.TotalContacts, stats.TotalInitiatives, stats.AverageProgress))

	if len(stats.AtRisk) > 0 || len(stats.StaleDeals) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if len(stats.AtRisk) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d at-risk accounts: %s\n", len(stats.AtRisk), strings.Join(stats.AtRisk, ", ")))
		}
		if len(stats.StaleDeals) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d opportunities - stale (no update in 14+ days)\n", len(stats.StaleDeals)))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, summary models.PipelineSummary) {
	maxCount := 0
	for _, st := range summary.ByStage {
		if st.Count > maxCount {
			maxCount = st.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, st := range summary.ByStage {
		// 0-10 blocks
		barLength := (st.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-21s %s  %2d (%s)\n", st.Stage, bar, st.Count, FormatMoney(st.Value)))
	}
}

// FormatMoney renders a dollar amount compactly: $950, $12.5K, $1.16M.
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%s$%sM", sign, trimZeros(fmt.Sprintf("%.2f", v/1_000_000)))
	case v >= 1_000:
		return fmt.Sprintf("%s$%sK", sign, trimZeros(fmt.Sprintf("%.1f", v/1_000)))
	}
	return fmt.Sprintf("%s$%.0f", sign, v)
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
