package triage

import "fmt"

// InsightInput carries the rollup metrics the dashboard submits for
// narrative summarization.
type InsightInput struct {
	ActiveQueue    int
	CriticalCases  int
	AvgWaitMinutes int
	EfficiencyPct  int
	DelayedCount   int
	BusiestHour    string
	TopCategory    string
}

// Insights turns metric rollups into short narrative strings for the
// analytics page. Generation is template-based and deterministic; the same
// metrics always produce the same sentences, in the same order.
func Insights(in InsightInput) []string {
	var out []string

	switch {
	case in.ActiveQueue == 0:
		out = append(out, "The queue is empty right now. A quiet moment is a good time to catch up on records.")
	case in.ActiveQueue >= 15:
		out = append(out, fmt.Sprintf("The queue is heavy with %d active patients. Consider opening a second consultation room.", in.ActiveQueue))
	default:
		out = append(out, fmt.Sprintf("There are %d patients in the active queue.", in.ActiveQueue))
	}

	if in.CriticalCases > 0 {
		out = append(out, fmt.Sprintf("%d critical case(s) need immediate attention. Emergency patients are listed first in the queue.", in.CriticalCases))
	}

	switch {
	case in.AvgWaitMinutes >= 60:
		out = append(out, fmt.Sprintf("Average wait is %d minutes, which is above the one-hour mark. Patients have been notified of delays.", in.AvgWaitMinutes))
	case in.AvgWaitMinutes >= 30:
		out = append(out, fmt.Sprintf("Average wait is %d minutes. Keep an eye on the routine queue.", in.AvgWaitMinutes))
	}

	if in.DelayedCount > 0 {
		out = append(out, fmt.Sprintf("%d appointment(s) are running late. Each delay lowers the efficiency score.", in.DelayedCount))
	}

	if in.EfficiencyPct > 0 && in.EfficiencyPct < 70 {
		out = append(out, fmt.Sprintf("Efficiency is at %d%%. Clearing delayed appointments will bring it back up.", in.EfficiencyPct))
	}

	if in.BusiestHour != "" {
		out = append(out, fmt.Sprintf("The busiest arrival window today is around %s.", in.BusiestHour))
	}
	if in.TopCategory != "" && in.TopCategory != "No Data" {
		out = append(out, fmt.Sprintf("Most presentations today fall under %s.", in.TopCategory))
	}

	if len(out) == 0 {
		out = append(out, "Not enough data yet to generate insights.")
	}
	return out
}
