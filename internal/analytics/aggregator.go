// Package analytics computes the clinic dashboard report from a queue
// snapshot. It is a pure function of its inputs: no clock reads, no
// database access, no randomness. The services layer takes the snapshot
// and the trailing completed-visit count, and this package turns them into
// the metric cards, hourly traffic buckets, and diagnosis breakdown the
// dashboard renders.
package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lyflify/go-triage-backend/internal/domain"
)

// Metric is one dashboard stat card.
type Metric struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Change string `json:"change"`
	Type   string `json:"type"`
}

// HourBucket is one bar of the hourly traffic chart.
type HourBucket struct {
	Hour     string `json:"hour"`
	Patients int    `json:"patients"`
}

// DiagnosisSlice is one slice of the diagnosis breakdown donut.
type DiagnosisSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Report is the full dashboard payload plus the raw numbers the insight
// generator consumes.
type Report struct {
	Metrics       []Metric         `json:"metrics"`
	HourlyTraffic []HourBucket     `json:"hourly_traffic"`
	DiagnosisData []DiagnosisSlice `json:"diagnosis_data"`

	ActiveQueue    int    `json:"active_queue"`
	CriticalCases  int    `json:"critical_cases"`
	DelayedCount   int    `json:"delayed_count"`
	AvgWaitMinutes int    `json:"avg_wait_minutes"`
	EfficiencyPct  int    `json:"efficiency_pct"`
	BusiestHour    string `json:"busiest_hour"`
	TopCategory    string `json:"top_category"`
}

// Clinic operating hours for the traffic chart, inclusive.
const (
	openHour  = 8
	closeHour = 17
)

// Donut slice colors, matched to the triage band palette.
var bandColors = map[domain.ColorCode]string{
	domain.ColorRed:    "#ef4444",
	domain.ColorOrange: "#f97316",
	domain.ColorGreen:  "#94a3b8",
}

const noDataColor = "#f1f5f9"

// Aggregate builds the dashboard report from the active ticket snapshot and
// the number of visits completed in the trailing analytics window. The
// tickets slice must contain only non-terminal tickets; callers pass the
// repo's active list unmodified.
func Aggregate(tickets []domain.Ticket, completedInWindow int) Report {
	r := Report{
		ActiveQueue: len(tickets),
	}

	byHour := make(map[int]int)
	byBand := make(map[domain.ColorCode]int)
	byCategory := make(map[string]int)
	for _, t := range tickets {
		if t.Urgent || t.UrgencyScore >= domain.CriticalScore {
			r.CriticalCases++
		}
		if t.Status == domain.StatusDelayed {
			r.DelayedCount++
		}
		h := t.CreatedAt.Hour()
		if h >= openHour && h <= closeHour {
			byHour[h]++
		}
		byBand[t.ColorCode]++
		if t.Category != "" {
			byCategory[t.Category]++
		}
	}

	r.AvgWaitMinutes = avgWait(len(tickets))
	r.EfficiencyPct = efficiency(completedInWindow, len(tickets))
	r.HourlyTraffic, r.BusiestHour = hourlyTraffic(byHour)
	r.DiagnosisData = diagnosisData(byBand)
	r.TopCategory = topCategory(byCategory)
	r.Metrics = metricCards(r)
	return r
}

// avgWait estimates the mean wait across queue positions at 15 minutes per
// position: position i waits i*15, so the mean over n positions is
// 15*(n+1)/2.
func avgWait(active int) int {
	if active == 0 {
		return 0
	}
	return int(math.Round(15 * float64(active+1) / 2))
}

// efficiency is completed visits as a share of everything seen in the
// window. An idle clinic with nothing pending reads as fully efficient.
func efficiency(completed, active int) int {
	denom := completed + active
	if denom == 0 {
		return 100
	}
	return int(math.Round(100 * float64(completed) / float64(denom)))
}

func hourlyTraffic(byHour map[int]int) ([]HourBucket, string) {
	buckets := make([]HourBucket, 0, closeHour-openHour+1)
	busiest := ""
	best := 0
	for h := openHour; h <= closeHour; h++ {
		label := fmt.Sprintf("%02d:00", h)
		n := byHour[h]
		buckets = append(buckets, HourBucket{Hour: label, Patients: n})
		if n > best {
			best = n
			busiest = label
		}
	}
	return buckets, busiest
}

func diagnosisData(byBand map[domain.ColorCode]int) []DiagnosisSlice {
	var out []DiagnosisSlice
	for _, band := range []struct {
		code domain.ColorCode
		name string
	}{
		{domain.ColorRed, "Critical"},
		{domain.ColorOrange, "Moderate"},
		{domain.ColorGreen, "Routine"},
	} {
		if n := byBand[band.code]; n > 0 {
			out = append(out, DiagnosisSlice{Name: band.name, Value: n, Color: bandColors[band.code]})
		}
	}
	if len(out) == 0 {
		out = append(out, DiagnosisSlice{Name: "No Data", Value: 1, Color: noDataColor})
	}
	return out
}

// topCategory picks the most frequent category; ties break alphabetically
// so the report is stable across runs.
func topCategory(byCategory map[string]int) string {
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	top := ""
	best := 0
	for _, name := range names {
		if byCategory[name] > best {
			best = byCategory[name]
			top = name
		}
	}
	return top
}

func metricCards(r Report) []Metric {
	critType := "positive"
	critChange := "stable"
	if r.CriticalCases > 0 {
		critType = "negative"
		critChange = fmt.Sprintf("%d urgent", r.CriticalCases)
	}
	waitType := "positive"
	if r.AvgWaitMinutes > 45 {
		waitType = "negative"
	}
	effType := "positive"
	if r.EfficiencyPct < 50 {
		effType = "negative"
	}
	queueChange := "quiet"
	if r.DelayedCount > 0 {
		queueChange = fmt.Sprintf("%d delayed", r.DelayedCount)
	} else if r.ActiveQueue > 0 {
		queueChange = "steady"
	}
	return []Metric{
		{Label: "Active Queue", Value: fmt.Sprintf("%d", r.ActiveQueue), Change: queueChange, Type: "neutral"},
		{Label: "Critical Cases", Value: fmt.Sprintf("%d", r.CriticalCases), Change: critChange, Type: critType},
		{Label: "Avg. Wait Time", Value: fmt.Sprintf("%d min", r.AvgWaitMinutes), Change: "estimated", Type: waitType},
		{Label: "Efficiency", Value: fmt.Sprintf("%d%%", r.EfficiencyPct), Change: "trailing window", Type: effType},
	}
}
