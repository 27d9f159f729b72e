package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"sortline/internal/figure"
	"sortline/internal/journal"
	"sortline/internal/linerun"
	"sortline/internal/queue"
	"sortline/internal/workflow"
)

type outcomeJSON struct {
	ItemID     int64   `json:"item_id"`
	RequestID  string  `json:"request_id,omitempty"`
	Kind       string  `json:"kind"`
	Status     string  `json:"status"`
	Stage      string  `json:"stage,omitempty"`
	TargetX    float64 `json:"target_x,omitempty"`
	Count      int     `json:"count,omitempty"`
	ErrorKind  string  `json:"error_kind,omitempty"`
	Error      string  `json:"error,omitempty"`
	DroppedMS  int64   `json:"dropped_ms"`
	FinishedMS int64   `json:"finished_ms"`
}

type pendingJSON struct {
	ID     int64  `json:"id"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
	Stage  string `json:"stage,omitempty"`
}

type runJSON struct {
	State      string         `json:"state"`
	Runs       int            `json:"runs"`
	Sorted     int            `json:"sorted"`
	Failed     int            `json:"failed"`
	LineTimeMS int64          `json:"line_time_ms"`
	LastError  string         `json:"last_error,omitempty"`
	Counters   map[string]int `json:"counters"`
	Pending    []pendingJSON  `json:"pending,omitempty"`
	Outcomes   []outcomeJSON  `json:"outcomes"`
}

func newRunJSON(report linerun.Report) runJSON {
	status := report.Status
	result := runJSON{
		State:      string(status.State),
		Runs:       status.Runs,
		Sorted:     status.Completed,
		Failed:     status.Failed,
		LineTimeMS: report.Elapsed.Milliseconds(),
		LastError:  status.LastError,
		Counters:   make(map[string]int, len(status.Counters)),
		Outcomes:   make([]outcomeJSON, 0, len(report.Entries)),
	}
	for kind, count := range status.Counters {
		result.Counters[kind.String()] = count
	}
	for _, item := range status.Queue {
		result.Pending = append(result.Pending, pendingJSON{
			ID:     item.ID,
			Kind:   item.Kind.String(),
			Status: string(item.Status),
			Stage:  item.Stage,
		})
	}
	for _, entry := range report.Entries {
		result.Outcomes = append(result.Outcomes, outcomeJSON{
			ItemID:     entry.ItemID,
			RequestID:  entry.RequestID,
			Kind:       entry.Kind.String(),
			Status:     string(entry.Status),
			Stage:      entry.Stage,
			TargetX:    entry.TargetX,
			Count:      entry.CounterValue,
			ErrorKind:  entry.ErrorKind,
			Error:      entry.ErrorMessage,
			DroppedMS:  entry.DroppedAt.Milliseconds(),
			FinishedMS: entry.FinishedAt.Milliseconds(),
		})
	}
	return result
}

func renderReport(report linerun.Report, showJournal, colorize bool) string {
	status := report.Status
	var b strings.Builder

	writeLines(&b, renderSectionHeader("Line", colorize)...)
	writeLines(&b,
		renderStatusLine("State", lineStateKind(status.State), string(status.State), colorize),
		renderStatusLine("Sorted", statusInfo, strconv.Itoa(status.Completed), colorize),
		renderStatusLine("Failed", failedKind(status.Failed), strconv.Itoa(status.Failed), colorize),
		renderStatusLine("Line time", statusInfo, formatLineTime(report.Elapsed), colorize),
	)
	if status.LastError != "" {
		writeLines(&b, renderStatusLine("Last error", statusError, status.LastError, colorize))
	}
	for _, name := range slices.Sorted(maps.Keys(status.StageHealth)) {
		health := status.StageHealth[name]
		message := "ready"
		if health.Detail != "" {
			message = health.Detail
		}
		writeLines(&b, renderStatusLine("Stage "+name, healthKind(health), message, colorize))
	}

	b.WriteString("\n")
	writeLines(&b, renderSectionHeader("Counters", colorize)...)
	writeLines(&b, renderCounters(status.Counters))

	if len(report.Summary) > 0 {
		b.WriteString("\n")
		writeLines(&b, renderSectionHeader("Outcomes by kind", colorize)...)
		writeLines(&b, renderKindSummary(report.Summary))
	}

	if len(status.Queue) > 0 {
		b.WriteString("\n")
		writeLines(&b, renderSectionHeader("Still queued", colorize)...)
		writeLines(&b, renderPending(status.Queue))
	}

	if showJournal && len(report.Entries) > 0 {
		b.WriteString("\n")
		writeLines(&b, renderSectionHeader("Journal", colorize)...)
		writeLines(&b, renderJournal(report.Entries))
	}
	return b.String()
}

func renderCounters(counts map[figure.Kind]int) string {
	kinds := figure.Kinds()
	for _, kind := range slices.Sorted(maps.Keys(counts)) {
		if !slices.Contains(kinds, kind) {
			kinds = append(kinds, kind)
		}
	}
	rows := make([][]string, 0, len(kinds))
	total := 0
	for _, kind := range kinds {
		total += counts[kind]
		rows = append(rows, []string{kind.Label(), strconv.Itoa(counts[kind])})
	}
	return renderTable(tableSpec{
		headers: []string{"Kind", "Sorted"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignRight},
		footer:  []string{"Total", strconv.Itoa(total)},
	})
}

func renderKindSummary(summary []journal.KindSummary) string {
	rows := make([][]string, 0, len(summary))
	for _, s := range summary {
		rows = append(rows, []string{
			s.Kind.Label(),
			strconv.Itoa(s.Sorted),
			strconv.Itoa(s.Failed),
			formatLineTime(s.AvgDuration),
		})
	}
	return renderTable(tableSpec{
		headers: []string{"Kind", "Sorted", "Failed", "Avg time"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	})
}

func renderPending(items []queue.Item) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			item.Kind.Label(),
			workflow.StatusLabel(item.Status),
			item.Stage,
		})
	}
	return renderTable(tableSpec{
		headers: []string{"#", "Kind", "Status", "Stage"},
		rows:    rows,
		aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	})
}

func renderJournal(entries []journal.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		count := ""
		if e.CounterValue > 0 {
			count = strconv.Itoa(e.CounterValue)
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ItemID, 10),
			e.Kind.Label(),
			workflow.StatusLabel(e.Status),
			e.Stage,
			formatOffset(e.TargetX),
			count,
			formatLineTime(e.Duration()),
			e.ErrorMessage,
		})
	}
	return renderTable(tableSpec{
		headers: []string{"#", "Kind", "Status", "Stage", "Target", "Count", "Time", "Error"},
		rows:    rows,
		aligns: []columnAlignment{
			alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft,
		},
	})
}

func failedKind(failed int) statusKind {
	if failed > 0 {
		return statusWarn
	}
	return statusOK
}

func formatLineTime(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

func writeLines(b *strings.Builder, lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(b, line)
	}
}
