package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sortline/internal/logging"
)

func decodeRunJSON(t *testing.T, out string) runJSON {
	t.Helper()
	var report runJSON
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	return report
}

func TestRunSortsEveryKind(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--instant", "circle", "square", "triangle"}, env.configPath, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "== Line ==")
	requireContains(t, out, "[OK] idle")
	requireContains(t, out, "[INFO] 3")
	requireContains(t, out, "== Counters ==")
	requireContains(t, out, "Triangle")
	requireContains(t, out, "Outcomes by kind")
}

func TestRunJSONReport(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--instant", "--json", "circle", "circle"}, env.configPath, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	report := decodeRunJSON(t, out)
	if report.State != "idle" || report.Sorted != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Counters["circle"] != 2 {
		t.Fatalf("expected circle counter 2, got %v", report.Counters)
	}
	if len(report.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(report.Outcomes))
	}
	first := report.Outcomes[0]
	if first.Status != "sorted" || first.TargetX != 370 || first.Count != 1 {
		t.Fatalf("unexpected first outcome %+v", first)
	}
	if got := first.FinishedMS - first.DroppedMS; got != 6680 {
		t.Fatalf("expected first figure to take 6680ms, got %d", got)
	}
	if report.Outcomes[1].Count != 2 {
		t.Fatalf("expected second outcome count 2, got %+v", report.Outcomes[1])
	}
	if first.RequestID == "" || first.RequestID == report.Outcomes[1].RequestID {
		t.Fatalf("expected distinct request ids, got %q and %q", first.RequestID, report.Outcomes[1].RequestID)
	}
}

func TestRunHaltsOnUnknownKind(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--instant", "hexagon", "circle"}, env.configPath, nil)
	if err == nil {
		t.Fatal("expected halted run to fail")
	}
	requireContains(t, err.Error(), "line halted")
	requireContains(t, out, "[ERROR] halted")
	requireContains(t, out, "Still queued")
	requireContains(t, out, "Hexagon")
}

func TestRunSkipPolicyContinues(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--instant", "--json", "--on-failure", "skip", "hexagon", "circle"}, env.configPath, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	report := decodeRunJSON(t, out)
	if report.Sorted != 1 || report.Failed != 1 || report.State != "idle" {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Pending) != 0 {
		t.Fatalf("expected empty queue, got %+v", report.Pending)
	}
	failed := report.Outcomes[0]
	if failed.Kind != "hexagon" || failed.Status != "failed" || failed.Error == "" {
		t.Fatalf("unexpected failed outcome %+v", failed)
	}
}

func TestRunJournalTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--instant", "--journal", "square"}, env.configPath, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "== Journal ==")
	requireContains(t, out, "130")
	requireContains(t, out, "6.68s")
}

func TestRunRejectsBadOverrides(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"run", "--instant"}, env.configPath, nil); err == nil {
		t.Fatal("expected missing kinds to fail")
	}
	_, _, err := runCLI(t, []string{"run", "--instant", "--on-failure", "retry", "circle"}, env.configPath, nil)
	if err == nil || !strings.Contains(err.Error(), "workflow.on_failure") {
		t.Fatalf("expected on_failure validation error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"run", "--instant", "--display", "window", "circle"}, env.configPath, nil)
	if err == nil || !strings.Contains(err.Error(), "display.mode") {
		t.Fatalf("expected display.mode validation error, got %v", err)
	}
}

func TestRunTerminalDisplayWritesFrames(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--instant", "--display", "terminal", "circle"}, env.configPath, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	frames, _, found := strings.Cut(out, "== Line ==")
	if !found || frames == "" {
		t.Fatalf("expected frames before the report, got:\n%s", out)
	}
	requireContains(t, frames, "claw  370")
	requireContains(t, frames, "Circle 1")
}

func TestPlayReadsEventsFromStdin(t *testing.T) {
	env := setupCLITestEnv(t)

	events := strings.NewReader(strings.Join([]string{
		"# one figure dragged the long way, one by shorthand",
		"dragstart circle",
		"dragover",
		"drop circle",
		"dragend circle",
		"",
		"square",
	}, "\n"))
	out, _, err := runCLI(t, []string{"play", "--instant", "--json"}, env.configPath, events)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	report := decodeRunJSON(t, out)
	if report.Sorted != 2 || report.Counters["circle"] != 1 || report.Counters["square"] != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestPlayReadsEventsFromFile(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeTestFile(t, env.baseDir, "events.txt", "triangle\ntriangle\n")

	out, _, err := runCLI(t, []string{"play", "--instant", "--json", "--file", path}, env.configPath, nil)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	report := decodeRunJSON(t, out)
	if report.Counters["triangle"] != 2 {
		t.Fatalf("expected two triangles, got %+v", report.Counters)
	}
}

func TestRunLogDisplayTagsEachRecordOnce(t *testing.T) {
	env := setupCLITestEnv(t)
	logDir := filepath.Join(env.baseDir, "logs")
	cfgPath := writeTestFile(t, env.baseDir, "log-display.toml", fmt.Sprintf(`
[workflow]
speed = 0

[display]
mode = "log"

[logging]
level = "info"
dir = %q
`, logDir))

	if _, _, err := runCLI(t, []string{"run", "--instant", "circle"}, cfgPath, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(logDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	displayLines := 0
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if n := strings.Count(line, `"component":`); n > 1 {
			t.Fatalf("expected one component key, got %d in %s", n, line)
		}
		if strings.Contains(line, `"component":"display"`) {
			displayLines++
		}
	}
	if displayLines == 0 {
		t.Fatalf("expected display events in the log file:\n%s", data)
	}
}

func TestRunHaltsWhenConfigOmitsBin(t *testing.T) {
	env := setupCLITestEnv(t)
	cfgPath := writeTestFile(t, env.baseDir, "two-bins.toml", testConfig+`
[layout.bins.circle]
left = 340
width = 120

[layout.bins.square]
left = 100
width = 120
`)

	out, _, err := runCLI(t, []string{"run", "--instant", "--json", "triangle"}, cfgPath, nil)
	if err == nil || !strings.Contains(err.Error(), "line halted") {
		t.Fatalf("expected halted line, got %v", err)
	}
	report := decodeRunJSON(t, out)
	if report.Failed != 1 || len(report.Outcomes) != 1 || report.Outcomes[0].Stage != "transfer" {
		t.Fatalf("expected a transfer failure, got %+v", report)
	}
}
