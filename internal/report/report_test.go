package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/me/gosched/pkg/model"
)

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		ev   model.Event
		want string
	}{
		{model.Event{Kind: model.EventIdle, Start: 0, End: 3}, "0 → 3: Idle."},
		{model.Event{Kind: model.EventDispatch, Start: 3, End: 5, JobName: "A", Description: "compile"}, "3 → 5: A running compile."},
	}
	for _, tt := range tests {
		if got := FormatEvent(tt.ev); got != tt.want {
			t.Errorf("FormatEvent(%+v) = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	if got := FormatValue(model.Summary{Value: 2}); got != "2.00" {
		t.Errorf("average = %q, want 2.00", got)
	}
	if got := FormatValue(model.Summary{Value: 1.0 / 3}); got != "0.33" {
		t.Errorf("average = %q, want 0.33", got)
	}
	if got := FormatValue(model.Summary{Value: 8, Integer: true}); got != "8" {
		t.Errorf("total = %q, want 8", got)
	}
}

func TestHeaderAndFooter(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.Header(model.PolicyFCFS)
	r.Event(model.Event{Kind: model.EventDispatch, Start: 0, End: 5, JobName: "A", Description: "d"})
	r.Event(model.Event{Kind: model.EventDispatch, Start: 5, End: 8, JobName: "B", Description: "d"})
	r.Footer(model.Summary{Label: model.LabelAverageWaiting, Value: 2})

	want := strings.Join([]string{
		"══════════════════════════════════════════════",
		">> Scheduler Mode : FCFS",
		">> Engine Status  : Initialized",
		"──────────────────────────────────────────────",
		"",
		"0 → 5: A running d.",
		"5 → 8: B running d.",
		"",
		"──────────────────────────────────────────────",
		">> Engine Status  : Completed",
		">> Summary        :",
		"   └─ Average Waiting Time : 2.00 time units",
		">> End of Report",
		"══════════════════════════════════════════════",
		"",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("report mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFooter_RoundRobin(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Footer(model.Summary{Label: model.LabelTotalTurnaround, Value: 8, Integer: true})
	if !strings.Contains(buf.String(), "   └─ Total Turnaround Time : 8 time units\n") {
		t.Errorf("footer = %q", buf.String())
	}
}

func TestHeader_RoundRobinName(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Header(model.PolicyRR)
	if !strings.Contains(buf.String(), ">> Scheduler Mode : Round Robin\n") {
		t.Errorf("header = %q", buf.String())
	}
}

func TestJobTable(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).JobTable([]model.JobStats{
		{Name: "A", Arrival: 0, Burst: 5, Priority: 1, FirstStart: 0, Completion: 5, Waiting: 0, Turnaround: 5, Response: 0, Slices: 1},
		{Name: "B", Arrival: 1, Burst: 3, Priority: 2, FirstStart: 5, Completion: 8, Waiting: 4, Turnaround: 7, Response: 4, Slices: 1},
	})
	out := buf.String()
	for _, want := range []string{"Turnaround", "Average", "2.00", "6.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestJobTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).JobTable(nil)
	if buf.Len() != 0 {
		t.Errorf("empty stats wrote %q", buf.String())
	}
}

func TestWorkload(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Workload([]model.Job{
		{Index: 0, Name: "A", Description: "compile", Arrival: 0, Burst: 5, Priority: 1},
		{Index: 1, Name: "B", Description: "link", Arrival: 1, Burst: 3, Priority: 2},
	})
	out := buf.String()
	for _, want := range []string{"Description", "compile", "link", "2 jobs", "Total", "8"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_Replay(t *testing.T) {
	res := &model.RunResult{
		Policy: model.PolicyFCFS,
		Events: []model.Event{
			{Kind: model.EventIdle, Start: 0, End: 3},
			{Kind: model.EventDispatch, Start: 3, End: 5, JobName: "A", Description: "d"},
		},
		Summary: model.Summary{Label: model.LabelAverageWaiting, Value: 0},
		Jobs:    []model.JobStats{{Name: "A", Arrival: 3, Burst: 2, FirstStart: 3, Completion: 5, Turnaround: 2, Slices: 1}},
	}

	var plain, withStats bytes.Buffer
	New(&plain).Run(res, false)
	New(&withStats).Run(res, true)

	for _, want := range []string{">> Scheduler Mode : FCFS", "0 → 3: Idle.", "3 → 5: A running d.", "Average Waiting Time : 0.00 time units"} {
		if !strings.Contains(plain.String(), want) {
			t.Errorf("replay missing %q", want)
		}
	}
	if strings.Contains(plain.String(), "Turnaround") {
		t.Error("stats table printed without being requested")
	}
	if !strings.Contains(withStats.String(), "Turnaround") {
		t.Error("stats table missing")
	}
}
