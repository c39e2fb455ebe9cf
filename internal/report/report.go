// Package report renders a run's timeline and summary as plain text.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/me/gosched/pkg/model"
	"github.com/olekukonko/tablewriter"
)

var (
	heavyRule = strings.Repeat("═", 46)
	lightRule = strings.Repeat("─", 46)
)

// Reporter writes report sections to w. It only observes a run.
type Reporter struct {
	w io.Writer
}

// New creates a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Header prints the boxed banner opening a policy run.
func (r *Reporter) Header(kind model.PolicyKind) {
	fmt.Fprintln(r.w, heavyRule)
	fmt.Fprintf(r.w, ">> Scheduler Mode : %s\n", kind.DisplayName())
	fmt.Fprintln(r.w, ">> Engine Status  : Initialized")
	fmt.Fprintln(r.w, lightRule)
	fmt.Fprintln(r.w)
}

// Event prints one timeline line.
func (r *Reporter) Event(ev model.Event) {
	fmt.Fprintln(r.w, FormatEvent(ev))
}

// Footer prints the boxed summary closing a policy run.
func (r *Reporter) Footer(s model.Summary) {
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, lightRule)
	fmt.Fprintln(r.w, ">> Engine Status  : Completed")
	fmt.Fprintln(r.w, ">> Summary        :")
	fmt.Fprintf(r.w, "   └─ %s : %s time units\n", s.Label, FormatValue(s))
	fmt.Fprintln(r.w, ">> End of Report")
	fmt.Fprintln(r.w, heavyRule)
	fmt.Fprintln(r.w)
}

// JobTable prints per-job statistics with averages in the footer.
func (r *Reporter) JobTable(stats []model.JobStats) {
	if len(stats) == 0 {
		return
	}

	rows := make([][]string, len(stats))
	var waiting, turnaround, response int
	for i, s := range stats {
		rows[i] = []string{
			s.Name,
			strconv.Itoa(s.Arrival),
			strconv.Itoa(s.Burst),
			strconv.Itoa(s.Priority),
			strconv.Itoa(s.FirstStart),
			strconv.Itoa(s.Completion),
			strconv.Itoa(s.Waiting),
			strconv.Itoa(s.Turnaround),
			strconv.Itoa(s.Response),
			strconv.Itoa(s.Slices),
		}
		waiting += s.Waiting
		turnaround += s.Turnaround
		response += s.Response
	}
	n := float64(len(stats))

	table := tablewriter.NewWriter(r.w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Job", "Arrival", "Burst", "Priority", "First Start", "Completion", "Waiting", "Turnaround", "Response", "Slices"})
	table.AppendBulk(rows)
	table.SetFooter([]string{"", "", "", "", "", "Average",
		fmt.Sprintf("%.2f", float64(waiting)/n),
		fmt.Sprintf("%.2f", float64(turnaround)/n),
		fmt.Sprintf("%.2f", float64(response)/n),
		""})
	table.Render()
	fmt.Fprintln(r.w)
}

// Workload prints the jobs of a loaded workload in input order.
func (r *Reporter) Workload(jobs []model.Job) {
	table := tablewriter.NewWriter(r.w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"#", "Job", "Description", "Arrival", "Burst", "Priority"})
	total := 0
	for _, j := range jobs {
		table.Append([]string{
			strconv.Itoa(j.Index),
			j.Name,
			j.Description,
			strconv.Itoa(j.Arrival),
			strconv.Itoa(j.Burst),
			strconv.Itoa(j.Priority),
		})
		total += j.Burst
	}
	table.SetFooter([]string{"", fmt.Sprintf("%d jobs", len(jobs)), "", "Total", strconv.Itoa(total), ""})
	table.Render()
}

// Run prints a complete run: header, timeline, footer and, when withStats is
// set, the per-job table. Used to replay stored runs.
func (r *Reporter) Run(res *model.RunResult, withStats bool) {
	r.Header(res.Policy)
	for _, ev := range res.Events {
		r.Event(ev)
	}
	r.Footer(res.Summary)
	if withStats {
		r.JobTable(res.Jobs)
	}
}

// FormatEvent renders a timeline entry, e.g. "0 → 5: A running compile." or
// "0 → 3: Idle.".
func FormatEvent(ev model.Event) string {
	if ev.Kind == model.EventIdle {
		return fmt.Sprintf("%d → %d: Idle.", ev.Start, ev.End)
	}
	return fmt.Sprintf("%d → %d: %s running %s.", ev.Start, ev.End, ev.JobName, ev.Description)
}

// FormatValue renders a summary value: integers as is, averages with two
// decimals.
func FormatValue(s model.Summary) string {
	if s.Integer {
		return strconv.Itoa(int(s.Value))
	}
	return fmt.Sprintf("%.2f", s.Value)
}
