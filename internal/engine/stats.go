package engine

import "github.com/me/gosched/pkg/model"

// ComputeJobStats derives per-job timing from a run's timeline. Events are
// matched to jobs by Index; the result follows the order of jobs.
func ComputeJobStats(jobs []*model.Job, events []model.Event) []model.JobStats {
	stats := make([]model.JobStats, len(jobs))
	pos := make(map[int]int, len(jobs))
	for i, j := range jobs {
		stats[i] = model.JobStats{
			Index:    j.Index,
			Name:     j.Name,
			Arrival:  j.Arrival,
			Burst:    j.Burst,
			Priority: j.Priority,
		}
		pos[j.Index] = i
	}

	for _, ev := range events {
		i, ok := pos[ev.JobIndex]
		if ev.Kind != model.EventDispatch || !ok {
			continue
		}
		s := &stats[i]
		if s.Slices == 0 {
			s.FirstStart = ev.Start
		}
		s.Slices++
		s.Completion = ev.End
	}

	for i := range stats {
		s := &stats[i]
		s.Turnaround = s.Completion - s.Arrival
		s.Waiting = s.Turnaround - s.Burst
		s.Response = s.FirstStart - s.Arrival
	}
	return stats
}

// Summarize computes the footer statistic. Non-preemptive policies report the
// mean of (dispatch start - arrival); Round-Robin reports the final clock.
func Summarize(kind model.PolicyKind, stats []model.JobStats, clock int) model.Summary {
	if kind.Preemptive() {
		return model.Summary{Label: model.LabelTotalTurnaround, Value: float64(clock), Integer: true}
	}

	s := model.Summary{Label: model.LabelAverageWaiting}
	if len(stats) == 0 {
		return s
	}
	total := 0
	for _, js := range stats {
		total += js.FirstStart - js.Arrival
	}
	s.Value = float64(total) / float64(len(stats))
	return s
}
