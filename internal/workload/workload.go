// Package workload reads job tables into ordered Job templates.
package workload

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/me/gosched/internal/logging"
	"github.com/me/gosched/pkg/model"
	"gopkg.in/yaml.v3"
)

// DefaultMaxJobs is the job cap used when Options.MaxJobs is unset.
const DefaultMaxJobs = 1000

// fieldCount is the number of columns in a job line:
// name,description,arrival,burst,priority.
const fieldCount = 5

// MaxTimeValue bounds arrival and burst so clock arithmetic cannot overflow
// even when every job in a capped workload uses the maximum.
const MaxTimeValue = 1 << 30

const maxLineBytes = 1 << 20

// Options controls how a workload is read.
type Options struct {
	MaxJobs int // Jobs beyond this count are dropped; <= 0 means DefaultMaxJobs
	Logger  *slog.Logger
}

func (o Options) maxJobs() int {
	if o.MaxJobs <= 0 {
		return DefaultMaxJobs
	}
	return o.MaxJobs
}

// LoadFile reads the workload at path. Files ending in .yaml or .yml are
// decoded as a YAML list of jobs; everything else is parsed as CSV.
// Failing to open the file is fatal; malformed records are skipped.
func LoadFile(path string, opts Options) ([]model.Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load workload %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		jobs, err := ParseYAML(f, opts)
		if err != nil {
			return nil, fmt.Errorf("load workload %s: %w", path, err)
		}
		return jobs, nil
	default:
		jobs, err := Parse(f, opts)
		if err != nil {
			return nil, fmt.Errorf("load workload %s: %w", path, err)
		}
		return jobs, nil
	}
}

// Parse reads CSV job lines from r. There is no header row. Lines with fewer
// than five fields, non-integer numbers or out-of-range arrival/burst values
// are logged and skipped. Each line is split on its own, so a stray quote never
// swallows the lines after it. Input order becomes each job's Index.
func Parse(r io.Reader, opts Options) ([]model.Job, error) {
	logger := logging.OrDiscard(opts.Logger).With("component", "workload")
	limit := opts.maxJobs()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var jobs []model.Job
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		record, err := splitLine(text)
		if err != nil {
			logger.Warn("skipping malformed line", "line", line, "reason", err.Error())
			continue
		}
		job, err := parseRecord(record)
		if err != nil {
			logger.Warn("skipping malformed line", "line", line, "reason", err.Error())
			continue
		}
		if len(jobs) == limit {
			logger.Warn("workload truncated", "max_jobs", limit, "first_dropped_line", line)
			break
		}
		job.Index = len(jobs)
		jobs = append(jobs, job)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read workload line %d: %w", line+1, err)
	}

	logger.Debug("workload parsed", "jobs", len(jobs))
	return jobs, nil
}

// splitLine parses a single CSV record. Quoted fields may contain commas but
// cannot span lines.
func splitLine(text string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	record, err := cr.Read()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, pe.Err
		}
		return nil, err
	}
	return record, nil
}

func parseRecord(record []string) (model.Job, error) {
	if len(record) < fieldCount {
		return model.Job{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(record))
	}

	var nums [3]int
	for i, name := range []string{"arrival", "burst", "priority"} {
		v, err := strconv.Atoi(strings.TrimSpace(record[2+i]))
		if err != nil {
			return model.Job{}, fmt.Errorf("%s: %q is not an integer", name, record[2+i])
		}
		nums[i] = v
	}

	job := model.Job{
		Name:        strings.TrimSpace(record[0]),
		Description: strings.TrimSpace(record[1]),
		Arrival:     nums[0],
		Burst:       nums[1],
		Priority:    nums[2],
	}
	if err := validate(job); err != nil {
		return model.Job{}, err
	}
	return job, nil
}

func validate(job model.Job) error {
	if job.Name == "" {
		return errors.New("name is empty")
	}
	if job.Arrival < 0 {
		return fmt.Errorf("arrival %d is negative", job.Arrival)
	}
	if job.Arrival > MaxTimeValue {
		return fmt.Errorf("arrival %d exceeds %d", job.Arrival, MaxTimeValue)
	}
	if job.Burst < 0 {
		return fmt.Errorf("burst %d is negative", job.Burst)
	}
	if job.Burst > MaxTimeValue {
		return fmt.Errorf("burst %d exceeds %d", job.Burst, MaxTimeValue)
	}
	return nil
}

// ParseYAML reads a YAML sequence of jobs:
//
//   - name: A
//     description: compile
//     arrival: 0
//     burst: 5
//     priority: 1
//
// Entries failing validation are skipped the same way malformed CSV lines are.
func ParseYAML(r io.Reader, opts Options) ([]model.Job, error) {
	logger := logging.OrDiscard(opts.Logger).With("component", "workload")
	limit := opts.maxJobs()

	var raw []model.Job
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml workload: %w", err)
	}

	var jobs []model.Job
	for i, job := range raw {
		job.Name = strings.TrimSpace(job.Name)
		job.Description = strings.TrimSpace(job.Description)
		if err := validate(job); err != nil {
			logger.Warn("skipping malformed entry", "entry", i, "reason", err.Error())
			continue
		}
		if len(jobs) == limit {
			logger.Warn("workload truncated", "max_jobs", limit, "first_dropped_entry", i)
			break
		}
		job.Index = len(jobs)
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// FromTemplates re-indexes jobs built in code (e.g. from an API request) and
// applies the same validation as the file parsers. The returned slice lists
// the rejected entries' reasons.
func FromTemplates(in []model.Job, maxJobs int) ([]model.Job, []string) {
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}
	var jobs []model.Job
	var rejected []string
	for i, job := range in {
		job.Name = strings.TrimSpace(job.Name)
		job.Description = strings.TrimSpace(job.Description)
		if err := validate(job); err != nil {
			rejected = append(rejected, fmt.Sprintf("jobs[%d]: %v", i, err))
			continue
		}
		if len(jobs) == maxJobs {
			rejected = append(rejected, fmt.Sprintf("jobs[%d]: exceeds max_jobs %d", i, maxJobs))
			continue
		}
		job.Index = len(jobs)
		jobs = append(jobs, job)
	}
	return jobs, rejected
}
