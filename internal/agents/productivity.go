package agents

import (
	"sort"
	"time"

	loomerrors "github.com/loomhr/loom/internal/errors"
)

// slaHours is the completion SLA for open tasks.
const slaHours = 48

// TimeLog is one recorded work interval on a task.
type TimeLog struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// TaskLog is the lifecycle record of one task. CompletedAt is nil while the
// task is open.
type TaskLog struct {
	TaskID      string     `json:"task_id"`
	TaskType    string     `json:"task_type"`
	Priority    string     `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Bottleneck is one slow task type in the ranked bottleneck list.
type Bottleneck struct {
	TaskType string  `json:"task_type"`
	AvgHours float64 `json:"avg_cycle_time_h"`
}

// Productivity surfaces throughput, utilization, and bottleneck signals from
// time and task logs.
type Productivity struct {
	workingHoursPerWeek float64
	now                 func() time.Time
}

// ProductivityOption configures the productivity agent.
type ProductivityOption func(*Productivity)

// WithWorkingHours overrides the default 40-hour work week used for
// utilization.
func WithWorkingHours(hours float64) ProductivityOption {
	return func(p *Productivity) { p.workingHoursPerWeek = hours }
}

// WithClock overrides the clock used for task aging in tests.
func WithClock(now func() time.Time) ProductivityOption {
	return func(p *Productivity) { p.now = now }
}

// NewProductivity creates the productivity agent.
func NewProductivity(opts ...ProductivityOption) *Productivity {
	p := &Productivity{
		workingHoursPerWeek: 40,
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze computes cycle times, weekly throughput, user utilization, the top
// three bottleneck task types, overdue open tasks, and open-task aging.
func (p *Productivity) Analyze(timeLogs []TimeLog, taskLogs []TaskLog) (Result, error) {
	if len(timeLogs) == 0 {
		return nil, loomerrors.NewSchemaError(loomerrors.CodeEmptyDataset,
			"no time logs provided")
	}

	taskType := map[string]string{}
	for _, task := range taskLogs {
		taskType[task.TaskID] = task.TaskType
	}

	// Cycle times in hours, overall and by task type.
	var totalCycle float64
	cycleSums := map[string]float64{}
	cycleCounts := map[string]int{}
	userHours := map[string]float64{}
	for _, tl := range timeLogs {
		h := tl.EndTime.Sub(tl.StartTime).Hours()
		totalCycle += h
		userHours[tl.UserID] += h
		if tt, ok := taskType[tl.TaskID]; ok {
			cycleSums[tt] += h
			cycleCounts[tt]++
		}
	}

	avgByType := map[string]float64{}
	for tt, sum := range cycleSums {
		avgByType[tt] = round2(sum / float64(cycleCounts[tt]))
	}

	// Weekly throughput of completed tasks, keyed by the ISO date of the
	// Monday starting each week.
	throughput := map[string]int{}
	for _, task := range taskLogs {
		if task.CompletedAt == nil {
			continue
		}
		throughput[weekStart(*task.CompletedAt)]++
	}

	utilization := map[string]float64{}
	for user, hours := range userHours {
		utilization[user] = round2(hours / p.workingHoursPerWeek)
	}

	// Top 3 slowest task types.
	slowest := make([]Bottleneck, 0, len(avgByType))
	for tt, avg := range avgByType {
		slowest = append(slowest, Bottleneck{tt, avg})
	}
	sort.Slice(slowest, func(i, j int) bool {
		if slowest[i].AvgHours != slowest[j].AvgHours {
			return slowest[i].AvgHours > slowest[j].AvgHours
		}
		return slowest[i].TaskType < slowest[j].TaskType
	})
	if len(slowest) > 3 {
		slowest = slowest[:3]
	}

	// Open tasks: overdue list plus aging buckets.
	now := p.now()
	var overdue []string
	aging := map[string]int{}
	for _, task := range taskLogs {
		if task.CompletedAt != nil {
			continue
		}
		ageHours := now.Sub(task.CreatedAt).Hours()
		if ageHours > slaHours {
			overdue = append(overdue, task.TaskID)
		}
		aging[ageBucket(ageHours)]++
	}
	sort.Strings(overdue)

	return Result{
		"average_completion_time_h": round2(totalCycle / float64(len(timeLogs))),
		"avg_cycle_time_by_type_h":  avgByType,
		"throughput_per_week":       throughput,
		"user_utilization":          utilization,
		"top_bottleneck_types":      slowest,
		"overdue_tasks":             overdue,
		"open_task_aging":           aging,
	}, nil
}

// weekStart returns the date of the Monday of the week containing t.
func weekStart(t time.Time) string {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format("2006-01-02")
}

func ageBucket(hours float64) string {
	switch {
	case hours <= 24:
		return "<1d"
	case hours <= 48:
		return "1-2d"
	case hours <= 72:
		return "2-3d"
	case hours <= 168:
		return "3-7d"
	default:
		return ">7d"
	}
}
