package transfer

import "time"

// ScheduleConfig configures the recurring auto-post schedule. At most one
// schedule is active at a time; starting a new one replaces the previous.
type ScheduleConfig struct {
	CronExpression  string            `json:"cronExpression"`
	Timezone        string            `json:"timezone"`
	PostingCriteria SelectionCriteria `json:"postingCriteria"`
}

// SchedulerRequest is the body of POST /cron/scheduler.
type SchedulerRequest struct {
	Action string          `json:"action"` // start, stop, update, status
	Config *ScheduleConfig `json:"config,omitempty"`
}

// SchedulerStatus reports the current state of the auto-post schedule.
type SchedulerStatus struct {
	Status        string          `json:"status"` // running or stopped
	Config        *ScheduleConfig `json:"config,omitempty"`
	StartedAt     *time.Time      `json:"startedAt,omitempty"`
	UptimeMinutes int             `json:"uptimeMinutes,omitempty"`
	NextRun       *time.Time      `json:"nextRun,omitempty"`
}
