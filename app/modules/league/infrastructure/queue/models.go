package leaguequeue

// EpochRolloverJob finalizes one closed epoch. Args-level uniqueness means
// the periodic scheduler and any manual trigger collapse into a single job
// per epoch key.
type EpochRolloverJob struct {
	EpochKey string `json:"epoch_key"`
}

// Kind returns the job type identifier for River.
func (EpochRolloverJob) Kind() string { return "league_epoch_rollover" }

// JobInfo describes a queued rollover job, for the admin debug endpoint.
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	EpochKey    string `json:"epoch_key"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
