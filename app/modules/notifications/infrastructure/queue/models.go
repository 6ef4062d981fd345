package notificationqueue

import (
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
)

// SeasonClosedJob fans out "season closed" notifications to every player
// who appeared in the season's final standings.
type SeasonClosedJob struct {
	SeasonID sharedtypes.SeasonID `json:"season_id"`
	UserIDs  []sharedtypes.UserID `json:"user_ids"`
}

// Kind returns the job type identifier for River.
func (SeasonClosedJob) Kind() string { return "season_closed_notification" }

// JobInfo describes a queued job, for debugging and monitoring.
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	SeasonID    string `json:"season_id"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
