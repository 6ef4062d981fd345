package rankingservice

import (
	"fmt"
	"time"

	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
)

// PeriodKey derives the leaderboard window key for an instant. Weeks use the
// ISO year and week number so late-December days land in the right window.
func PeriodKey(period sharedtypes.RankingPeriod, t time.Time) string {
	switch period {
	case sharedtypes.PeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case sharedtypes.PeriodMonth:
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}
