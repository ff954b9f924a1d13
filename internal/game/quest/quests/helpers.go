// Package quests implements individual Lineage 2 quests using the quest framework.
package quests

import "github.com/udisondev/l2quest/internal/game/quest"

// Race IDs matching L2 Interlude protocol.
const (
	RaceHuman   int32 = 0
	RaceElf     int32 = 1
	RaceDarkElf int32 = 2
	RaceOrc     int32 = 3
	RaceDwarf   int32 = 4
)

// alreadyCompleted is shown by start NPCs of finished one-time quests.
const alreadyCompleted = "<html><body>This quest has already been completed.</body></html>"

// percent converts a drop chance in percent to parts per million.
func percent(p float64) int {
	return int(p * quest.ChanceScale / 100)
}
