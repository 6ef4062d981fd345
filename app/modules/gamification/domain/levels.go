package gamificationdomain

import (
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
)

// XPForLevel returns the cumulative XP needed to reach a level. Level 1 is
// the floor; each step costs 100 XP more than the previous one, so the
// cumulative requirement is triangular: 0, 100, 300, 600, 1000, ...
func XPForLevel(level sharedtypes.Level) sharedtypes.XP {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return sharedtypes.XP(100 * n * (n + 1) / 2)
}

// LevelForXP maps total XP to a level. Monotonic: more XP never yields a
// lower level.
func LevelForXP(xp sharedtypes.XP) sharedtypes.Level {
	if xp < 0 {
		return 1
	}
	level := sharedtypes.Level(1)
	for XPForLevel(level+1) <= xp {
		level++
	}
	return level
}
