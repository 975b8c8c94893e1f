// Package leveling maps cumulative experience points to levels. Levels are a
// pure function of total XP, so every stored level is a recomputable cache.
package leveling

import "math"

// LevelOf returns the level for a cumulative XP total. Level 1 starts at
// 0 XP and each level L spans [ (L-1)^2*100, L^2*100 ). Callers clamp XP to
// >= 0 before calling.
func LevelOf(xp int) int {
	return int(math.Sqrt(float64(xp)/100)) + 1
}

// XPFloorOf is the XP total at which the level begins.
func XPFloorOf(level int) int {
	return (level - 1) * (level - 1) * 100
}

// XPCeilOf is the XP total at which the next level begins.
func XPCeilOf(level int) int {
	return level * level * 100
}

// XPToNext is how much XP remains until the next level.
func XPToNext(xp int) int {
	return XPCeilOf(LevelOf(xp)) - xp
}
