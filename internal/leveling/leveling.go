// Package leveling maps cumulative XP to levels and computes XP awards.
//
// Advancing from level L to L+1 costs L*100 XP, so thresholds are cumulative:
// level 2 at 100 XP, level 3 at 300, level 4 at 600 and so on.
package leveling

import (
	"fmt"
	"math"
	"time"

	"github.com/jonathan/skillbuddy/internal/types"
)

const (
	// levelStep is the XP cost multiplier per level.
	levelStep = 100

	sessionBaseXP        = 50
	completionBonusRate  = 0.5
	perResponseXP        = 10
	maxResponseQualityXP = 50
)

// MaxXP caps a user's cumulative XP. Totals above it are treated as MaxXP.
const MaxXP = 1_000_000_000

func clampXP(xp int) int {
	return max(0, min(xp, MaxXP))
}

// creditXP adds amount to total, saturating at MaxXP.
func creditXP(total, amount int) int {
	total = clampXP(total)
	if amount > MaxXP-total {
		return MaxXP
	}
	return clampXP(total + amount)
}

// walk returns the level reached by xp, the XP consumed by completed levels,
// and the XP required for the next level. xp is clamped to [0, MaxXP].
func walk(xp int) (level, consumed, need int) {
	xp = clampXP(xp)
	level, need = 1, levelStep
	for xp-consumed >= need {
		consumed += need
		level++
		need = level * levelStep
	}
	return level, consumed, need
}

// Level returns the level for a cumulative XP total. Level(0) is 1.
func Level(xp int) int {
	level, _, _ := walk(xp)
	return level
}

// ProgressFor reports progress through the current level.
// CurrentLevelXP is always strictly below NextLevelRequirement.
func ProgressFor(xp int) types.XPProgress {
	xp = clampXP(xp)
	_, consumed, need := walk(xp)
	current := xp - consumed

	pct := 100.0
	if need > 0 {
		pct = float64(current) / float64(need) * 100
	}

	return types.XPProgress{
		CurrentLevelXP:       current,
		XPToNextLevel:        need - current,
		NextLevelRequirement: need,
		ProgressPercentage:   pct,
	}
}

// AddXP credits amount to the user, recomputes the level and appends a level_up
// achievement when the level rises. The total saturates at MaxXP and XPGained
// reports what was actually credited. The user is mutated in place; persisting it
// is the caller's job.
func AddXP(u *types.User, amount int, source string, now time.Time) types.XPAward {
	oldLevel := u.Level
	if oldLevel < 1 {
		oldLevel = Level(u.XPPoints)
	}

	before := clampXP(u.XPPoints)
	u.XPPoints = creditXP(before, amount)
	newLevel := Level(u.XPPoints)
	u.Level = newLevel

	if newLevel > oldLevel {
		u.Achievements = append(u.Achievements, types.Achievement{
			Type:        types.AchievementLevelUp,
			Level:       newLevel,
			Timestamp:   now,
			Description: fmt.Sprintf("Reached level %d!", newLevel),
		})
	}

	return types.XPAward{
		XPGained:     u.XPPoints - before,
		TotalXP:      u.XPPoints,
		CurrentLevel: newLevel,
		LevelUp:      newLevel > oldLevel,
		Source:       source,
	}
}

// GrantWelcomeBonus seeds a new user with XP earned before signup.
// Non-positive amounts are ignored.
func GrantWelcomeBonus(u *types.User, amount int, now time.Time) {
	if amount <= 0 {
		return
	}
	u.XPPoints = creditXP(u.XPPoints, amount)
	u.Level = Level(u.XPPoints)
	u.TemporaryXP = amount
	u.Achievements = append(u.Achievements, types.Achievement{
		Type:        types.AchievementWelcomeBonus,
		Timestamp:   now,
		Description: fmt.Sprintf("Welcome bonus: %d XP!", amount),
	})
}

// SessionXP is the XP earned for completing a session: a base of 50, half the
// completion percentage (rounded down) and 10 per response capped at 50.
func SessionXP(completionPercentage float64, responses int) int {
	completionBonus := int(math.Floor(completionPercentage * completionBonusRate))
	qualityBonus := min(responses*perResponseXP, maxResponseQualityXP)
	return sessionBaseXP + completionBonus + qualityBonus
}
