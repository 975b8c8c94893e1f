package challenge

import "github.com/google/uuid"

// The reward and tip catalogs are fixed day-offset tables. A challenge of
// duration d is seeded with every entry whose day is <= d; durations past 21
// earn one bonus reward every 7 additional days with day-scaled XP.

type rewardEntry struct {
	day         int
	title       string
	description string
	xp          int
}

type tipEntry struct {
	day     int
	title   string
	content string
}

var rewardTable = []rewardEntry{
	{1, "First Day Down", "You showed up. That is the hardest part.", 25},
	{3, "Three in a Row", "Three days of keeping your word to yourself.", 50},
	{7, "One Full Week", "Seven days without a single miss.", 100},
	{10, "Double Digits", "Ten days in. The habit is taking root.", 150},
	{14, "Two Weeks Strong", "Fourteen days of showing up.", 200},
	{18, "Almost There", "Eighteen days. The finish line is in sight.", 250},
	{21, "Discipline Forged", "Twenty-one days. A new default.", 300},
}

var tipTable = []tipEntry{
	{1, "Start Small", "Make day one laughably easy. Momentum beats intensity."},
	{2, "Same Time, Same Place", "Anchor the habit to a fixed moment in your day."},
	{3, "Expect the Dip", "Day three is where most people quit. Not you."},
	{5, "Track, Don't Judge", "A marked day is a win regardless of how it felt."},
	{7, "Protect the Streak", "When the day gets chaotic, shrink the habit, don't skip it."},
	{10, "Design Your Environment", "Remove one source of friction between you and the habit."},
	{14, "Identity Over Outcome", "You are becoming someone who does this daily."},
	{18, "Plan the Hard Days", "Decide now what the bare-minimum version looks like."},
	{21, "Keep the Chain Alive", "The challenge ends. The habit doesn't have to."},
}

// bonus rewards past the 21-day table: one every 7 additional days.
const (
	bonusRewardInterval = 7
	bonusRewardXPPerDay = 15
)

func rewardsFor(duration int) []Reward {
	var rewards []Reward
	for _, e := range rewardTable {
		if e.day > duration {
			break
		}
		rewards = append(rewards, Reward{
			ID:          uuid.New(),
			Day:         e.day,
			Title:       e.title,
			Description: e.description,
			XP:          e.xp,
		})
	}
	last := rewardTable[len(rewardTable)-1].day
	for day := last + bonusRewardInterval; day <= duration; day += bonusRewardInterval {
		rewards = append(rewards, Reward{
			ID:          uuid.New(),
			Day:         day,
			Title:       "Beyond the Program",
			Description: "An extended-run milestone. Few make it this far.",
			XP:          day * bonusRewardXPPerDay,
		})
	}
	return rewards
}

func tipsFor(duration int) []Tip {
	var tips []Tip
	for _, e := range tipTable {
		if e.day > duration {
			break
		}
		tips = append(tips, Tip{
			ID:      uuid.New(),
			Day:     e.day,
			Title:   e.title,
			Content: e.content,
		})
	}
	return tips
}
