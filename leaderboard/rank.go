package leaderboard

import (
	"sort"

	"github.com/goliatone/go-leaderboard-cache/model"
)

// Stats are the aggregated facts a user is ranked by.
type Stats struct {
	UserID              string
	Name                string
	Dorm                *string
	CoinsEarned         int64
	CoinsSpent          int64
	ChallengesCompleted int64
}

// Less orders by net coins descending, then completions descending, then
// name ascending (byte order). User id breaks exact ties so the order is total.
func Less(a, b Stats) bool {
	if an, bn := a.CoinsEarned-a.CoinsSpent, b.CoinsEarned-b.CoinsSpent; an != bn {
		return an > bn
	}
	if a.ChallengesCompleted != b.ChallengesCompleted {
		return a.ChallengesCompleted > b.ChallengesCompleted
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.UserID < b.UserID
}

// Rank sorts a copy of stats and assigns ranks starting at 1.
func Rank(stats []Stats) []model.LeaderboardEntry {
	sorted := append([]Stats(nil), stats...)
	sort.Slice(sorted, func(i, j int) bool { return Less(sorted[i], sorted[j]) })

	entries := make([]model.LeaderboardEntry, len(sorted))
	for i, s := range sorted {
		entries[i] = model.LeaderboardEntry{
			Rank:                int64(i + 1),
			UserID:              s.UserID,
			Name:                s.Name,
			Dorm:                s.Dorm,
			CoinsEarned:         s.CoinsEarned,
			CoinsSpent:          s.CoinsSpent,
			ChallengesCompleted: s.ChallengesCompleted,
		}
	}
	return entries
}

// After returns up to limit entries ranked strictly after afterRank.
func After(ranked []model.LeaderboardEntry, limit int, afterRank *int64) []model.LeaderboardEntry {
	var start int64
	if afterRank != nil && *afterRank > 0 {
		start = *afterRank
	}
	if start >= int64(len(ranked)) || limit <= 0 {
		return []model.LeaderboardEntry{}
	}

	end := start + int64(limit)
	if end > int64(len(ranked)) {
		end = int64(len(ranked))
	}
	return append([]model.LeaderboardEntry(nil), ranked[start:end]...)
}
