package cache

import (
	"errors"
	"sort"
	"time"

	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// Invalidation group names, used in logs.
const (
	GroupChallenges        = "challenges"
	GroupRewards           = "rewards"
	GroupLeaderboard       = "leaderboard"
	GroupUser              = "user"
	GroupCompletionDetails = "completion_details"
	GroupAll               = "all"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for invalidation events.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithRegisterer exports partition metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		m.registerer = reg
	}
}

// WithKeySerializer overrides the serializer derived from Config.MaxKeyLength.
func WithKeySerializer(serializer KeySerializer) Option {
	return func(m *Manager) {
		m.keys = serializer
	}
}

// Manager owns every cache partition of the challenge backend. It is built
// once per process and shared by all cached services; every method is safe
// for concurrent use.
type Manager struct {
	config     Config
	logger     zerolog.Logger
	keys       KeySerializer
	registerer prometheus.Registerer
	metrics    *Metrics
	partitions *xsync.MapOf[string, partitionHandle]

	challenges                    Partition[[]model.Challenge]
	challengeByName               Partition[*model.Challenge]
	challengeCounts               Partition[map[string]int]
	totalChallengeCount           Partition[int]
	userCompletions               Partition[map[string]time.Time]
	userCompletionCounts          Partition[int]
	userCoinsEarned               Partition[int]
	userCompletionsByCategory     Partition[map[string]int]
	userCompletionsWithChallenges Partition[[]model.CompletionWithChallenge]
	userRecentActivity            Partition[[]time.Time]
	rewards                       Partition[[]model.Reward]
	rewardByName                  Partition[*model.Reward]
	leaderboardPages              Partition[[]model.LeaderboardEntry]
	userPositions                 Partition[int64]
}

// NewManager validates cfg and builds every partition.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		config:     cfg,
		logger:     zerolog.Nop(),
		keys:       NewHashingKeySerializer(cfg.MaxKeyLength),
		partitions: xsync.NewMapOf[string, partitionHandle](),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.registerer != nil {
		metrics, err := NewMetrics(m.registerer)
		if err != nil {
			return nil, err
		}
		m.metrics = metrics
	}

	var err error
	if m.challenges, err = addPartition[[]model.Challenge](m, PartitionChallenges, cloneSlice[model.Challenge]); err != nil {
		return nil, err
	}
	if m.challengeByName, err = addPartition[*model.Challenge](m, PartitionChallengeByName, clonePtr[model.Challenge]); err != nil {
		return nil, err
	}
	if m.challengeCounts, err = addPartition[map[string]int](m, PartitionChallengeCounts, cloneMap[string, int]); err != nil {
		return nil, err
	}
	if m.totalChallengeCount, err = addPartition[int](m, PartitionTotalChallengeCount, nil); err != nil {
		return nil, err
	}
	if m.userCompletions, err = addPartition[map[string]time.Time](m, PartitionUserCompletions, cloneMap[string, time.Time]); err != nil {
		return nil, err
	}
	if m.userCompletionCounts, err = addPartition[int](m, PartitionUserCompletionCounts, nil); err != nil {
		return nil, err
	}
	if m.userCoinsEarned, err = addPartition[int](m, PartitionUserCoinsEarned, nil); err != nil {
		return nil, err
	}
	if m.userCompletionsByCategory, err = addPartition[map[string]int](m, PartitionUserCompletionsByCategory, cloneMap[string, int]); err != nil {
		return nil, err
	}
	if m.userCompletionsWithChallenges, err = addPartition[[]model.CompletionWithChallenge](m, PartitionUserCompletionsWithChallenges, cloneSlice[model.CompletionWithChallenge]); err != nil {
		return nil, err
	}
	if m.userRecentActivity, err = addPartition[[]time.Time](m, PartitionUserRecentActivity, cloneSlice[time.Time]); err != nil {
		return nil, err
	}
	if m.rewards, err = addPartition[[]model.Reward](m, PartitionRewards, cloneSlice[model.Reward]); err != nil {
		return nil, err
	}
	if m.rewardByName, err = addPartition[*model.Reward](m, PartitionRewardByName, clonePtr[model.Reward]); err != nil {
		return nil, err
	}
	if m.leaderboardPages, err = addPartition[[]model.LeaderboardEntry](m, PartitionLeaderboardPages, cloneSlice[model.LeaderboardEntry]); err != nil {
		return nil, err
	}
	if m.userPositions, err = addPartition[int64](m, PartitionUserPositions, nil); err != nil {
		return nil, err
	}

	if m.registerer != nil {
		if err := m.registerer.Register(newEntriesCollector(m.Stats)); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			m.logger.Warn().Msg("cache entries collector already registered, keeping the existing one")
		}
	}

	return m, nil
}

func addPartition[V any](m *Manager, name string, clone CloneFunc[V]) (Partition[V], error) {
	p, err := newPartition[V](name, m.config, m.metrics, clone)
	if err != nil {
		return nil, err
	}
	m.partitions.Store(name, p)
	m.logger.Debug().Str("partition", name).Int("capacity", p.Capacity()).Msg("cache partition created")
	return p, nil
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() Config {
	return m.config
}

// KeySerializer returns the serializer used for every partition key.
func (m *Manager) KeySerializer() KeySerializer {
	return m.keys
}

// Stats returns a snapshot of every partition sorted by name.
func (m *Manager) Stats() []PartitionStats {
	stats := make([]PartitionStats, 0, m.partitions.Size())
	m.partitions.Range(func(_ string, p partitionHandle) bool {
		stats = append(stats, p.Stats())
		return true
	})
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// InvalidatePartition clears a single partition by name. It reports false
// for unknown names.
func (m *Manager) InvalidatePartition(name string) bool {
	p, ok := m.partitions.Load(name)
	if !ok {
		return false
	}
	p.InvalidateAll()
	m.logger.Debug().Str("partition", name).Msg("cache partition invalidated")
	return true
}

// Slots. Each addresses one cached call by its parameters.

// AllChallengesSlot addresses the list of all challenges.
func (m *Manager) AllChallengesSlot() Slot[[]model.Challenge] {
	return Slot[[]model.Challenge]{m.challenges, m.keys.SerializeKey("challenges", "all")}
}

// ChallengeByNameSlot addresses a challenge lookup by name; nil means absent.
func (m *Manager) ChallengeByNameSlot(name string) Slot[*model.Challenge] {
	return Slot[*model.Challenge]{m.challengeByName, m.keys.SerializeKey("challenge:name", name)}
}

// ChallengeCountsSlot addresses challenge counts per category.
func (m *Manager) ChallengeCountsSlot() Slot[map[string]int] {
	return Slot[map[string]int]{m.challengeCounts, m.keys.SerializeKey("challenge:counts")}
}

// TotalChallengeCountSlot addresses the total number of challenges.
func (m *Manager) TotalChallengeCountSlot() Slot[int] {
	return Slot[int]{m.totalChallengeCount, m.keys.SerializeKey("challenge:total")}
}

// UserCompletionsSlot addresses a user's completion map (challenge name to timestamp).
func (m *Manager) UserCompletionsSlot(userID string) Slot[map[string]time.Time] {
	return Slot[map[string]time.Time]{m.userCompletions, m.keys.SerializeKey("user:completions", userID)}
}

// UserCompletionCountSlot addresses a user's completion count.
func (m *Manager) UserCompletionCountSlot(userID string) Slot[int] {
	return Slot[int]{m.userCompletionCounts, m.keys.SerializeKey("completion_count", userID)}
}

// UserCoinsEarnedSlot addresses the coins a user has earned.
func (m *Manager) UserCoinsEarnedSlot(userID string) Slot[int] {
	return Slot[int]{m.userCoinsEarned, m.keys.SerializeKey("coins_earned", userID)}
}

// UserCompletionsByCategorySlot addresses a user's completion counts per category.
func (m *Manager) UserCompletionsByCategorySlot(userID string) Slot[map[string]int] {
	return Slot[map[string]int]{m.userCompletionsByCategory, m.keys.SerializeKey("completions_by_category", userID)}
}

// UserCompletionsWithChallengesSlot addresses a user's completions joined with their challenges.
func (m *Manager) UserCompletionsWithChallengesSlot(userID string) Slot[[]model.CompletionWithChallenge] {
	return Slot[[]model.CompletionWithChallenge]{m.userCompletionsWithChallenges, m.keys.SerializeKey("completions_with_challenges", userID)}
}

// UserRecentActivitySlot addresses a user's activity days within a window of days.
func (m *Manager) UserRecentActivitySlot(userID string, days int) Slot[[]time.Time] {
	return Slot[[]time.Time]{m.userRecentActivity, m.keys.SerializeKey("recent_activity", userID, days)}
}

// AllRewardsSlot addresses the list of all rewards.
func (m *Manager) AllRewardsSlot() Slot[[]model.Reward] {
	return Slot[[]model.Reward]{m.rewards, m.keys.SerializeKey("rewards", "all")}
}

// RewardByNameSlot addresses a reward lookup by name; nil means absent.
func (m *Manager) RewardByNameSlot(name string) Slot[*model.Reward] {
	return Slot[*model.Reward]{m.rewardByName, m.keys.SerializeKey("reward:name", name)}
}

// LeaderboardPageSlot treats a nil afterRank as 0; both select the first page.
func (m *Manager) LeaderboardPageSlot(limit int, afterRank *int64) Slot[[]model.LeaderboardEntry] {
	var after int64
	if afterRank != nil {
		after = *afterRank
	}
	return Slot[[]model.LeaderboardEntry]{m.leaderboardPages, m.keys.SerializeKey("leaderboard:page", limit, after)}
}

// UserPositionSlot addresses a user's leaderboard rank.
func (m *Manager) UserPositionSlot(userID string) Slot[int64] {
	return Slot[int64]{m.userPositions, m.keys.SerializeKey("user:position", userID)}
}

// Typed accessors.

// GetAllChallenges returns the cached list of all challenges.
func (m *Manager) GetAllChallenges() ([]model.Challenge, bool) {
	return m.AllChallengesSlot().Get()
}

// SetAllChallenges caches the list of all challenges.
func (m *Manager) SetAllChallenges(challenges []model.Challenge) {
	m.AllChallengesSlot().Set(challenges)
}

// GetChallengeByName reports a hit with a nil challenge for a cached negative lookup.
func (m *Manager) GetChallengeByName(name string) (*model.Challenge, bool) {
	return m.ChallengeByNameSlot(name).Get()
}

// SetChallengeByName caches a challenge lookup by name.
func (m *Manager) SetChallengeByName(name string, challenge *model.Challenge) {
	m.ChallengeByNameSlot(name).Set(challenge)
}

// GetChallengeCounts returns the cached challenge counts per category.
func (m *Manager) GetChallengeCounts() (map[string]int, bool) {
	return m.ChallengeCountsSlot().Get()
}

// SetChallengeCounts caches challenge counts per category.
func (m *Manager) SetChallengeCounts(counts map[string]int) {
	m.ChallengeCountsSlot().Set(counts)
}

// GetTotalChallengeCount returns the cached total number of challenges.
func (m *Manager) GetTotalChallengeCount() (int, bool) {
	return m.TotalChallengeCountSlot().Get()
}

// SetTotalChallengeCount caches the total number of challenges.
func (m *Manager) SetTotalChallengeCount(total int) {
	m.TotalChallengeCountSlot().Set(total)
}

// GetUserCompletions returns a user's cached completion map.
func (m *Manager) GetUserCompletions(userID string) (map[string]time.Time, bool) {
	return m.UserCompletionsSlot(userID).Get()
}

// SetUserCompletions caches a user's completion map (challenge name to timestamp).
func (m *Manager) SetUserCompletions(userID string, completions map[string]time.Time) {
	m.UserCompletionsSlot(userID).Set(completions)
}

// GetUserCompletionCount returns the cached completion count of a user.
func (m *Manager) GetUserCompletionCount(userID string) (int, bool) {
	return m.UserCompletionCountSlot(userID).Get()
}

// SetUserCompletionCount caches a user's completion count.
func (m *Manager) SetUserCompletionCount(userID string, count int) {
	m.UserCompletionCountSlot(userID).Set(count)
}

// GetUserCoinsEarned returns the cached coins a user has earned.
func (m *Manager) GetUserCoinsEarned(userID string) (int, bool) {
	return m.UserCoinsEarnedSlot(userID).Get()
}

// SetUserCoinsEarned caches the coins a user has earned.
func (m *Manager) SetUserCoinsEarned(userID string, coins int) {
	m.UserCoinsEarnedSlot(userID).Set(coins)
}

// GetUserCompletionsByCategory returns a user's cached completion counts per category.
func (m *Manager) GetUserCompletionsByCategory(userID string) (map[string]int, bool) {
	return m.UserCompletionsByCategorySlot(userID).Get()
}

// SetUserCompletionsByCategory caches a user's completion counts per category.
func (m *Manager) SetUserCompletionsByCategory(userID string, counts map[string]int) {
	m.UserCompletionsByCategorySlot(userID).Set(counts)
}

// GetUserCompletionsWithChallenges returns a user's cached completions joined with their challenges.
func (m *Manager) GetUserCompletionsWithChallenges(userID string) ([]model.CompletionWithChallenge, bool) {
	return m.UserCompletionsWithChallengesSlot(userID).Get()
}

// SetUserCompletionsWithChallenges caches a user's completions joined with their challenges.
func (m *Manager) SetUserCompletionsWithChallenges(userID string, rows []model.CompletionWithChallenge) {
	m.UserCompletionsWithChallengesSlot(userID).Set(rows)
}

// GetUserRecentActivity returns a user's cached activity days for the given window.
func (m *Manager) GetUserRecentActivity(userID string, days int) ([]time.Time, bool) {
	return m.UserRecentActivitySlot(userID, days).Get()
}

// SetUserRecentActivity caches a user's activity days within a window of days.
func (m *Manager) SetUserRecentActivity(userID string, days int, activity []time.Time) {
	m.UserRecentActivitySlot(userID, days).Set(activity)
}

// GetAllRewards returns the cached list of all rewards.
func (m *Manager) GetAllRewards() ([]model.Reward, bool) {
	return m.AllRewardsSlot().Get()
}

// SetAllRewards caches the list of all rewards.
func (m *Manager) SetAllRewards(rewards []model.Reward) {
	m.AllRewardsSlot().Set(rewards)
}

// GetRewardByName reports a hit with a nil reward for a cached negative lookup.
func (m *Manager) GetRewardByName(name string) (*model.Reward, bool) {
	return m.RewardByNameSlot(name).Get()
}

// SetRewardByName caches a reward lookup by name.
func (m *Manager) SetRewardByName(name string, reward *model.Reward) {
	m.RewardByNameSlot(name).Set(reward)
}

// GetLeaderboardPage returns the cached leaderboard page.
func (m *Manager) GetLeaderboardPage(limit int, afterRank *int64) ([]model.LeaderboardEntry, bool) {
	return m.LeaderboardPageSlot(limit, afterRank).Get()
}

// SetLeaderboardPage caches a leaderboard page.
func (m *Manager) SetLeaderboardPage(limit int, afterRank *int64, entries []model.LeaderboardEntry) {
	m.LeaderboardPageSlot(limit, afterRank).Set(entries)
}

// GetUserPosition returns the cached leaderboard rank of a user.
func (m *Manager) GetUserPosition(userID string) (int64, bool) {
	return m.UserPositionSlot(userID).Get()
}

// SetUserPosition caches a user's leaderboard rank.
func (m *Manager) SetUserPosition(userID string, rank int64) {
	m.UserPositionSlot(userID).Set(rank)
}

// Invalidation groups.

// InvalidateChallenges clears every challenge listing, lookup and count.
func (m *Manager) InvalidateChallenges() {
	m.challenges.InvalidateAll()
	m.challengeByName.InvalidateAll()
	m.challengeCounts.InvalidateAll()
	m.totalChallengeCount.InvalidateAll()
	m.logger.Debug().Str("group", GroupChallenges).Msg("cache invalidated")
}

// InvalidateRewards clears the reward listing and lookups.
func (m *Manager) InvalidateRewards() {
	m.rewards.InvalidateAll()
	m.rewardByName.InvalidateAll()
	m.logger.Debug().Str("group", GroupRewards).Msg("cache invalidated")
}

// InvalidateLeaderboard clears every cached page and user position.
func (m *Manager) InvalidateLeaderboard() {
	m.leaderboardPages.InvalidateAll()
	m.userPositions.InvalidateAll()
	m.logger.Debug().Str("group", GroupLeaderboard).Msg("cache invalidated")
}

// InvalidateUserData clears every entry keyed by userID. Recent activity keys
// also carry a day window, so that partition is cleared for all users.
func (m *Manager) InvalidateUserData(userID string) {
	m.UserCompletionsSlot(userID).Invalidate()
	m.UserCompletionCountSlot(userID).Invalidate()
	m.UserCoinsEarnedSlot(userID).Invalidate()
	m.UserCompletionsByCategorySlot(userID).Invalidate()
	m.UserCompletionsWithChallengesSlot(userID).Invalidate()
	m.UserPositionSlot(userID).Invalidate()
	m.userRecentActivity.InvalidateAll()
	m.logger.Debug().Str("group", GroupUser).Str("user_id", userID).Msg("cache invalidated")
}

// InvalidateCompletionDetails clears the joined completion rows of every
// user, which embed challenge fields.
func (m *Manager) InvalidateCompletionDetails() {
	m.userCompletionsWithChallenges.InvalidateAll()
	m.logger.Debug().Str("group", GroupCompletionDetails).Msg("cache invalidated")
}

// InvalidateAll clears every partition.
func (m *Manager) InvalidateAll() {
	m.partitions.Range(func(_ string, p partitionHandle) bool {
		p.InvalidateAll()
		return true
	})
	m.logger.Info().Str("group", GroupAll).Msg("cache invalidated")
}
