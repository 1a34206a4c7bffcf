package testsupport

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-leaderboard-cache/leaderboard"
	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/pkg/apperrors"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var (
	_ service.ChallengeService   = (*MemoryStore)(nil)
	_ service.CompletionService  = (*MemoryStore)(nil)
	_ service.RewardService      = (*MemoryStore)(nil)
	_ service.TransactionService = (*MemoryStore)(nil)
	_ service.UserService        = (*MemoryStore)(nil)
	_ service.LeaderboardService = (*MemoryStore)(nil)
)

// MemoryStore is an in-memory implementation of every service capability.
// It counts calls per method so tests can tell cache hits from misses.
type MemoryStore struct {
	mu           sync.Mutex
	calls        map[string]int
	users        map[string]model.User
	challenges   map[string]model.Challenge
	rewards      map[string]model.Reward
	completions  map[string]map[string]model.Completion
	transactions []model.Transaction

	// Err, when set, is returned by every method.
	Err error
	Now func() time.Time
}

func NewMemoryStore(ds Dataset) *MemoryStore {
	s := &MemoryStore{
		calls:       make(map[string]int),
		users:       make(map[string]model.User),
		challenges:  make(map[string]model.Challenge),
		rewards:     make(map[string]model.Reward),
		completions: make(map[string]map[string]model.Completion),
		Now:         time.Now,
	}
	for _, u := range ds.Users {
		s.users[u.UserID] = u
	}
	for _, ch := range ds.Challenges {
		s.challenges[ch.Name] = ch
	}
	for _, r := range ds.Rewards {
		s.rewards[r.Name] = r
	}
	for _, c := range ds.Completions {
		s.putCompletion(c)
	}
	s.transactions = append(s.transactions, ds.Transactions...)
	return s
}

// Calls returns how many times method was invoked.
func (s *MemoryStore) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// ResetCalls zeroes every call counter.
func (s *MemoryStore) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

// enter locks the store and records the call. Callers must unlock.
func (s *MemoryStore) enter(method string) error {
	s.mu.Lock()
	s.calls[method]++
	return s.Err
}

func (s *MemoryStore) putCompletion(c model.Completion) {
	byChallenge, ok := s.completions[c.UserID]
	if !ok {
		byChallenge = make(map[string]model.Completion)
		s.completions[c.UserID] = byChallenge
	}
	byChallenge[c.ChallengeName] = c
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Challenges

func (s *MemoryStore) GetAllChallenges(ctx context.Context) ([]model.Challenge, error) {
	err := s.enter("GetAllChallenges")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]model.Challenge, 0, len(s.challenges))
	for _, name := range sortedKeys(s.challenges) {
		out = append(out, s.challenges[name])
	}
	return out, nil
}

func (s *MemoryStore) GetChallengeByName(ctx context.Context, name string) (*model.Challenge, error) {
	err := s.enter("GetChallengeByName")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	ch, ok := s.challenges[name]
	if !ok {
		return nil, nil
	}
	return &ch, nil
}

func (s *MemoryStore) UpdateChallengeGeolocation(ctx context.Context, name string, latitude, longitude, accuracy float64) (*model.Challenge, error) {
	err := s.enter("UpdateChallengeGeolocation")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	ch, ok := s.challenges[name]
	if !ok {
		return nil, nil
	}
	ch.Latitude, ch.Longitude, ch.LocationAccuracy = &latitude, &longitude, &accuracy
	s.challenges[name] = ch
	return &ch, nil
}

func (s *MemoryStore) GetTotalChallengesByCategory(ctx context.Context) (map[string]int, error) {
	err := s.enter("GetTotalChallengesByCategory")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, ch := range s.challenges {
		counts[ch.Category]++
	}
	return counts, nil
}

func (s *MemoryStore) GetTotalChallengeCount(ctx context.Context) (int, error) {
	err := s.enter("GetTotalChallengeCount")
	defer s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return len(s.challenges), nil
}

func (s *MemoryStore) UpsertChallengesBatch(ctx context.Context, challenges []model.Challenge) (int, error) {
	err := s.enter("UpsertChallengesBatch")
	defer s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	for _, ch := range challenges {
		s.challenges[ch.Name] = ch
	}
	return len(challenges), nil
}

// Completions

func (s *MemoryStore) GetUserCompletionMap(ctx context.Context, userID string) (map[string]time.Time, error) {
	err := s.enter("GetUserCompletionMap")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time)
	for name, c := range s.completions[userID] {
		out[name] = c.Timestamp
	}
	return out, nil
}

func (s *MemoryStore) CreateCompletion(ctx context.Context, userID, challengeName string, s3Link, note *string) (*model.Completion, error) {
	err := s.enter("CreateCompletion")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	c := model.Completion{
		UserID:        userID,
		ChallengeName: challengeName,
		Timestamp:     s.Now().UTC(),
		S3Link:        s3Link,
		Note:          note,
	}
	s.putCompletion(c)
	return &c, nil
}

func (s *MemoryStore) CompletionExists(ctx context.Context, userID, challengeName string) (bool, error) {
	err := s.enter("CompletionExists")
	defer s.mu.Unlock()
	if err != nil {
		return false, err
	}
	_, ok := s.completions[userID][challengeName]
	return ok, nil
}

func (s *MemoryStore) GetUserCompletionsByCategory(ctx context.Context, userID string) (map[string]int, error) {
	err := s.enter("GetUserCompletionsByCategory")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for name := range s.completions[userID] {
		if ch, ok := s.challenges[name]; ok {
			counts[ch.Category]++
		}
	}
	return counts, nil
}

func (s *MemoryStore) GetUserCompletionCount(ctx context.Context, userID string) (int, error) {
	err := s.enter("GetUserCompletionCount")
	defer s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return len(s.completions[userID]), nil
}

func (s *MemoryStore) GetUserRecentActivityDays(ctx context.Context, userID string, days int) ([]time.Time, error) {
	err := s.enter("GetUserRecentActivityDays")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	cutoff := s.Now().UTC().AddDate(0, 0, -days)
	seen := make(map[time.Time]bool)
	out := []time.Time{}
	for _, c := range s.completions[userID] {
		if c.Timestamp.Before(cutoff) {
			continue
		}
		ts := c.Timestamp.UTC()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		if !seen[day] {
			seen[day] = true
			out = append(out, day)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (s *MemoryStore) GetUserTotalCoinsEarned(ctx context.Context, userID string) (int, error) {
	err := s.enter("GetUserTotalCoinsEarned")
	defer s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return s.coinsEarned(userID), nil
}

func (s *MemoryStore) coinsEarned(userID string) int {
	total := 0
	for name := range s.completions[userID] {
		total += s.challenges[name].ScottyCoins
	}
	return total
}

func (s *MemoryStore) GetUserCompletionsWithChallenges(ctx context.Context, userID string) ([]model.CompletionWithChallenge, error) {
	err := s.enter("GetUserCompletionsWithChallenges")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	byChallenge := s.completions[userID]
	out := []model.CompletionWithChallenge{}
	for _, name := range sortedKeys(byChallenge) {
		if ch, ok := s.challenges[name]; ok {
			out = append(out, model.CompletionWithChallenge{Completion: byChallenge[name], Challenge: ch})
		}
	}
	return out, nil
}

func (s *MemoryStore) GetUserCompletionWithChallenge(ctx context.Context, userID, challengeName string) (*model.CompletionWithChallenge, error) {
	err := s.enter("GetUserCompletionWithChallenge")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	c, ok := s.completions[userID][challengeName]
	if !ok {
		return nil, nil
	}
	ch, ok := s.challenges[challengeName]
	if !ok {
		return nil, nil
	}
	return &model.CompletionWithChallenge{Completion: c, Challenge: ch}, nil
}

func (s *MemoryStore) UpdateCompletionNote(ctx context.Context, userID, challengeName string, note *string) (*model.Completion, error) {
	err := s.enter("UpdateCompletionNote")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	c, ok := s.completions[userID][challengeName]
	if !ok {
		return nil, nil
	}
	c.Note = note
	s.putCompletion(c)
	return &c, nil
}

func (s *MemoryStore) UpdateCompletionPhoto(ctx context.Context, userID, challengeName string, s3Link *string) (*model.Completion, error) {
	err := s.enter("UpdateCompletionPhoto")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	c, ok := s.completions[userID][challengeName]
	if !ok {
		return nil, nil
	}
	c.S3Link = s3Link
	s.putCompletion(c)
	return &c, nil
}

// Rewards

func (s *MemoryStore) GetAllRewards(ctx context.Context) ([]model.Reward, error) {
	err := s.enter("GetAllRewards")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]model.Reward, 0, len(s.rewards))
	for _, name := range sortedKeys(s.rewards) {
		out = append(out, s.rewards[name])
	}
	return out, nil
}

func (s *MemoryStore) GetRewardByName(ctx context.Context, name string) (*model.Reward, error) {
	err := s.enter("GetRewardByName")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	r, ok := s.rewards[name]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *MemoryStore) UpsertRewardsBatch(ctx context.Context, rewards []model.Reward) (int, error) {
	err := s.enter("UpsertRewardsBatch")
	defer s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	for _, r := range rewards {
		s.rewards[r.Name] = r
	}
	return len(rewards), nil
}

func (s *MemoryStore) DecrementStock(ctx context.Context, name string, amount int) (*model.Reward, error) {
	err := s.enter("DecrementStock")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	r, ok := s.rewards[name]
	if !ok {
		return nil, nil
	}
	if !r.TracksStock() {
		return &r, nil
	}
	if r.Stock < amount {
		return nil, &apperrors.ErrInsufficientStock{Reward: name, Requested: amount, Available: r.Stock}
	}
	r.Stock -= amount
	s.rewards[name] = r
	return &r, nil
}

func (s *MemoryStore) IncrementStock(ctx context.Context, name string, amount int) (*model.Reward, error) {
	err := s.enter("IncrementStock")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	r, ok := s.rewards[name]
	if !ok {
		return nil, nil
	}
	if r.TracksStock() {
		r.Stock += amount
		s.rewards[name] = r
	}
	return &r, nil
}

// Transactions

func (s *MemoryStore) CreateTransaction(ctx context.Context, userID, rewardName string, count int) (*model.Transaction, error) {
	err := s.enter("CreateTransaction")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	tx := model.Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		RewardName: rewardName,
		Count:      count,
		Timestamp:  s.Now().UTC(),
		Status:     model.TransactionPending,
	}
	s.transactions = append(s.transactions, tx)
	return &tx, nil
}

func (s *MemoryStore) findTransaction(id string) (int, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return -1, &apperrors.ErrInvalidIdentifier{Kind: "transaction", Value: id}
	}
	for i, tx := range s.transactions {
		if tx.ID == parsed {
			return i, nil
		}
	}
	return -1, nil
}

func (s *MemoryStore) DeleteTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	err := s.enter("DeleteTransaction")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	i, err := s.findTransaction(id)
	if err != nil || i < 0 {
		return nil, err
	}
	tx := s.transactions[i]
	s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
	return &tx, nil
}

func (s *MemoryStore) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	err := s.enter("GetTransactionByID")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	i, err := s.findTransaction(id)
	if err != nil || i < 0 {
		return nil, err
	}
	tx := s.transactions[i]
	return &tx, nil
}

func (s *MemoryStore) UpdateTransactionStatus(ctx context.Context, id, status string) (*model.Transaction, error) {
	err := s.enter("UpdateTransactionStatus")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	i, err := s.findTransaction(id)
	if err != nil || i < 0 {
		return nil, err
	}
	s.transactions[i].Status = status
	tx := s.transactions[i]
	return &tx, nil
}

func (s *MemoryStore) GetUserTotalCounts(ctx context.Context, userID string) (map[string]int, error) {
	err := s.enter("GetUserTotalCounts")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			counts[tx.RewardName] += tx.Count
		}
	}
	return counts, nil
}

func (s *MemoryStore) GetUserTotalCoinsSpent(ctx context.Context, userID string) (int, error) {
	err := s.enter("GetUserTotalCoinsSpent")
	defer s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return s.coinsSpent(userID), nil
}

func (s *MemoryStore) coinsSpent(userID string) int {
	total := 0
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			total += tx.Count * s.rewards[tx.RewardName].Cost
		}
	}
	return total
}

func (s *MemoryStore) GetUserRewardTransactions(ctx context.Context, userID, rewardName string) ([]model.Transaction, error) {
	err := s.enter("GetUserRewardTransactions")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := []model.Transaction{}
	for _, tx := range s.transactions {
		if tx.UserID == userID && tx.RewardName == rewardName {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Users

func (s *MemoryStore) GetOrCreateUser(ctx context.Context, userID, name string) (*model.User, bool, error) {
	err := s.enter("GetOrCreateUser")
	defer s.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	if u, ok := s.users[userID]; ok {
		return &u, false, nil
	}
	u := model.User{UserID: userID, Name: name}
	s.users[userID] = u
	return &u, true, nil
}

func (s *MemoryStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	err := s.enter("GetUser")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemoryStore) UpdateDorm(ctx context.Context, userID string, dorm *string) (*model.User, error) {
	err := s.enter("UpdateDorm")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	u.Dorm = dorm
	s.users[userID] = u
	return &u, nil
}

// Leaderboard

func (s *MemoryStore) ranked() []model.LeaderboardEntry {
	stats := make([]leaderboard.Stats, 0, len(s.users))
	for _, u := range s.users {
		stats = append(stats, leaderboard.Stats{
			UserID:              u.UserID,
			Name:                u.Name,
			Dorm:                u.Dorm,
			CoinsEarned:         int64(s.coinsEarned(u.UserID)),
			CoinsSpent:          int64(s.coinsSpent(u.UserID)),
			ChallengesCompleted: int64(len(s.completions[u.UserID])),
		})
	}
	return leaderboard.Rank(stats)
}

func (s *MemoryStore) GetLeaderboardPage(ctx context.Context, limit int, afterRank *int64) ([]model.LeaderboardEntry, error) {
	err := s.enter("GetLeaderboardPage")
	defer s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return leaderboard.After(s.ranked(), limit, afterRank), nil
}

func (s *MemoryStore) GetUserLeaderboardPosition(ctx context.Context, userID string) (int64, error) {
	err := s.enter("GetUserLeaderboardPosition")
	defer s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	for _, e := range s.ranked() {
		if e.UserID == userID {
			return e.Rank, nil
		}
	}
	return 0, apperrors.NewUserNotFoundError(userID)
}
