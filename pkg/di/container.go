package di

import (
	"github.com/goliatone/go-leaderboard-cache/cache"
	"github.com/goliatone/go-leaderboard-cache/service"
	"github.com/goliatone/go-leaderboard-cache/servicecache"
	"github.com/goliatone/go-leaderboard-cache/store"
	"github.com/uptrace/bun"
)

// Container wires the bun stores behind their cached decorators and owns
// the single cache.Manager they share.
type Container struct {
	config  cache.Config
	manager *cache.Manager

	challenges   *servicecache.CachedChallengeService
	completions  *servicecache.CachedCompletionService
	rewards      *servicecache.CachedRewardService
	transactions *servicecache.CachedTransactionService
	users        *servicecache.CachedUserService
	leaderboard  *servicecache.CachedLeaderboardService
}

// NewContainer builds the cache manager from config and decorates a store
// for every service. Options are passed through to the manager.
func NewContainer(db *bun.DB, config cache.Config, opts ...cache.Option) (*Container, error) {
	manager, err := cache.NewManager(config, opts...)
	if err != nil {
		return nil, err
	}

	return &Container{
		config:       config,
		manager:      manager,
		challenges:   servicecache.NewChallengeService(store.NewChallengeStore(db), manager),
		completions:  servicecache.NewCompletionService(store.NewCompletionStore(db), manager),
		rewards:      servicecache.NewRewardService(store.NewRewardStore(db), manager),
		transactions: servicecache.NewTransactionService(store.NewTransactionStore(db), manager),
		users:        servicecache.NewUserService(store.NewUserStore(db), manager),
		leaderboard:  servicecache.NewLeaderboardService(store.NewLeaderboardStore(db), manager),
	}, nil
}

// NewContainerWithDefaults uses cache.DefaultConfig.
func NewContainerWithDefaults(db *bun.DB) (*Container, error) {
	return NewContainer(db, cache.DefaultConfig())
}

// Manager returns the shared cache manager, mostly for stats and manual
// invalidation.
func (c *Container) Manager() *cache.Manager {
	return c.manager
}

func (c *Container) KeySerializer() cache.KeySerializer {
	return c.manager.KeySerializer()
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

func (c *Container) Challenges() service.ChallengeService {
	return c.challenges
}

func (c *Container) Completions() service.CompletionService {
	return c.completions
}

func (c *Container) Rewards() service.RewardService {
	return c.rewards
}

func (c *Container) Transactions() service.TransactionService {
	return c.transactions
}

func (c *Container) Users() service.UserService {
	return c.users
}

func (c *Container) Leaderboard() service.LeaderboardService {
	return c.leaderboard
}
