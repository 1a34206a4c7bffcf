package di

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-leaderboard-cache/cache"
	"github.com/goliatone/go-leaderboard-cache/pkg/testsupport"
	"github.com/goliatone/go-leaderboard-cache/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

func newCampusDB(t testing.TB) *bun.DB {
	t.Helper()

	db := testsupport.OpenSQLite(t)
	if err := store.CreateSchema(context.Background(), db); err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	testsupport.Seed(t, db, testsupport.LoadDataset(t, "campus.json"))
	return db
}

func partitionStats(c *Container, name string) cache.PartitionStats {
	for _, s := range c.Manager().Stats() {
		if s.Name == name {
			return s
		}
	}
	return cache.PartitionStats{}
}

func TestNewContainer(t *testing.T) {
	config := cache.Config{
		Backend:      cache.BackendLRU,
		MaxKeyLength: 64,
		Capacities:   map[string]int{cache.PartitionLeaderboardPages: 5},
	}

	container, err := NewContainer(newCampusDB(t), config, cache.WithRegisterer(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	if container.Manager() == nil {
		t.Fatal("Container should have a non-nil manager")
	}
	if container.KeySerializer() == nil {
		t.Error("Container should have a non-nil key serializer")
	}
	if got := container.Config().Backend; got != cache.BackendLRU {
		t.Errorf("Expected backend %q, got %q", cache.BackendLRU, got)
	}
	if got := partitionStats(container, cache.PartitionLeaderboardPages).Capacity; got != 5 {
		t.Errorf("Expected leaderboard capacity 5, got %d", got)
	}
}

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults(newCampusDB(t))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	defaults := cache.DefaultConfig()
	config := container.Config()
	if config.Backend != defaults.Backend {
		t.Errorf("Expected default backend %q, got %q", defaults.Backend, config.Backend)
	}
	if config.TTL != defaults.TTL {
		t.Errorf("Expected default TTL %v, got %v", defaults.TTL, config.TTL)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	_, err := NewContainer(newCampusDB(t), cache.Config{Backend: "redis"})
	if err == nil {
		t.Error("NewContainer() should fail with invalid config")
	}
}

func TestContainerSingletonBehavior(t *testing.T) {
	container, err := NewContainerWithDefaults(newCampusDB(t))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	if container.Leaderboard() != container.Leaderboard() {
		t.Error("Leaderboard() should return the same instance")
	}
	if container.Manager() != container.Manager() {
		t.Error("Manager() should return the same instance")
	}
}

func TestEndToEndLeaderboardFlow(t *testing.T) {
	container, err := NewContainerWithDefaults(newCampusDB(t))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	ctx := context.Background()
	board := container.Leaderboard()

	page, err := board.GetLeaderboardPage(ctx, 2, nil)
	if err != nil {
		t.Fatalf("GetLeaderboardPage() failed: %v", err)
	}
	if len(page) != 2 || page[0].UserID != "b" || page[1].UserID != "a" {
		t.Fatalf("Expected first page [b a], got %+v", page)
	}
	if page[0].NetCoins() != 130 {
		t.Errorf("Expected b to hold 130 coins, got %d", page[0].NetCoins())
	}

	// Second read is served from the cache.
	if _, err := board.GetLeaderboardPage(ctx, 2, nil); err != nil {
		t.Fatalf("GetLeaderboardPage() failed: %v", err)
	}
	if hits := partitionStats(container, cache.PartitionLeaderboardPages).Hits; hits != 1 {
		t.Errorf("Expected 1 leaderboard hit, got %d", hits)
	}

	position, err := board.GetUserLeaderboardPosition(ctx, "c")
	if err != nil {
		t.Fatalf("GetUserLeaderboardPosition() failed: %v", err)
	}
	if position != 3 {
		t.Errorf("Expected c at position 3, got %d", position)
	}

	// c completes Fence: 100 + 30 - 20 spent puts c above a.
	if _, err := container.Completions().CreateCompletion(ctx, "c", "Fence", nil, nil); err != nil {
		t.Fatalf("CreateCompletion() failed: %v", err)
	}

	position, err = board.GetUserLeaderboardPosition(ctx, "c")
	if err != nil {
		t.Fatalf("GetUserLeaderboardPosition() failed: %v", err)
	}
	if position != 2 {
		t.Errorf("Expected c at position 2 after completing Fence, got %d", position)
	}

	after := int64(1)
	page, err = board.GetLeaderboardPage(ctx, 2, &after)
	if err != nil {
		t.Fatalf("GetLeaderboardPage() failed: %v", err)
	}
	if len(page) != 2 || page[0].UserID != "c" || page[0].NetCoins() != 110 || page[1].UserID != "a" {
		t.Errorf("Expected [c a] after rank 1, got %+v", page)
	}
}

func TestEndToEndNewUserIsRanked(t *testing.T) {
	container, err := NewContainerWithDefaults(newCampusDB(t))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	ctx := context.Background()

	page, err := container.Leaderboard().GetLeaderboardPage(ctx, 10, nil)
	if err != nil {
		t.Fatalf("GetLeaderboardPage() failed: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("Expected 3 ranked users, got %d", len(page))
	}

	_, created, err := container.Users().GetOrCreateUser(ctx, "d", "Dana")
	if err != nil {
		t.Fatalf("GetOrCreateUser() failed: %v", err)
	}
	if !created {
		t.Fatal("Expected d to be created")
	}

	page, err = container.Leaderboard().GetLeaderboardPage(ctx, 10, nil)
	if err != nil {
		t.Fatalf("GetLeaderboardPage() failed: %v", err)
	}
	if len(page) != 4 || page[3].UserID != "d" || page[3].Rank != 4 {
		t.Errorf("Expected d ranked last at 4, got %+v", page)
	}
}

func TestEndToEndRewardStock(t *testing.T) {
	container, err := NewContainerWithDefaults(newCampusDB(t))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	ctx := context.Background()
	rewards := container.Rewards()

	before, err := rewards.GetRewardByName(ctx, "Sticker")
	if err != nil || before == nil {
		t.Fatalf("GetRewardByName() = %v, %v", before, err)
	}

	if _, err := rewards.DecrementStock(ctx, "Sticker", 2); err != nil {
		t.Fatalf("DecrementStock() failed: %v", err)
	}

	after, err := rewards.GetRewardByName(ctx, "Sticker")
	if err != nil {
		t.Fatalf("GetRewardByName() failed: %v", err)
	}
	if after.Stock != before.Stock-2 {
		t.Errorf("Expected stock %d, got %d", before.Stock-2, after.Stock)
	}
}

func TestConcurrentLeaderboardReads(t *testing.T) {
	container, err := NewContainerWithDefaults(newCampusDB(t))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := container.Leaderboard().GetLeaderboardPage(ctx, 3, nil)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := container.Leaderboard().GetUserLeaderboardPosition(ctx, "a")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent read failed: %v", err)
		}
	}
}

func BenchmarkLeaderboardPage(b *testing.B) {
	db := newCampusDB(b)
	ctx := context.Background()

	b.Run("store", func(b *testing.B) {
		leaderboard := store.NewLeaderboardStore(db)
		for i := 0; i < b.N; i++ {
			if _, err := leaderboard.GetLeaderboardPage(ctx, 20, nil); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("cached", func(b *testing.B) {
		container, err := NewContainerWithDefaults(db)
		if err != nil {
			b.Fatal(err)
		}
		leaderboard := container.Leaderboard()
		for i := 0; i < b.N; i++ {
			if _, err := leaderboard.GetLeaderboardPage(ctx, 20, nil); err != nil {
				b.Fatal(err)
			}
		}
	})
}
