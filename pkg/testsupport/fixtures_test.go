package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/pkg/apperrors"
)

func TestLoadFixture(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	testContent := []byte("test fixture content")

	if err := os.WriteFile(testFile, testContent, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := LoadFixture(t, testFile)
	if string(result) != string(testContent) {
		t.Errorf("expected %q, got %q", testContent, result)
	}
}

func TestLoadFixtureJSON(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.json")
	testData := map[string]interface{}{
		"name":  "test",
		"value": 42,
	}

	jsonData, err := json.Marshal(testData)
	if err != nil {
		t.Fatalf("failed to marshal test data: %v", err)
	}
	if err := os.WriteFile(testFile, jsonData, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	var result map[string]interface{}
	LoadFixtureJSON(t, testFile, &result)

	if result["name"] != "test" {
		t.Errorf("expected name=test, got %v", result["name"])
	}
	if result["value"] != float64(42) { // JSON unmarshals numbers as float64
		t.Errorf("expected value=42, got %v", result["value"])
	}
}

func TestFixturePath(t *testing.T) {
	result := FixturePath("test.json")
	expected := filepath.Join("testdata", "test.json")

	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestLoadDataset(t *testing.T) {
	ds := LoadDataset(t, "campus.json")

	if len(ds.Users) != 3 || len(ds.Challenges) != 2 || len(ds.Rewards) != 1 {
		t.Fatalf("unexpected dataset sizes: %d users, %d challenges, %d rewards",
			len(ds.Users), len(ds.Challenges), len(ds.Rewards))
	}
	if ds.Transactions[0].ID.String() != "0b5c1d1e-8f0a-4f3e-9d61-3c1a6f8d2e01" {
		t.Errorf("expected transaction id to decode, got %s", ds.Transactions[0].ID)
	}
}

func TestOpenSQLite_Isolated(t *testing.T) {
	ctx := context.Background()
	first := OpenSQLite(t)
	second := OpenSQLite(t)

	if _, err := first.NewCreateTable().Model((*model.User)(nil)).Exec(ctx); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := second.NewSelect().Model((*model.User)(nil)).Count(ctx); err == nil {
		t.Error("expected second database to be empty")
	}
}

func TestMemoryStore_Leaderboard(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(LoadDataset(t, "campus.json"))

	page, err := s.GetLeaderboardPage(ctx, 10, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []string{"b", "a", "c"}
	if len(page) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(page))
	}
	for i, id := range want {
		if page[i].UserID != id {
			t.Errorf("rank %d: expected %s, got %s", i+1, id, page[i].UserID)
		}
	}
	if page[2].CoinsSpent != 20 {
		t.Errorf("expected spending to count pending transactions, got %d", page[2].CoinsSpent)
	}

	if _, err := s.GetUserLeaderboardPosition(ctx, "ghost"); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Errorf("expected not found, got %v", err)
	}
	if got := s.Calls("GetLeaderboardPage"); got != 1 {
		t.Errorf("expected one recorded call, got %d", got)
	}
}

func TestMemoryStore_Mutations(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(LoadDataset(t, "campus.json"))
	s.Now = func() time.Time { return time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC) }

	if _, err := s.CreateCompletion(ctx, "c", "Fence", nil, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	days, _ := s.GetUserRecentActivityDays(ctx, "c", 1)
	if len(days) != 1 || !days[0].Equal(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected today's midnight, got %v", days)
	}

	if _, err := s.DecrementStock(ctx, "Sticker", 99); !errors.Is(err, &apperrors.ErrInsufficientStock{}) {
		t.Errorf("expected insufficient stock, got %v", err)
	}

	deleted, err := s.DeleteTransaction(ctx, "0b5c1d1e-8f0a-4f3e-9d61-3c1a6f8d2e01")
	if err != nil || deleted == nil || deleted.UserID != "c" {
		t.Fatalf("expected deleted row for c, got %+v, %v", deleted, err)
	}
	if spent, _ := s.GetUserTotalCoinsSpent(ctx, "c"); spent != 0 {
		t.Errorf("expected no spending after delete, got %d", spent)
	}

	boom := errors.New("down")
	s.Err = boom
	if _, err := s.GetAllRewards(ctx); !errors.Is(err, boom) {
		t.Errorf("expected injected error, got %v", err)
	}
}
