package store

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/pkg/apperrors"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var _ service.TransactionService = (*TransactionStore)(nil)

type TransactionStore struct {
	db           *bun.DB
	transactions repository.Repository[*model.Transaction]
	now          func() time.Time
}

func NewTransactionStore(db *bun.DB) *TransactionStore {
	return &TransactionStore{db: db, transactions: newTransactionRepository(db), now: time.Now}
}

func parseTransactionID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, &apperrors.ErrInvalidIdentifier{Kind: "transaction", Value: id}
	}
	return parsed, nil
}

func (s *TransactionStore) findTransaction(ctx context.Context, db bun.IDB, id uuid.UUID) (*model.Transaction, error) {
	return findOne(ctx, s.transactions, db, "get transaction", whereEq("id", id))
}

func (s *TransactionStore) CreateTransaction(ctx context.Context, userID, rewardName string, count int) (*model.Transaction, error) {
	tx := &model.Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		RewardName: rewardName,
		Count:      count,
		Timestamp:  s.now().UTC(),
		Status:     model.TransactionPending,
	}
	created, err := s.transactions.Create(ctx, tx)
	if err != nil {
		return nil, apperrors.NewStoreError("create transaction", err)
	}
	return created, nil
}

func (s *TransactionStore) DeleteTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	parsed, err := parseTransactionID(id)
	if err != nil {
		return nil, err
	}

	var deleted *model.Transaction
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, err := s.findTransaction(ctx, tx, parsed)
		if err != nil || row == nil {
			return err
		}
		if err := s.transactions.DeleteTx(ctx, tx, row); err != nil {
			return apperrors.NewStoreError("delete transaction", err)
		}
		deleted = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *TransactionStore) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	parsed, err := parseTransactionID(id)
	if err != nil {
		return nil, err
	}
	return s.findTransaction(ctx, s.db, parsed)
}

func (s *TransactionStore) UpdateTransactionStatus(ctx context.Context, id, status string) (*model.Transaction, error) {
	parsed, err := parseTransactionID(id)
	if err != nil {
		return nil, err
	}

	var updated *model.Transaction
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, err := s.findTransaction(ctx, tx, parsed)
		if err != nil || row == nil {
			return err
		}
		row.Status = status
		if _, err := s.transactions.UpdateTx(ctx, tx, row, setColumn("status", status)); err != nil {
			return apperrors.NewStoreError("update transaction status", err)
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TransactionStore) GetUserTotalCounts(ctx context.Context, userID string) (map[string]int, error) {
	var rows []struct {
		RewardName string `bun:"reward_name"`
		Total      int    `bun:"total"`
	}
	err := s.db.NewSelect().
		Model((*model.Transaction)(nil)).
		Column("reward_name").
		ColumnExpr("SUM(t.count) AS total").
		Where("user_id = ?", userID).
		Group("reward_name").
		Scan(ctx, &rows)
	if err != nil {
		return nil, apperrors.NewStoreError("count user purchases", err)
	}

	totals := make(map[string]int, len(rows))
	for _, row := range rows {
		totals[row.RewardName] = row.Total
	}
	return totals, nil
}

func (s *TransactionStore) GetUserTotalCoinsSpent(ctx context.Context, userID string) (int, error) {
	var total int
	err := s.db.NewSelect().
		TableExpr("transactions AS t").
		Join("JOIN rewards AS r ON r.name = t.reward_name").
		ColumnExpr("COALESCE(SUM(t.count * r.cost), 0)").
		Where("t.user_id = ?", userID).
		Scan(ctx, &total)
	if err != nil {
		return 0, apperrors.NewStoreError("sum coins spent", err)
	}
	return total, nil
}

func (s *TransactionStore) GetUserRewardTransactions(ctx context.Context, userID, rewardName string) ([]model.Transaction, error) {
	txs := []model.Transaction{}
	err := s.db.NewSelect().
		Model(&txs).
		Where("user_id = ?", userID).
		Where("reward_name = ?", rewardName).
		OrderExpr("? ASC", bun.Ident("timestamp")).
		Scan(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("get user reward transactions", err)
	}
	return txs, nil
}
