package allocation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// Upsert sets the amount allocated from one source to one budget,
	// inserting the row when it does not exist yet.
	Upsert(ctx context.Context, userId int, budgetId int, sourceId int, amountPaise int64) (Allocation, error)
	// DeleteMissing removes the budget's allocations whose source is not in
	// keepSourceIds. An empty keep list removes all of them.
	DeleteMissing(ctx context.Context, userId int, budgetId int, keepSourceIds []int) (int64, error)
	ListForBudget(ctx context.Context, userId int, budgetId int) ([]Allocation, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

// Upsert relies on the unique index over (user_id, budget_id, source_id):
// two concurrent upserts for a brand-new pair cannot produce a duplicate row,
// the loser simply lands on the DO UPDATE arm.
func (r RepositoryImpl) Upsert(ctx context.Context, userId int, budgetId int, sourceId int, amountPaise int64) (Allocation, error) {
	query := `INSERT INTO budget_allocation (user_id, budget_id, source_id, amount_paise)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (user_id, budget_id, source_id) DO UPDATE SET amount_paise = EXCLUDED.amount_paise
				RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query, userId, budgetId, sourceId, amountPaise).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not upsert allocation: %w", err)
		log.Error(err)
		return Allocation{}, err
	}
	return Allocation{ID: id, UserID: userId, BudgetID: budgetId, SourceID: sourceId, AmountPaise: amountPaise}, nil
}

func (r RepositoryImpl) DeleteMissing(ctx context.Context, userId int, budgetId int, keepSourceIds []int) (int64, error) {
	query := `DELETE FROM budget_allocation
				WHERE user_id = $1 AND budget_id = $2 AND NOT (source_id = ANY($3))`
	result, err := r.db.Exec(ctx, query, userId, budgetId, keepSourceIds)
	if err != nil {
		err := fmt.Errorf("could not delete allocations: %w", err)
		log.Error(err)
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (r RepositoryImpl) ListForBudget(ctx context.Context, userId int, budgetId int) ([]Allocation, error) {
	query := `SELECT a.id, a.source_id, s.name, a.amount_paise
				FROM budget_allocation a
				JOIN payment_source s ON s.id = a.source_id
				WHERE a.user_id = $1 AND a.budget_id = $2
				ORDER BY lower(s.name)`
	rows, err := r.db.Query(ctx, query, userId, budgetId)
	if err != nil {
		err := fmt.Errorf("could not query allocations: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var allocations []Allocation
	for rows.Next() {
		a := Allocation{UserID: userId, BudgetID: budgetId}
		if err := rows.Scan(&a.ID, &a.SourceID, &a.SourceName, &a.AmountPaise); err != nil {
			err := fmt.Errorf("could not scan allocation: %w", err)
			log.Error(err)
			return nil, err
		}
		allocations = append(allocations, a)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return allocations, nil
}
