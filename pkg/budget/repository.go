package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hisabi/hisabi/pkg/period"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrBudgetNotFound = errors.New("budget not found")

type Repository interface {
	Find(ctx context.Context, userId int, categoryId int, p period.Period) (Budget, error)
	FindByID(ctx context.Context, userId int, budgetId int) (Budget, error)
	// FindLatestUpTo returns the most recent budget for the category with
	// period <= p. This single query serves both the exact lookup hit and
	// the carry-forward fallback.
	FindLatestUpTo(ctx context.Context, userId int, categoryId int, p period.Period) (Budget, error)
	FindLatestUpToBulk(ctx context.Context, userId int, categoryIds []int, p period.Period) ([]Budget, error)
	Insert(ctx context.Context, userId int, categoryId int, p period.Period, amountPaise int64) (Budget, error)
	UpdateAmount(ctx context.Context, userId int, budgetId int, amountPaise int64) (bool, error)
	Exists(ctx context.Context, userId int, budgetId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r RepositoryImpl) Find(ctx context.Context, userId int, categoryId int, p period.Period) (Budget, error) {
	query := `SELECT id, amount_paise FROM budget
				WHERE user_id = $1 AND category_id = $2 AND period = $3`
	budget := Budget{UserID: userId, CategoryID: categoryId, Period: p}
	err := r.db.QueryRow(ctx, query, userId, categoryId, p.Start()).Scan(&budget.ID, &budget.AmountPaise)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Budget{}, ErrBudgetNotFound
		}
		err := fmt.Errorf("could not query budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	return budget, nil
}

func (r RepositoryImpl) FindByID(ctx context.Context, userId int, budgetId int) (Budget, error) {
	query := `SELECT id, category_id, period, amount_paise FROM budget
				WHERE id = $1 AND user_id = $2`
	var budget Budget
	var periodDate time.Time
	err := r.db.QueryRow(ctx, query, budgetId, userId).
		Scan(&budget.ID, &budget.CategoryID, &periodDate, &budget.AmountPaise)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Budget{}, ErrBudgetNotFound
		}
		err := fmt.Errorf("could not query budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	budget.UserID = userId
	budget.Period = period.Normalize(periodDate)
	return budget, nil
}

func (r RepositoryImpl) FindLatestUpTo(ctx context.Context, userId int, categoryId int, p period.Period) (Budget, error) {
	query := `SELECT id, period, amount_paise FROM budget
				WHERE user_id = $1 AND category_id = $2 AND period <= $3
				ORDER BY period DESC LIMIT 1`
	budget := Budget{UserID: userId, CategoryID: categoryId}
	var periodDate time.Time
	err := r.db.QueryRow(ctx, query, userId, categoryId, p.Start()).
		Scan(&budget.ID, &periodDate, &budget.AmountPaise)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Budget{}, ErrBudgetNotFound
		}
		err := fmt.Errorf("could not query budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	budget.Period = period.Normalize(periodDate)
	return budget, nil
}

func (r RepositoryImpl) FindLatestUpToBulk(ctx context.Context, userId int, categoryIds []int, p period.Period) ([]Budget, error) {
	query := `SELECT DISTINCT ON (category_id) id, category_id, period, amount_paise FROM budget
				WHERE user_id = $1 AND category_id = ANY($2) AND period <= $3
				ORDER BY category_id, period DESC`
	rows, err := r.db.Query(ctx, query, userId, categoryIds, p.Start())
	if err != nil {
		err := fmt.Errorf("could not query budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var budgets []Budget
	for rows.Next() {
		budget := Budget{UserID: userId}
		var periodDate time.Time
		if err := rows.Scan(&budget.ID, &budget.CategoryID, &periodDate, &budget.AmountPaise); err != nil {
			err := fmt.Errorf("could not scan budget: %w", err)
			log.Error(err)
			return nil, err
		}
		budget.Period = period.Normalize(periodDate)
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return budgets, nil
}

// Insert creates the row for a (user, category, period) key. The unique
// index on that key is the correctness net for two concurrent first-of-month
// upserts: the losing insert lands on the DO UPDATE arm instead of producing
// a duplicate row.
func (r RepositoryImpl) Insert(ctx context.Context, userId int, categoryId int, p period.Period, amountPaise int64) (Budget, error) {
	query := `INSERT INTO budget (user_id, category_id, period, amount_paise)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (user_id, category_id, period) DO UPDATE SET amount_paise = EXCLUDED.amount_paise
				RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query, userId, categoryId, p.Start(), amountPaise).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not insert budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	return Budget{ID: id, UserID: userId, CategoryID: categoryId, Period: p, AmountPaise: amountPaise}, nil
}

func (r RepositoryImpl) UpdateAmount(ctx context.Context, userId int, budgetId int, amountPaise int64) (bool, error) {
	query := `UPDATE budget SET amount_paise = $1 WHERE id = $2 AND user_id = $3`
	result, err := r.db.Exec(ctx, query, amountPaise, budgetId, userId)
	if err != nil {
		err := fmt.Errorf("could not update budget: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r RepositoryImpl) Exists(ctx context.Context, userId int, budgetId int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM budget WHERE id = $1 AND user_id = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, budgetId, userId).Scan(&exists)
	if err != nil {
		err := fmt.Errorf("could not check budget existence: %w", err)
		log.Error(err)
		return false, err
	}
	return exists, nil
}
