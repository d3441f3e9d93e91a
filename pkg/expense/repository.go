package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Reader is the read-only boundary to expense data. Expense CRUD belongs to
// an external collaborator; the ledger and the notification deriver only
// consume totals, counts, and recent entries over half-open [from, to) ranges.
type Reader interface {
	SumByKinds(ctx context.Context, userId int, categoryId int, kinds []Kind, from time.Time, to time.Time) (int64, error)
	CountByKinds(ctx context.Context, userId int, categoryId int, kinds []Kind, from time.Time, to time.Time) (int, error)
	ListByKind(ctx context.Context, userId int, categoryId int, kind Kind, from time.Time, to time.Time) ([]Expense, error)
	ListForUser(ctx context.Context, userId int, from time.Time, to time.Time) ([]Expense, error)
}

type ReaderImpl struct {
	db *pgxpool.Pool
}

func NewReader(db *pgxpool.Pool) *ReaderImpl {
	return &ReaderImpl{db: db}
}

func (r ReaderImpl) SumByKinds(ctx context.Context, userId int, categoryId int, kinds []Kind, from time.Time, to time.Time) (int64, error) {
	query := `SELECT COALESCE(SUM(amount_paise), 0) FROM expense
				WHERE user_id = $1 AND category_id = $2 AND kind = ANY($3)
				AND spent_at >= $4 AND spent_at < $5`
	var sum int64
	err := r.db.QueryRow(ctx, query, userId, categoryId, kindStrings(kinds), from, to).Scan(&sum)
	if err != nil {
		err := fmt.Errorf("could not sum expenses: %w", err)
		log.Error(err)
		return 0, err
	}
	return sum, nil
}

func (r ReaderImpl) CountByKinds(ctx context.Context, userId int, categoryId int, kinds []Kind, from time.Time, to time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM expense
				WHERE user_id = $1 AND category_id = $2 AND kind = ANY($3)
				AND spent_at >= $4 AND spent_at < $5`
	var count int
	err := r.db.QueryRow(ctx, query, userId, categoryId, kindStrings(kinds), from, to).Scan(&count)
	if err != nil {
		err := fmt.Errorf("could not count expenses: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}

func (r ReaderImpl) ListByKind(ctx context.Context, userId int, categoryId int, kind Kind, from time.Time, to time.Time) ([]Expense, error) {
	query := `SELECT id, kind, amount_paise, note, spent_at FROM expense
				WHERE user_id = $1 AND category_id = $2 AND kind = $3
				AND spent_at >= $4 AND spent_at < $5 ORDER BY spent_at DESC`
	rows, err := r.db.Query(ctx, query, userId, categoryId, string(kind), from, to)
	if err != nil {
		err := fmt.Errorf("could not query expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.AmountPaise, &e.Note, &e.SpentAt); err != nil {
			err := fmt.Errorf("could not scan expense: %w", err)
			log.Error(err)
			return nil, err
		}
		e.UserID = userId
		e.CategoryID = categoryId
		e.Kind = Kind(kind)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return expenses, nil
}

func (r ReaderImpl) ListForUser(ctx context.Context, userId int, from time.Time, to time.Time) ([]Expense, error) {
	query := `SELECT id, category_id, kind, amount_paise, note, spent_at FROM expense
				WHERE user_id = $1 AND spent_at >= $2 AND spent_at < $3 ORDER BY spent_at DESC`
	rows, err := r.db.Query(ctx, query, userId, from, to)
	if err != nil {
		err := fmt.Errorf("could not query expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		var kind string
		if err := rows.Scan(&e.ID, &e.CategoryID, &kind, &e.AmountPaise, &e.Note, &e.SpentAt); err != nil {
			err := fmt.Errorf("could not scan expense: %w", err)
			log.Error(err)
			return nil, err
		}
		e.UserID = userId
		e.Kind = Kind(kind)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return expenses, nil
}

func kindStrings(kinds []Kind) []string {
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, string(k))
	}
	return out
}
