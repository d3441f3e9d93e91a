package paymentsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrSourceNotFound = errors.New("payment source not found")

type Repository interface {
	FindByName(ctx context.Context, name string) (PaymentSource, error)
	FindByID(ctx context.Context, id int) (PaymentSource, error)
	Create(ctx context.Context, name string) (PaymentSource, error)
	List(ctx context.Context) ([]PaymentSource, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r RepositoryImpl) FindByName(ctx context.Context, name string) (PaymentSource, error) {
	query := `SELECT id, name, COALESCE(image_url, '') FROM payment_source WHERE lower(name) = lower($1)`
	var source PaymentSource
	err := r.db.QueryRow(ctx, query, strings.TrimSpace(name)).Scan(&source.ID, &source.Name, &source.ImageUrl)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PaymentSource{}, ErrSourceNotFound
		}
		err := fmt.Errorf("could not query payment source: %w", err)
		log.Error(err)
		return PaymentSource{}, err
	}
	return source, nil
}

func (r RepositoryImpl) FindByID(ctx context.Context, id int) (PaymentSource, error) {
	query := `SELECT id, name, COALESCE(image_url, '') FROM payment_source WHERE id = $1`
	var source PaymentSource
	err := r.db.QueryRow(ctx, query, id).Scan(&source.ID, &source.Name, &source.ImageUrl)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PaymentSource{}, ErrSourceNotFound
		}
		err := fmt.Errorf("could not query payment source: %w", err)
		log.Error(err)
		return PaymentSource{}, err
	}
	return source, nil
}

// Create inserts a new source. The unique index on lower(name) is the
// correctness net for concurrent creates of the same name: the losing insert
// lands on the DO NOTHING arm and the existing row is returned instead.
func (r RepositoryImpl) Create(ctx context.Context, name string) (PaymentSource, error) {
	query := `INSERT INTO payment_source (name) VALUES ($1)
				ON CONFLICT (lower(name)) DO NOTHING RETURNING id`
	name = strings.TrimSpace(name)
	var id sql.NullInt64
	err := r.db.QueryRow(ctx, query, name).Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		err := fmt.Errorf("could not create payment source: %w", err)
		log.Error(err)
		return PaymentSource{}, err
	}
	if errors.Is(err, pgx.ErrNoRows) || !id.Valid {
		// Lost the race; the row exists now.
		return r.FindByName(ctx, name)
	}
	return PaymentSource{ID: int(id.Int64), Name: name}, nil
}

func (r RepositoryImpl) List(ctx context.Context) ([]PaymentSource, error) {
	query := `SELECT id, name, COALESCE(image_url, '') FROM payment_source ORDER BY lower(name)`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query payment sources: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var sources []PaymentSource
	for rows.Next() {
		var source PaymentSource
		if err := rows.Scan(&source.ID, &source.Name, &source.ImageUrl); err != nil {
			err := fmt.Errorf("could not scan payment source: %w", err)
			log.Error(err)
			return nil, err
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return sources, nil
}
