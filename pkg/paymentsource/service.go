package paymentsource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

var ErrEmptyName = errors.New("payment source name is empty")

// Service is the registry behind allocation splits: free-text bank names are
// resolved to a stable identity, never matched ad hoc at call sites.
type Service interface {
	// Resolve returns the source with the given name, creating it when no
	// source exists yet. Matching is trimmed and case-insensitive, so
	// "HDFC" and "hdfc" always resolve to the same identity.
	Resolve(ctx context.Context, name string) (PaymentSource, error)
	Get(ctx context.Context, id int) (PaymentSource, error)
	List(ctx context.Context) ([]PaymentSource, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Resolve(ctx context.Context, name string) (PaymentSource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PaymentSource{}, ErrEmptyName
	}
	source, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return source, nil
	}
	if !errors.Is(err, ErrSourceNotFound) {
		return PaymentSource{}, fmt.Errorf("failed to look up payment source %q: %w", name, err)
	}
	log.Debugf("payment source %q not known yet, creating it", name)
	return s.repo.Create(ctx, name)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (PaymentSource, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImpl) List(ctx context.Context) ([]PaymentSource, error) {
	return s.repo.List(ctx)
}
