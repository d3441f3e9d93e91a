package paymentsource

import (
	"context"
	"strings"
)

type RepositoryStub struct {
	nextId  int
	sources map[int]PaymentSource
}

func NewStubRepository() *RepositoryStub {
	return &RepositoryStub{sources: map[int]PaymentSource{}}
}

func (s *RepositoryStub) FindByName(ctx context.Context, name string) (PaymentSource, error) {
	for _, source := range s.sources {
		if strings.EqualFold(source.Name, strings.TrimSpace(name)) {
			return source, nil
		}
	}
	return PaymentSource{}, ErrSourceNotFound
}

func (s *RepositoryStub) FindByID(ctx context.Context, id int) (PaymentSource, error) {
	if source, ok := s.sources[id]; ok {
		return source, nil
	}
	return PaymentSource{}, ErrSourceNotFound
}

func (s *RepositoryStub) Create(ctx context.Context, name string) (PaymentSource, error) {
	if existing, err := s.FindByName(ctx, name); err == nil {
		return existing, nil
	}
	s.nextId++
	source := PaymentSource{ID: s.nextId, Name: strings.TrimSpace(name)}
	s.sources[source.ID] = source
	return source, nil
}

func (s *RepositoryStub) List(ctx context.Context) ([]PaymentSource, error) {
	out := make([]PaymentSource, 0, len(s.sources))
	for _, source := range s.sources {
		out = append(out, source)
	}
	return out, nil
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.sources = map[int]PaymentSource{}
}
