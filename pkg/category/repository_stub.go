package category

import "context"

type RepositoryStub struct {
	Categories []Category
}

func NewStubRepository() *RepositoryStub {
	return &RepositoryStub{}
}

func (s *RepositoryStub) ListForUser(ctx context.Context, userId int) ([]Category, error) {
	var out []Category
	for _, c := range s.Categories {
		if c.UserID == userId {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *RepositoryStub) Cleanup() {
	s.Categories = nil
}
