package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const UserIDKey contextKey = "userId"

var ErrNoUser = errors.New("user not found")

// CurrentId retrieves the trusted user id from the context. Identity is
// established by the calling transport layer; this service performs no
// authentication of its own. Returns ErrNoUser if no id is present.
func CurrentId(ctx context.Context) (int, error) {
	id, ok := ctx.Value(UserIDKey).(int)
	if !ok {
		log.Trace("user not found in context")
		return 0, ErrNoUser
	}
	return id, nil
}

func WithId(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}
