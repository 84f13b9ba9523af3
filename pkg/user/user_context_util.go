package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type userKey struct{}

type sessionKey struct{}

var ErrNoUser = errors.New("user not found")

// CurrentId retrieves the signed in user's id from the context. It returns ErrNoUser when the
// request carries no session.
func CurrentId(ctx context.Context) (int, error) {
	u, err := CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	return u.Id, nil
}

func CurrentUser(ctx context.Context) (User, error) {
	u, ok := ctx.Value(userKey{}).(User)
	if !ok {
		log.Trace("no signed in user in context")
		return User{}, ErrNoUser
	}
	return u, nil
}

// WithSession stores the signed in user together with the session token that resolved to it.
func WithSession(ctx context.Context, u User, token string) context.Context {
	ctx = context.WithValue(ctx, sessionKey{}, token)
	return WithUser(ctx, u)
}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// CurrentSessionToken returns the token of the session the request was authenticated with, or
// an empty string.
func CurrentSessionToken(ctx context.Context) string {
	token, _ := ctx.Value(sessionKey{}).(string)
	return token
}
