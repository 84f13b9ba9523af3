package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrUserDataInvalid = errors.New("invalid user data")

// MaxImageLength bounds the profile image, which is stored inline as a data URL.
const MaxImageLength = 3 << 20

type Service interface {
	Login(ctx context.Context, name, email string) (User, string, error)
	Logout(ctx context.Context, token string) error
	ResolveSession(ctx context.Context, token string) (User, error)
	GetCurrentUser(ctx context.Context) (User, error)
	UpdateProfile(ctx context.Context, name, image string) (User, error)
	ToggleTheme(ctx context.Context) (User, error)
}

type UserServiceImpl struct {
	repo     Repo
	sessions SessionStore
}

func NewUserService(repo Repo, sessions SessionStore) *UserServiceImpl {
	return &UserServiceImpl{repo: repo, sessions: sessions}
}

// Login signs in the identity with the given email, creating it on first login. Empty fields
// fall back to the default identity.
func (u *UserServiceImpl) Login(ctx context.Context, name, email string) (User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		name = DefaultName
	}
	if email == "" {
		email = DefaultEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, "", fmt.Errorf("%w: email %q", ErrUserDataInvalid, email)
	}

	user, err := u.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		user = User{Uid: uuid.NewString(), Name: name, Email: email, Theme: LightTheme}
		user.Id, err = u.repo.CreateUser(ctx, user)
		if err != nil {
			return User{}, "", fmt.Errorf("failed to create user: %w", err)
		}
		log.Infof("created user %s", user.Uid)
	} else if err != nil {
		return User{}, "", err
	}

	token, err := u.sessions.Create(ctx, user.Id)
	if err != nil {
		return User{}, "", err
	}
	log.Debugf("user %s signed in", user.Uid)
	return user, token, nil
}

func (u *UserServiceImpl) Logout(ctx context.Context, token string) error {
	return u.sessions.Delete(ctx, token)
}

func (u *UserServiceImpl) ResolveSession(ctx context.Context, token string) (User, error) {
	userId, err := u.sessions.Lookup(ctx, token)
	if err != nil {
		return User{}, err
	}
	user, err := u.repo.GetUser(ctx, userId)
	if errors.Is(err, ErrUserNotFound) {
		// The user is gone, so is the session.
		_ = u.sessions.Delete(ctx, token)
		return User{}, ErrSessionNotFound
	}
	return user, err
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.repo.GetUser(ctx, userId)
}

func (u *UserServiceImpl) UpdateProfile(ctx context.Context, name, image string) (User, error) {
	current, err := u.GetCurrentUser(ctx)
	if err != nil {
		return User{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrUserDataInvalid)
	}
	if !validImage(image) {
		return User{}, fmt.Errorf("%w: image must be a data URL or an http(s) URL up to 3MB", ErrUserDataInvalid)
	}
	current.Name = name
	current.Image = image
	return u.repo.UpdateUser(ctx, current.Id, current)
}

func (u *UserServiceImpl) ToggleTheme(ctx context.Context) (User, error) {
	current, err := u.GetCurrentUser(ctx)
	if err != nil {
		return User{}, err
	}
	current.Theme = current.Theme.Toggled()
	return u.repo.UpdateUser(ctx, current.Id, current)
}

func validImage(image string) bool {
	if image == "" {
		return true
	}
	if len(image) > MaxImageLength {
		return false
	}
	return strings.HasPrefix(image, "data:image/") ||
		strings.HasPrefix(image, "https://") ||
		strings.HasPrefix(image, "http://")
}
