package service

import (
	"context"
	"strings"
	"time"

	"Connectify/module/user/model"
	"Connectify/module/user/store"
	"Connectify/tools/errs"
	"Connectify/tools/ids"
	"Connectify/tools/security"

	"golang.org/x/crypto/bcrypt"
)

// Auth is the identity collaborator: it issues tokens, records sessions
// and is the only thing both transports trust to say who a connection
// is. The chat core never sees a raw token, only a verified user id.
type Auth struct {
	Users    store.UserStore
	Sessions SessionStore
	JWT      security.Options
}

func NewAuth(users store.UserStore, sessions SessionStore, jwt security.Options) *Auth {
	return &Auth{Users: users, Sessions: sessions, JWT: jwt}
}

func (a *Auth) Register(ctx context.Context, username, password, avatar string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 30 {
		return nil, "", errs.Validation("username must be 3-30 characters")
	}
	if len(password) < 6 {
		return nil, "", errs.Validation("password must be at least 6 characters")
	}

	existing, err := a.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", errs.WrapStore(err, "lookup username")
	}
	if existing != nil {
		return nil, "", errs.Validation("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		ID:           ids.GenerateString(),
		Username:     username,
		Avatar:       avatar,
		Status:       model.StatusOffline,
		LastSeen:     time.Now().UnixMilli(),
		PasswordHash: string(hash),
	}
	if err := a.Users.Insert(ctx, u); err != nil {
		return nil, "", errs.WrapStore(err, "insert user")
	}

	token, err := a.issue(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (a *Auth) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	u, err := a.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, "", errs.WrapStore(err, "lookup username")
	}
	// Same failure for unknown user and wrong password.
	if u == nil {
		return nil, "", errs.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", errs.ErrUnauthorized
	}

	token, err := a.issue(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// VerifyToken validates signature and session liveness, returning the
// user id. Used by the REST middleware and the gateway handshake.
func (a *Auth) VerifyToken(ctx context.Context, token string) (string, error) {
	userID, err := security.Verify(a.JWT, token)
	if err != nil {
		return "", errs.ErrUnauthorized.WrapMsg("verify token", "cause", err.Error())
	}
	ok, err := a.Sessions.Exists(ctx, userID, security.HashToken(token))
	if err != nil {
		return "", errs.WrapStore(err, "check session")
	}
	if !ok {
		return "", errs.ErrUnauthorized
	}
	return userID, nil
}

// Logout drops the session record; the JWT becomes useless immediately.
func (a *Auth) Logout(ctx context.Context, userID, token string) error {
	return a.Sessions.Delete(ctx, userID, security.HashToken(token))
}

func (a *Auth) issue(ctx context.Context, userID string) (string, error) {
	token, expireAt, err := security.Generate(a.JWT, userID)
	if err != nil {
		return "", err
	}
	if err := a.Sessions.Put(ctx, userID, security.HashToken(token), time.Until(expireAt)); err != nil {
		return "", errs.WrapStore(err, "store session")
	}
	return token, nil
}
