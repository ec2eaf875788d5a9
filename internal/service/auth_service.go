package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Fraol-M/metta-assistant/internal/model"
	appErr "github.com/Fraol-M/metta-assistant/internal/pkg/errors"
	"github.com/Fraol-M/metta-assistant/internal/pkg/jwt"
	"github.com/Fraol-M/metta-assistant/internal/pkg/password"
)

type AuthService struct {
	users  UserStore
	signer *jwt.Signer
}

func NewAuthService(users UserStore, signer *jwt.Signer) *AuthService {
	return &AuthService{users: users, signer: signer}
}

// Signup creates an account and returns its id. The role is frozen into
// tokens at issuance; changing it later only takes effect on refresh.
func (s *AuthService) Signup(ctx context.Context, email, plainPassword, role string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return "", appErr.ErrInvalid
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return "", err
	}
	now := time.Now().Unix()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}
	return user.ID, nil
}

// Login verifies credentials and issues an access+refresh pair. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (string, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", "", appErr.ErrUnauthorized
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", "", appErr.ErrUnauthorized
	}
	return s.signer.IssuePair(user.ID, user.Role)
}

// Refresh validates a refresh token, confirms the subject still exists and
// issues a new pair. Rotation is advisory: the old refresh token is not
// tracked and stays valid until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.signer.ParseRefresh(refreshToken)
	if err != nil {
		return "", "", err
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", appErr.ErrUnauthorized
	}
	return s.signer.IssuePair(user.ID, user.Role)
}

// EnsureAdmin seeds the bootstrap admin account if it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, plainPassword string) error {
	if email == "" || plainPassword == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, strings.ToLower(email)); err == nil {
		return nil
	} else if !appErr.IsNotFound(err) {
		return err
	}
	id, err := s.Signup(ctx, email, plainPassword, model.RoleAdmin)
	if err != nil {
		if appErr.IsConflict(err) {
			return nil
		}
		return err
	}
	logutil.GetLogger(ctx).Info("bootstrap admin created", zap.String("user_id", id))
	return nil
}
