package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"complianceadvisor/internal/auth"
	"complianceadvisor/internal/cache"
	apperrors "complianceadvisor/internal/errors"
	"complianceadvisor/internal/model"
	"complianceadvisor/internal/repository"
)

const (
	bcryptCost   = 10
	userCacheTTL = 5 * time.Minute
)

// dummyHash is compared against when a username is unknown, so a miss costs
// the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("no-such-user"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return h
})

// AuthService is the credential store plus session issuing.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (token string, session auth.Session, err error)
	Logout(ctx context.Context, session auth.Session) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	ResolveSession(ctx context.Context, claims *auth.Claims) (auth.Session, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	sessions   auth.SessionStore
	cache      *cache.Client
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, sessions auth.SessionStore, cache *cache.Client) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		sessions:   sessions,
		cache:      cache,
	}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *authService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.ErrMissingCredentials
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUsernameTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hashed),
	}
	// The unique index still catches a concurrent registration of the same name.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies the credentials. Unknown usernames and wrong
// passwords both return ErrInvalidCredentials after the same hashing work.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates the user and issues a session token.
func (s *authService) Login(ctx context.Context, username, password string) (string, auth.Session, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", auth.Session{}, err
	}

	token, claims, err := s.jwtService.Issue(user.ID, user.Username)
	if err != nil {
		return "", auth.Session{}, fmt.Errorf("issue session token: %w", err)
	}
	return token, sessionFromClaims(claims), nil
}

// Logout revokes the session token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, session auth.Session) error {
	if err := s.sessions.Revoke(ctx, session.TokenID, session.RemainingTTL(time.Now())); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// GetByID loads a user, served from cache when possible. Users never change
// after registration, so cached entries cannot go stale.
func (s *authService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, userCacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, userCacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// ResolveSession turns validated token claims into a session, rejecting
// revoked tokens and users that no longer exist.
func (s *authService) ResolveSession(ctx context.Context, claims *auth.Claims) (auth.Session, error) {
	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return auth.Session{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return auth.Session{}, apperrors.ErrUnauthenticated
	}

	user, err := s.GetByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return auth.Session{}, apperrors.ErrUnauthenticated
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("load session user: %w", err)
	}

	session := sessionFromClaims(claims)
	session.Username = user.Username
	return session, nil
}

func sessionFromClaims(claims *auth.Claims) auth.Session {
	session := auth.Session{
		UserID:   claims.UserID,
		Username: claims.Username,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session
}

func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}
