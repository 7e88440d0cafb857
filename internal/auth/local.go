package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/storage"
)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LocalProvider keeps users in the remote store and issues HS256 tokens.
// Revoked token ids live in memory until they would have expired anyway.
type LocalProvider struct {
	users      storage.UserRepository
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
	logger     internal.Logger

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewLocalProvider(users storage.UserRepository, secret string, ttl time.Duration, logger internal.Logger) *LocalProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LocalProvider{
		users:      users,
		secret:     []byte(secret),
		ttl:        ttl,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		logger:     logger,
		revoked:    make(map[string]time.Time),
	}
}

// SetBcryptCost overrides the hashing cost; out-of-range values are ignored.
func (p *LocalProvider) SetBcryptCost(cost int) {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		p.bcryptCost = cost
	}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*internal.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, internal.NewAuthError("email is required", nil)
	}
	if len(password) < MinPasswordLength {
		return nil, internal.NewAuthError("password should be at least 6 characters", nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return nil, internal.NewAuthError("could not create account", err)
	}
	u := &internal.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    p.now(),
	}
	if err := p.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, ErrUserExists
		}
		p.logger.Errorf("create user %s: %v", email, err)
		return nil, internal.NewAuthError("could not create account", err)
	}
	p.logger.Infof("registered user %s", u.ID)
	return p.issue(u)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*internal.Session, error) {
	u, err := p.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		p.logger.Errorf("look up user %s: %v", email, err)
		return nil, internal.NewAuthError("sign in failed", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		p.logger.Warnf("bad password for user %s", u.ID)
		return nil, ErrInvalidCredentials
	}
	return p.issue(u)
}

// SignOut revokes the token. Signing out an already invalid token succeeds.
func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	c, err := p.parse(token)
	if err != nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[c.ID] = c.ExpiresAt.Time
	p.pruneLocked()
	return nil
}

func (p *LocalProvider) Validate(ctx context.Context, token string) (*internal.Session, error) {
	c, err := p.parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	p.mu.Lock()
	_, revoked := p.revoked[c.ID]
	p.mu.Unlock()
	if revoked {
		return nil, ErrInvalidToken
	}
	return &internal.Session{
		UserID:      c.Subject,
		Email:       c.Email,
		AccessToken: token,
		ExpiresAt:   c.ExpiresAt.Time,
	}, nil
}

func (p *LocalProvider) issue(u *internal.User) (*internal.Session, error) {
	now := p.now()
	exp := now.Add(p.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(p.secret)
	if err != nil {
		return nil, internal.NewAuthError("could not issue session", err)
	}
	return &internal.Session{UserID: u.ID, Email: u.Email, AccessToken: signed, ExpiresAt: exp}, nil
}

func (p *LocalProvider) parse(token string) (*claims, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || c.Subject == "" || c.ExpiresAt == nil {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return c, nil
}

func (p *LocalProvider) pruneLocked() {
	now := p.now()
	for id, exp := range p.revoked {
		if now.After(exp) {
			delete(p.revoked, id)
		}
	}
}
