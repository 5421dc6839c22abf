package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	dErrors "voteauth/pkg/domain-errors"
	"voteauth/pkg/platform/sentinel"
)

// Service registers polling stations and verifies their session tokens.
type Service struct {
	store      Store
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures the station service.
type Option func(*Service)

// WithLogger sets the logger used by the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTokenTTL overrides the session token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a station service.
func NewService(store Store, signingKey []byte, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("station service: store is required")
	}
	if len(signingKey) == 0 {
		return nil, errors.New("station service: signing key is required")
	}
	s := &Service{
		store:      store,
		signingKey: signingKey,
		tokenTTL:   12 * time.Hour,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type sessionClaims struct {
	StationName string `json:"station_name"`
	jwt.RegisteredClaims
}

// Register creates a station and returns its identifier and a signed
// session token. The secret is stored as a bcrypt hash; registering an
// existing name returns a conflict error.
func (s *Service) Register(ctx context.Context, name, secret string) (uuid.UUID, string, error) {
	if name == "" || secret == "" {
		return uuid.Nil, "", dErrors.New(dErrors.CodeParamsInvalid, "station name and secret are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("hash station secret: %w", err)
	}

	st := &Station{
		ID:           uuid.New(),
		Name:         name,
		SecretHash:   string(hash),
		RegisteredAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, st); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return uuid.Nil, "", dErrors.Wrap(err, dErrors.CodeDuplicateEntry, "station name already registered")
		}
		return uuid.Nil, "", fmt.Errorf("register station: %w", err)
	}

	token, err := s.issueToken(st)
	if err != nil {
		return uuid.Nil, "", err
	}

	s.logger.InfoContext(ctx, "station registered", slog.String("station", name), slog.String("id", st.ID.String()))
	return st.ID, token, nil
}

// Login verifies a station's secret and issues a fresh session token.
func (s *Service) Login(ctx context.Context, name, secret string) (string, error) {
	st, err := s.store.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "unknown station")
		}
		return "", fmt.Errorf("login station: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(st.SecretHash), []byte(secret)); err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "station secret mismatch")
	}
	return s.issueToken(st)
}

// Ping validates a session token and records the station heartbeat.
// It returns the station identifier carried by the token.
func (s *Service) Ping(ctx context.Context, token string) (uuid.UUID, error) {
	id, _, err := s.Verify(token)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.store.Touch(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "station no longer registered")
		}
		return uuid.Nil, fmt.Errorf("ping station: %w", err)
	}
	return id, nil
}

// Verify parses a session token and returns the station identifier and
// name embedded in it.
func (s *Service) Verify(token string) (uuid.UUID, string, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return uuid.Nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	return id, claims.StationName, nil
}

func (s *Service) issueToken(st *Station) (string, error) {
	now := s.now().UTC()
	claims := sessionClaims{
		StationName: st.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   st.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}
