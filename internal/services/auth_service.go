package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"phoneempire/internal/domain"
	"phoneempire/internal/repos"
)

const tokenIssuer = "phoneempire"

type AuthService struct {
	Users  *repos.UserRepo
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewAuthService(users *repos.UserRepo, secret string, ttl time.Duration) *AuthService {
	return &AuthService{Users: users, Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

// Claims is the signed admin session.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() int64 {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	return id
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login checks the password against the stored bcrypt hash and issues a
// session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, Session, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, Session{}, ErrBadCreds
		}
		return nil, Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, Session{}, ErrBadCreds
	}
	sess, err := s.Issue(u)
	if err != nil {
		return nil, Session{}, err
	}
	return u, sess, nil
}

func (s *AuthService) Issue(u *domain.User) (Session, error) {
	now := s.Now()
	exp := now.Add(s.TTL)
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	return Session{Token: tok, ExpiresAt: exp}, nil
}

// Verify parses and validates a token: signature, issuer, expiry and the
// admin role. Any failure is ErrUnauthorized.
func (s *AuthService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	if claims.Role != domain.RoleAdmin || claims.UserID() == 0 {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// Authorize is Verify plus a lookup of the token subject, so a deleted or
// demoted account loses access before its token expires.
func (s *AuthService) Authorize(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.ByID(ctx, claims.UserID())
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if u.Role != domain.RoleAdmin {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
