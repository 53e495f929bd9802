// Package auth provides the login gate and the session tokens that guard
// every mutating store operation. The credential check is an injected
// capability so the scheme can be swapped without touching store logic.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrBadCredentials is returned when the submitted password does not match.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrInvalidSession is returned for nil, expired or forged sessions.
	ErrInvalidSession = errors.New("invalid session")
)

// CredentialChecker verifies a submitted password.
type CredentialChecker interface {
	Check(submitted string) error
}

// BcryptChecker compares submitted passwords against a bcrypt hash.
type BcryptChecker struct {
	hash []byte
}

// NewBcryptChecker wraps an existing bcrypt hash.
func NewBcryptChecker(hash string) *BcryptChecker {
	return &BcryptChecker{hash: []byte(hash)}
}

// NewBcryptCheckerFromPassword hashes a plaintext credential at startup.
func NewBcryptCheckerFromPassword(password string) (*BcryptChecker, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &BcryptChecker{hash: hash}, nil
}

func (c *BcryptChecker) Check(submitted string) error {
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(submitted)); err != nil {
		return ErrBadCredentials
	}
	return nil
}

// Session is the proof of a successful login. It is passed explicitly into
// every mutating store call and carries a signed token.
type Session struct {
	Token string
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// TokenVerifier checks that a session is genuine and current.
type TokenVerifier interface {
	Verify(sess *Session) error
}

// Authenticator issues and verifies HS256 session tokens.
type Authenticator struct {
	checker CredentialChecker
	secret  []byte
	ttl     time.Duration
}

// New constructs an Authenticator around a credential checker.
func New(checker CredentialChecker, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{checker: checker, secret: []byte(secret), ttl: ttl}
}

// Login checks the submitted password and, on success, issues a session.
func (a *Authenticator) Login(submitted string) (*Session, error) {
	if err := a.checker.Check(submitted); err != nil {
		return nil, err
	}
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "storekeeper",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return nil, err
	}
	return &Session{Token: signed}, nil
}

// Verify reports whether the session carries a valid, unexpired token.
func (a *Authenticator) Verify(sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrInvalidSession
	}
	token, err := jwt.ParseWithClaims(sess.Token, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidSession
	}
	return nil
}
