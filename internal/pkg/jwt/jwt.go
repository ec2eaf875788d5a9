package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const TokenTypeRefresh = "refresh"

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims carried by both token kinds. Type is set only on refresh tokens;
// its absence marks an access token.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type,omitempty"`
	jwtlib.RegisteredClaims
}

type Signer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewSigner(secret []byte, accessTTL, refreshTTL time.Duration) *Signer {
	return &Signer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *Signer) IssueAccess(userID, role string) (string, error) {
	return s.sign(userID, role, "", s.accessTTL)
}

func (s *Signer) IssueRefresh(userID, role string) (string, error) {
	return s.sign(userID, role, TokenTypeRefresh, s.refreshTTL)
}

// IssuePair issues a fresh access+refresh token pair for the same subject.
func (s *Signer) IssuePair(userID, role string) (string, string, error) {
	access, err := s.IssueAccess(userID, role)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.IssueRefresh(userID, role)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *Signer) sign(userID, role, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Type:   tokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseAccess validates a bearer token. A refresh token is rejected with
// ErrWrongTokenType so it cannot be used as a bearer credential.
func (s *Signer) ParseAccess(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != "" {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// ParseRefresh validates a refresh token; the type marker is mandatory.
func (s *Signer) ParseRefresh(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (s *Signer) parse(tokenString string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenString, &Claims{}, func(token *jwtlib.Token) (interface{}, error) {
		if token.Method.Alg() != jwtlib.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
