package pkg

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("token invalid")
	ErrRefreshExpired    = errors.New("refresh expired")
	ErrRefreshInvalid    = errors.New("refresh invalid")
	ErrTokenParseFailure = errors.New("token parse failure")
)

const (
	subjectAccess  = "access"
	subjectRefresh = "refresh"
)

var (
	AccessTTL     = time.Minute * 30
	RefreshTTL    = time.Hour * 24
	AccessSecret  = []byte("secret-key")
	RefreshSecret = []byte("refresh-key")
)

// ConfigureJWT replaces the signing secrets and lifetimes. Zero TTLs keep the defaults.
func ConfigureJWT(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) {
	AccessSecret = []byte(accessSecret)
	RefreshSecret = []byte(refreshSecret)
	if accessTTL > 0 {
		AccessTTL = accessTTL
	}
	if refreshTTL > 0 {
		RefreshTTL = refreshTTL
	}
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   int    `json:"role"`
	jwt.RegisteredClaims
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func sign(userID string, role int, subject string, ttl time.Duration, secret []byte, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   subject,
		},
	})
	return token.SignedString(secret)
}

func GeneratePair(userID string, role int) (*Pair, error) {
	now := time.Now()
	accessToken, err := sign(userID, role, subjectAccess, AccessTTL, AccessSecret, now)
	if err != nil {
		return nil, err
	}
	refreshToken, err := sign(userID, role, subjectRefresh, RefreshTTL, RefreshSecret, now)
	if err != nil {
		return nil, err
	}
	return &Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func parse(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenParseFailure
	}
	return claims, nil
}

// ParseAccess parses and validates an access token.
func ParseAccess(tokenStr string) (*Claims, error) {
	claims, err := parse(tokenStr, AccessSecret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenInvalid
		default:
			return nil, err
		}
	}
	if claims.Subject != subjectAccess || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Refresh validates a refresh token and issues a new pair for the same user.
func Refresh(refreshToken string) (*Pair, *Claims, error) {
	claims, err := parse(refreshToken, RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, ErrRefreshExpired
		}
		return nil, nil, ErrRefreshInvalid
	}
	if claims.Subject != subjectRefresh || claims.UserID == "" {
		return nil, nil, ErrRefreshInvalid
	}
	pair, err := GeneratePair(claims.UserID, claims.Role)
	if err != nil {
		return nil, nil, err
	}
	return pair, claims, nil
}
