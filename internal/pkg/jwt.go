package pkg

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrRefreshExpired = errors.New("refresh expired")
	ErrRefreshInvalid = errors.New("refresh invalid")
)

const (
	AccessTTL  = time.Minute * 30
	RefreshTTL = time.Hour * 24
)

var (
	accessSecret  = []byte("dev-access-secret")
	refreshSecret = []byte("dev-refresh-secret")
)

// SetSecrets 启动时从配置注入，默认值仅供本地开发
func SetSecrets(access, refresh string) {
	if access != "" {
		accessSecret = []byte(access)
	}
	if refresh != "" {
		refreshSecret = []byte(refresh)
	}
}

type Claims struct {
	UserID uint64 `json:"user_id"`
	Role   int    `json:"role"` // 全局角色，中间件注入context
	jwt.RegisteredClaims
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func sign(userID uint64, role int, subject string, ttl time.Duration, secret []byte, jti string) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   subject,
			ID:        jti,
		},
	}).SignedString(secret)
}

func GeneratePair(userID uint64, role int) (*Pair, error) {
	access, err := sign(userID, role, "access", AccessTTL, accessSecret, "")
	if err != nil {
		return nil, err
	}
	// refresh带jti，后续可做吊销
	refresh, err := sign(userID, role, "refresh", RefreshTTL, refreshSecret, uuid.NewString())
	if err != nil {
		return nil, err
	}
	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func parse(tokenStr string, secret []byte, errExpired, errInvalid error) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errExpired
	case err != nil:
		return nil, errInvalid
	case !token.Valid:
		return nil, errInvalid
	}
	return token.Claims.(*Claims), nil
}

func ParseAccess(tokenStr string) (*Claims, error) {
	claims, err := parse(tokenStr, accessSecret, ErrTokenExpired, ErrTokenInvalid)
	if err != nil {
		return nil, err
	}
	if claims.Subject != "access" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Refresh 校验refresh token并换发新的一对
func Refresh(refreshToken string) (*Pair, error) {
	claims, err := parse(refreshToken, refreshSecret, ErrRefreshExpired, ErrRefreshInvalid)
	if err != nil {
		return nil, err
	}
	if claims.Subject != "refresh" {
		return nil, ErrRefreshInvalid
	}
	// 可在此检查jti是否已吊销
	return GeneratePair(claims.UserID, claims.Role)
}
