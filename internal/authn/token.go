package authn

import (
	"errors"
	"strings"
	"time"

	"github.com/luxdecor-shop/internal/constants"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMissing = errors.New("token missing")
	ErrTokenInvalid = errors.New("token invalid")
)

// Identity 已认证的调用方
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

// IsAdmin 是否管理员
func (i Identity) IsAdmin() bool {
	return i.Role == constants.RoleAdmin
}

// IsService 是否内部服务
func (i Identity) IsService() bool {
	return i.Role == constants.RoleService
}

// Claims 身份服务签发的 JWT 声明
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager 负责令牌签发与校验（HS256）
type TokenManager struct {
	secret []byte
	issuer string
}

// NewTokenManager 创建令牌管理器
func NewTokenManager(secret, issuer string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
	}
}

// Configured 是否配置了签名密钥
func (m *TokenManager) Configured() bool {
	return m != nil && len(m.secret) > 0
}

// Issue 为指定身份签发令牌
func (m *TokenManager) Issue(identity Identity, ttl time.Duration) (string, time.Time, error) {
	if !m.Configured() {
		return "", time.Time{}, ErrTokenInvalid
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID: identity.UserID,
		Email:  identity.Email,
		Role:   normalizeRole(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse 校验令牌并还原身份
func (m *TokenManager) Parse(tokenString string) (*Identity, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrTokenMissing
	}
	if !m.Configured() {
		return nil, ErrTokenInvalid
	}
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		options = append(options, jwt.WithIssuer(m.issuer))
	}
	parser := jwt.NewParser(options...)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	role := normalizeRole(claims.Role)
	if role != constants.RoleService && claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return &Identity{
		UserID: claims.UserID,
		Email:  strings.TrimSpace(claims.Email),
		Role:   role,
	}, nil
}

// ServiceToken 签发内部服务间调用令牌
func (m *TokenManager) ServiceToken(ttl time.Duration) (string, error) {
	token, _, err := m.Issue(Identity{Role: constants.RoleService}, ttl)
	return token, err
}

// BearerToken 从 Authorization 头中取出令牌
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrTokenMissing
	}
	parts := strings.SplitN(header, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return "", ErrTokenInvalid
	}
	return strings.TrimSpace(parts[1]), nil
}

func normalizeRole(role string) string {
	switch strings.ToUpper(strings.TrimSpace(role)) {
	case constants.RoleAdmin:
		return constants.RoleAdmin
	case constants.RoleService:
		return constants.RoleService
	default:
		return constants.RoleUser
	}
}
