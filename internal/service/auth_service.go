package service

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/orderdesk-next/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 后台登录与会话：单一共享口令，成功后签发 JWT。
// 这不是多用户权限体系，只是挡住陌生访问的一道门。
type AuthService struct {
	password     string
	passwordHash string
	jwtSecret    []byte
	expire       time.Duration
}

// NewAuthService 创建认证服务
func NewAuthService(password, passwordHash, jwtSecret string, expireHours int) *AuthService {
	if expireHours <= 0 {
		expireHours = 24
	}
	return &AuthService{
		password:     password,
		passwordHash: strings.TrimSpace(passwordHash),
		jwtSecret:    []byte(jwtSecret),
		expire:       time.Duration(expireHours) * time.Hour,
	}
}

// Login 校验共享口令，通过后返回会话 token。
// 配置了 bcrypt 哈希时优先走哈希比对。
func (s *AuthService) Login(password string) (string, error) {
	if s.password == "" && s.passwordHash == "" {
		logger.Errorw("auth_password_not_configured")
		return "", fmt.Errorf("%w: password not configured", ErrLoginFailed)
	}

	if s.passwordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
			return "", ErrLoginFailed
		}
	} else if subtle.ConstantTimeCompare([]byte(s.password), []byte(password)) != 1 {
		return "", ErrLoginFailed
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": "staff",
		"iat": now.Unix(),
		"exp": now.Add(s.expire).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token failed: %w", err)
	}
	logger.Infow("staff_login_succeeded")
	return token, nil
}

// VerifyToken 校验会话 token。
func (s *AuthService) VerifyToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	if !token.Valid {
		return ErrLoginFailed
	}
	return nil
}
