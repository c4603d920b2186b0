package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 后端签发的 access token 负载。
// 客户端只做 base64 解码取业务字段，不校验签名（密钥在服务端）。
type Claims struct {
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	ServiceCenterName  string `json:"service_center_name"`
	TrialActive        bool   `json:"is_trial_active"`
	TrialEndsAt        int64  `json:"trial_ends_at"` // unix 秒，0 表示未设置
	SubscriptionActive bool   `json:"is_subscription_active"`
	jwt.RegisteredClaims
}

// Introspect 解析 token 负载（不验签）。
func Introspect(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token payload: %w", err)
	}
	return claims, nil
}

// Authorized 试用/订阅门禁：有效订阅，或仍在试用期内。
// 返回 false 时主界面应整屏跳转，而不是行内提示。
func (c *Claims) Authorized(now time.Time) bool {
	if c == nil {
		return false
	}
	if c.SubscriptionActive {
		return true
	}
	if c.TrialActive {
		if c.TrialEndsAt == 0 {
			return true
		}
		return now.Unix() < c.TrialEndsAt
	}
	return false
}

// Expired token 是否已过期；没有 exp 时视为未过期。
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return now.After(c.ExpiresAt.Time)
}
