package middlewares

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"omnibridge-console/config"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "

	localUserID = "userID"
	localRole   = "role"
)

// Claims is our JWT payload (subject=userID, plus the console role).
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(cfg config.AuthConfig) *Tokens {
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(cfg.JWTSecret), ttl: ttl, now: time.Now}
}

// Generate signs a token for userID that expires after the configured TTL.
func (t *Tokens) Generate(userID, role string) (string, time.Time, error) {
	if len(t.secret) == 0 {
		return "", time.Time{}, errors.New("JWT secret not configured")
	}
	now := t.now()
	expires := now.Add(t.ttl)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	return signed, expires, err
}

// Parse verifies raw and returns its claims. Only HS256 is accepted.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	var claims Claims
	token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("token missing subject")
	}
	return &claims, nil
}

// IsAuthenticatedHeader validates a Bearer token and populates c.Locals("userID", "role").
func IsAuthenticatedHeader(tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(authHeader)
		if h == "" || !strings.HasPrefix(strings.ToLower(h), strings.ToLower(bearerPrefix)) {
			return fiber.NewError(fiber.StatusUnauthorized, "missing/invalid Authorization header")
		}
		raw := strings.TrimSpace(h[len(bearerPrefix):])
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid bearer token")
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(localUserID, claims.Subject)
		c.Locals(localRole, claims.Role)
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside the protected group.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(localRole).(string)
	return role
}

// RequireRole rejects authenticated users whose role is not in allowed.
func RequireRole(allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, r := range allowed {
			if role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}
