// Package auth validates bearer tokens and gates administration routes by role.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleCSV    Role = "csv"
	RoleExport Role = "export"
	RoleObvius Role = "obvius"
)

var roleTitles = map[Role]string{
	RoleAdmin:  "Admin",
	RoleCSV:    "CSV",
	RoleExport: "Export",
	RoleObvius: "Obvius",
}

// Satisfies reports whether r may act with the privileges of required.
// Admin may do everything.
func (r Role) Satisfies(required Role) bool {
	return r == RoleAdmin || r == required
}

func (r Role) Title() string {
	if t, ok := roleTitles[r]; ok {
		return t
	}
	return string(r)
}

type Claims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a HS256 token for username with role, valid for ttl.
func Issue(secret []byte, username string, role Role, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("auth: empty secret")
	}
	now := time.Now()
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse validates a token and returns its claims.
func Parse(secret []byte, token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("auth: empty token")
	}
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	tok, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return secret, nil })
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("auth: invalid token")
	}
	if _, ok := roleTitles[claims.Role]; !ok {
		return nil, fmt.Errorf("auth: unknown role %q", claims.Role)
	}
	return claims, nil
}

// Require rejects requests whose bearer token is missing, invalid, or lacks
// role, answering 401 with a message naming action.
func Require(secret []byte, role Role, action string) fiber.Handler {
	denied := fmt.Sprintf("Got request to '%s' with invalid authorization level. %s role is at least required to '%s'.",
		action, role.Title(), action)
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return c.Status(fiber.StatusUnauthorized).SendString(
				fmt.Sprintf("Got request to '%s' with no credentials.", action))
		}
		claims, err := Parse(secret, strings.TrimSpace(token))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).SendString(
				fmt.Sprintf("Got request to '%s' with invalid credentials.", action))
		}
		if !claims.Role.Satisfies(role) {
			return c.Status(fiber.StatusUnauthorized).SendString(denied)
		}
		c.Locals("user", claims.Username)
		return c.Next()
	}
}
