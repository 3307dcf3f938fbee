package utils

import (
	"fmt"
	"strconv"
	"time"

	"viadocs/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// AdminIdentity is the sentinel subject issued by the fixed-credential admin login.
const AdminIdentity = "admin"

// TokenTTL is the lifetime of every issued token, admin included.
const TokenTTL = 6 * time.Hour

// GenerateToken issues a signed bearer token bound to an identity and role.
func GenerateToken(identity string, role string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"sub":  identity,
		"role": role,
		"exp":  time.Now().Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ExtractIdentity resolves the identity and role bound to the request's
// Authorization header. A "Bearer " prefix is accepted but not required.
func ExtractIdentity(c *fiber.Ctx, cfg *config.Config) (string, string, error) {
	tokenString := c.Get("Authorization")
	if tokenString == "" {
		return "", "", fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}
	if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
		tokenString = tokenString[7:]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil {
		return "", "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	identity, ok := claims["sub"].(string)
	if !ok || identity == "" {
		return "", "", fiber.NewError(fiber.StatusUnauthorized, "Invalid identity in token")
	}

	role, _ := claims["role"].(string)
	return identity, role, nil
}

// ExtractUserID resolves the request's identity to a stored user ID.
// The admin sentinel has no user record and is rejected here.
func ExtractUserID(c *fiber.Ctx, cfg *config.Config) (uint, error) {
	identity, _, err := ExtractIdentity(c, cfg)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseUint(identity, 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}
	return uint(id), nil
}
