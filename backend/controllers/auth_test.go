package controllers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"viadocs/backend/models"
	"viadocs/backend/otp"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "alice", "alice@x.com", "password123", "DOC3")

	token := env.login(t, "alice@x.com", "password123")
	assert.NotEmpty(t, token)

	// Wrong password always fails with the same message
	status, result := env.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@x.com",
		"password": "wrong",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", result["message"])

	// Unknown email is indistinguishable from a wrong password
	status, _ = env.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@x.com",
		"password": "password123",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	// Missing required field
	status, result := env.doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "bob",
		"email":    "bob@x.com",
		"password": "pw",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation_error", result["code"])

	env.register(t, "bob", "bob@x.com", "password123", "")

	// Duplicate email
	status, result = env.doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username":   "bob2",
		"first_name": "B", "last_name": "B",
		"email": "bob@x.com", "password": "pw", "dob": "2000-01-01", "gender": "m",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "conflict", result["code"])
	assert.Equal(t, "Email already registered", result["message"])

	// Duplicate username, different case
	status, result = env.doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username":   "BOB",
		"first_name": "B", "last_name": "B",
		"email": "other@x.com", "password": "pw", "dob": "2000-01-01", "gender": "m",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Username already taken", result["message"])

	// Invalid referral code
	status, result = env.doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username":   "carol",
		"first_name": "C", "last_name": "C",
		"email": "carol@x.com", "password": "pw", "dob": "2000-01-01", "gender": "f",
		"referred_by": "DOC99",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid referral code", result["message"])
}

func TestRegisterStoresHashOnly(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dave", "dave@x.com", "plaintext-pw", "")

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "dave@x.com").First(&user).Error)
	assert.NotEqual(t, "plaintext-pw", user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "plaintext-pw")
}

func TestAvailabilityChecksCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "frank", "foo@bar.com", "password123", "")

	status, result := env.doJSON(t, http.MethodGet, "/api/auth/check-email?email=Foo@Bar.com", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, result["available"])

	status, result = env.doJSON(t, http.MethodGet, "/api/auth/check-email?email=free@bar.com", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["available"])

	status, result = env.doJSON(t, http.MethodGet, "/api/auth/check-username?username=FRANK", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, result["available"])

	// Missing parameter
	status, _ = env.doJSON(t, http.MethodGet, "/api/auth/check-username", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	// Idempotent
	status, result = env.doJSON(t, http.MethodGet, "/api/auth/check-username?username=FRANK", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, result["available"])
}

func TestCheckReferral(t *testing.T) {
	env := newTestEnv(t)

	for _, code := range models.ReferralCodes {
		status, result := env.doJSON(t, http.MethodGet, "/api/auth/check-referral?code="+code, nil, "")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, true, result["valid"], code)
	}

	// Case-insensitive
	status, result := env.doJSON(t, http.MethodGet, "/api/auth/check-referral?code=doc7", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["valid"])

	for _, code := range []string{"DOC11", "DOC0", "", "abc"} {
		status, result := env.doJSON(t, http.MethodGet, "/api/auth/check-referral?code="+code, nil, "")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, false, result["valid"], code)
	}
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)

	status, result := env.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    env.cfg.AdminEmail,
		"password": env.cfg.AdminPassword,
	}, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, result["token"])
	assert.Equal(t, "admin", result["role"])
	assert.Equal(t, "/admin/home", result["redirect"])
}

func TestVerify(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "gina", "gina@x.com", "password123", "")
	token := env.login(t, "gina@x.com", "password123")

	status, result := env.doJSON(t, http.MethodGet, "/api/auth/verify", nil, token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["loggedIn"])
	user := result["user"].(map[string]interface{})
	assert.Equal(t, "Test", user["firstName"])
	assert.Equal(t, "gina@x.com", user["email"])

	status, _ = env.doJSON(t, http.MethodGet, "/api/auth/verify", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestOTPFlow(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "hana", "hana@x.com", "oldpassword", "")

	// Unknown email
	status, _ := env.doJSON(t, http.MethodPost, "/api/auth/send-otp",
		map[string]string{"email": "ghost@x.com"}, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	// Reset without any challenge
	status, result := env.doJSON(t, http.MethodPost, "/api/auth/reset-password",
		map[string]string{"email": "hana@x.com", "newPassword": "newpassword"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "precondition_failed", result["code"])

	// Send
	status, _ = env.doJSON(t, http.MethodPost, "/api/auth/send-otp",
		map[string]string{"email": "hana@x.com"}, "")
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, env.mail.lastCode, 4)
	firstCode := env.mail.lastCode

	// A second send overwrites the first challenge
	status, _ = env.doJSON(t, http.MethodPost, "/api/auth/send-otp",
		map[string]string{"email": "hana@x.com"}, "")
	require.Equal(t, fiber.StatusOK, status)
	secondCode := env.mail.lastCode

	if firstCode != secondCode {
		status, result = env.doJSON(t, http.MethodPost, "/api/auth/verify-otp",
			map[string]string{"email": "hana@x.com", "otp": firstCode}, "")
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "mismatch", result["code"])
	}

	// Reset still blocked until verified
	status, result = env.doJSON(t, http.MethodPost, "/api/auth/reset-password",
		map[string]string{"email": "hana@x.com", "newPassword": "newpassword"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "precondition_failed", result["code"])

	// Verify with the live code
	status, _ = env.doJSON(t, http.MethodPost, "/api/auth/verify-otp",
		map[string]string{"email": "hana@x.com", "otp": secondCode}, "")
	require.Equal(t, fiber.StatusOK, status)

	// Reset succeeds and consumes the challenge
	status, _ = env.doJSON(t, http.MethodPost, "/api/auth/reset-password",
		map[string]string{"email": "hana@x.com", "newPassword": "newpassword"}, "")
	require.Equal(t, fiber.StatusOK, status)

	status, result = env.doJSON(t, http.MethodPost, "/api/auth/reset-password",
		map[string]string{"email": "hana@x.com", "newPassword": "again"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "precondition_failed", result["code"])

	// Old password no longer works, new one does
	status, _ = env.doJSON(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "hana@x.com", "password": "oldpassword"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	env.login(t, "hana@x.com", "newpassword")
}

func TestOTPExpiry(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ivan", "ivan@x.com", "password123", "")

	// Plant an already-expired challenge
	require.NoError(t, env.otp.Put(context.Background(), "ivan@x.com", otp.Challenge{
		Code:    "1234",
		Expires: time.Now().Add(-time.Minute),
	}))

	status, result := env.doJSON(t, http.MethodPost, "/api/auth/verify-otp",
		map[string]string{"email": "ivan@x.com", "otp": "1234"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "expired", result["code"])

	// The expiry check discarded the challenge
	status, result = env.doJSON(t, http.MethodPost, "/api/auth/verify-otp",
		map[string]string{"email": "ivan@x.com", "otp": "1234"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "not_found", result["code"])
}

func TestOTPDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jane", "jane@x.com", "password123", "")

	env.mail.fail = true
	status, result := env.doJSON(t, http.MethodPost, "/api/auth/send-otp",
		map[string]string{"email": "jane@x.com"}, "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "delivery_error", result["code"])
}
