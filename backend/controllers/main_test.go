package controllers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"viadocs/backend/config"
	"viadocs/backend/otp"
	"viadocs/backend/routes"
	"viadocs/backend/utils"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeMailer captures the last OTP instead of talking to SMTP.
type fakeMailer struct {
	lastEmail string
	lastCode  string
	fail      bool
}

func (m *fakeMailer) SendOTP(email, code string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.lastEmail = email
	m.lastCode = code
	return nil
}

type testEnv struct {
	app  *fiber.App
	db   *gorm.DB
	cfg  *config.Config
	otp  *otp.MemoryStore
	mail *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{
		JWTSecret:     "testsecret",
		AdminEmail:    "admin07@gmail.com",
		AdminPassword: "admin-secret",
		UploadDir:     t.TempDir(),
	}

	otpStore := otp.NewMemoryStore()
	t.Cleanup(otpStore.Stop)

	mail := &fakeMailer{}

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, otpStore, mail)

	return &testEnv{app: app, db: db, cfg: cfg, otp: otpStore, mail: mail}
}

// doJSON fires a JSON request at the test app and decodes the JSON response.
func (e *testEnv) doJSON(t *testing.T, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &result))
	}

	return resp.StatusCode, result
}

// doJSONList is doJSON for endpoints returning a top-level array.
func (e *testEnv) doJSONList(t *testing.T, method, path string, token string) (int, []map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

// jsonID renders a numeric id decoded from JSON as a path segment.
func jsonID(id float64) string {
	return fmt.Sprintf("%.0f", id)
}

func (e *testEnv) register(t *testing.T, username, email, password, referral string) {
	t.Helper()

	status, _ := e.doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username":    username,
		"first_name":  "Test",
		"last_name":   "User",
		"email":       email,
		"password":    password,
		"dob":         "2000-01-01",
		"gender":      "other",
		"referred_by": referral,
	}, "")
	require.Equal(t, fiber.StatusCreated, status)
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	status, result := e.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, fiber.StatusOK, status)
	require.NotEmpty(t, result["token"])
	return result["token"].(string)
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	return e.login(t, e.cfg.AdminEmail, e.cfg.AdminPassword)
}
