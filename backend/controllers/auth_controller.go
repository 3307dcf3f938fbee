package controllers

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"viadocs/backend/config"
	"viadocs/backend/mailer"
	"viadocs/backend/models"
	"viadocs/backend/otp"
	"viadocs/backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	DB   *gorm.DB
	Cfg  *config.Config
	OTP  otp.Store
	Mail mailer.Mailer
}

func NewAuthController(db *gorm.DB, cfg *config.Config, otpStore otp.Store, mail mailer.Mailer) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, OTP: otpStore, Mail: mail}
}

// CheckUsername godoc
// @Summary Check username availability
// @Description Reports whether a username is free to register (case-insensitive)
// @Tags auth
// @Produce json
// @Param username query string true "Username to check"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Router /auth/check-username [get]
func (ac *AuthController) CheckUsername(c *fiber.Ctx) error {
	username := strings.ToLower(strings.TrimSpace(c.Query("username")))
	if username == "" {
		return utils.BadRequest(c, utils.CodeValidation, "Missing username")
	}

	var count int64
	if err := ac.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	return c.JSON(fiber.Map{"available": count == 0})
}

// CheckEmail godoc
// @Summary Check email availability
// @Description Reports whether an email is free to register (case-insensitive)
// @Tags auth
// @Produce json
// @Param email query string true "Email to check"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Router /auth/check-email [get]
func (ac *AuthController) CheckEmail(c *fiber.Ctx) error {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		return utils.BadRequest(c, utils.CodeValidation, "Missing email")
	}

	var count int64
	if err := ac.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	return c.JSON(fiber.Map{"available": count == 0})
}

// CheckReferral reports whether a referral code is one of the reserved set.
func (ac *AuthController) CheckReferral(c *fiber.Ctx) error {
	code := strings.ToUpper(strings.TrimSpace(c.Query("code")))
	return c.JSON(fiber.Map{"valid": models.ValidReferrals[code]})
}

type RegisterInput struct {
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	DOB        string `json:"dob"`
	Gender     string `json:"gender"`
	ReferredBy string `json:"referred_by"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a new user account with default role and plan
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterInput true "User registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "Cannot parse JSON")
	}

	input.Username = strings.ToLower(strings.TrimSpace(input.Username))
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	required := []string{input.Username, input.FirstName, input.LastName,
		input.Email, input.Password, input.DOB, input.Gender}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return utils.BadRequest(c, utils.CodeValidation, "Missing fields")
		}
	}

	var count int64
	if err := ac.DB.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}
	if count > 0 {
		return utils.BadRequest(c, utils.CodeConflict, "Email already registered")
	}

	if err := ac.DB.Model(&models.User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}
	if count > 0 {
		return utils.BadRequest(c, utils.CodeConflict, "Username already taken")
	}

	referredBy := strings.ToUpper(strings.TrimSpace(input.ReferredBy))
	if referredBy != "" && !models.ValidReferrals[referredBy] {
		return utils.BadRequest(c, utils.CodeValidation, "Invalid referral code")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, utils.CodeServer, "Could not hash password")
	}

	user := models.User{
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		DOB:          input.DOB,
		Gender:       input.Gender,
		ReferredBy:   referredBy,
		Plan:         "Starter",
		Role:         "user",
		Premium:      false,
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not create user")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully",
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate user or admin and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "Cannot parse JSON")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	// Fixed out-of-band admin credentials bypass the user store entirely.
	if ac.Cfg.AdminPassword != "" && email == ac.Cfg.AdminEmail && input.Password == ac.Cfg.AdminPassword {
		token, err := utils.GenerateToken(utils.AdminIdentity, "admin", ac.Cfg)
		if err != nil {
			return utils.InternalServerError(c, utils.CodeServer, "Could not generate token")
		}
		return c.JSON(fiber.Map{
			"token":    token,
			"role":     "admin",
			"redirect": "/admin/home",
			"message":  "Admin login successful",
		})
	}

	var user models.User
	if err := ac.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid email or password")
		}
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid email or password")
	}

	token, err := utils.GenerateToken(strconv.FormatUint(uint64(user.ID), 10), user.Role, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, utils.CodeServer, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token":    token,
		"username": user.Username,
		"role":     user.Role,
		"redirect": "/home",
		"message":  "Login successful",
	})
}

// Verify resolves the bearer token to a minimal public profile.
func (ac *AuthController) Verify(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	return c.JSON(fiber.Map{
		"loggedIn": true,
		"user": fiber.Map{
			"firstName": user.FirstName,
			"email":     user.Email,
		},
	})
}

// SendOTP issues a 4-digit reset code, overwriting any prior challenge for
// the email, and dispatches it via the mail collaborator.
func (ac *AuthController) SendOTP(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "Cannot parse JSON")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return utils.BadRequest(c, utils.CodeValidation, "Email is required")
	}

	var user models.User
	if err := ac.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Email not registered")
		}
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	code, err := generateOTPCode()
	if err != nil {
		return utils.InternalServerError(c, utils.CodeServer, "Could not generate OTP")
	}

	challenge := otp.Challenge{
		Code:    code,
		Expires: time.Now().Add(otp.Window),
	}
	if err := ac.OTP.Put(c.Context(), email, challenge); err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not store OTP")
	}

	if err := ac.Mail.SendOTP(email, code); err != nil {
		return utils.InternalServerError(c, utils.CodeDelivery, "Failed to send OTP. Try again later.")
	}

	return c.JSON(fiber.Map{"message": "OTP sent successfully!"})
}

// VerifyOTP checks a submitted code. Expiry is detected lazily here and
// discards the challenge.
func (ac *AuthController) VerifyOTP(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "Cannot parse JSON")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	code := strings.TrimSpace(input.OTP)

	challenge, err := ac.OTP.Get(c.Context(), email)
	if err != nil {
		if errors.Is(err, otp.ErrNotFound) {
			return utils.BadRequest(c, utils.CodeNotFound, "No OTP found")
		}
		return utils.InternalServerError(c, utils.CodeDependency, "Could not read OTP")
	}

	if challenge.Expired(time.Now()) {
		_ = ac.OTP.Delete(c.Context(), email)
		return utils.BadRequest(c, utils.CodeExpired, "OTP expired")
	}

	if code != challenge.Code {
		return utils.BadRequest(c, utils.CodeMismatch, "Invalid OTP")
	}

	if err := ac.OTP.MarkVerified(c.Context(), email); err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not update OTP")
	}

	return c.JSON(fiber.Map{"message": "OTP verified successfully!"})
}

// ResetPassword stores a new password hash once the email's challenge has
// been verified, then consumes the challenge unconditionally.
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var input struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "Cannot parse JSON")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	newPassword := strings.TrimSpace(input.NewPassword)
	if email == "" || newPassword == "" {
		return utils.BadRequest(c, utils.CodeValidation, "Missing fields")
	}

	challenge, err := ac.OTP.Get(c.Context(), email)
	if err != nil || !challenge.Verified {
		return utils.BadRequest(c, utils.CodePrecondition, "OTP verification required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, utils.CodeServer, "Could not hash password")
	}

	if err := ac.DB.Model(&models.User{}).Where("email = ?", email).
		Update("password_hash", string(hashedPassword)).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not update password")
	}

	_ = ac.OTP.Delete(c.Context(), email)

	return c.JSON(fiber.Map{"message": "Password reset successful!"})
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}
