package controllers

import (
	"strings"

	"viadocs/backend/config"
	"viadocs/backend/models"
	"viadocs/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FeedbackController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewFeedbackController(db *gorm.DB, cfg *config.Config) *FeedbackController {
	return &FeedbackController{DB: db, Cfg: cfg}
}

// resolveIdentity enriches a submission with the caller's name and email when
// a valid token is present. Anonymous callers become "Guest User"/"N/A".
func (fc *FeedbackController) resolveIdentity(c *fiber.Ctx) (string, string) {
	name := "Guest User"
	email := "N/A"

	userID, err := utils.ExtractUserID(c, fc.Cfg)
	if err != nil {
		return name, email
	}

	var user models.User
	if err := fc.DB.First(&user, userID).Error; err != nil {
		return name, email
	}

	return user.FullName(), user.Email
}

// SubmitFeedback godoc
// @Summary Submit feedback
// @Description Appends a feedback entry, optionally enriched with the caller's identity
// @Tags feedback
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Router /feedback [post]
func (fc *FeedbackController) SubmitFeedback(c *fiber.Ctx) error {
	var input struct {
		Message string   `json:"message"`
		Rating  *float64 `json:"rating"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "Feedback message is required")
	}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		return utils.BadRequest(c, utils.CodeValidation, "Feedback message is required")
	}

	name, email := fc.resolveIdentity(c)

	entry := models.Feedback{
		Name:    name,
		Email:   email,
		Message: message,
		Rating:  input.Rating, // accepted as-is, no range check
	}
	if err := fc.DB.Create(&entry).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not save feedback")
	}

	return c.JSON(fiber.Map{"message": "Feedback submitted successfully!"})
}

// SubmitContact appends a contact message, structurally analogous to feedback.
func (fc *FeedbackController) SubmitContact(c *fiber.Ctx) error {
	var input struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "Message is required")
	}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		return utils.BadRequest(c, utils.CodeValidation, "Message is required")
	}

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" {
		resolvedName, resolvedEmail := fc.resolveIdentity(c)
		if name == "" {
			name = resolvedName
		}
		if email == "" {
			email = resolvedEmail
		}
	}

	entry := models.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: strings.TrimSpace(input.Subject),
		Message: message,
	}
	if err := fc.DB.Create(&entry).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not save message")
	}

	return c.JSON(fiber.Map{"message": "Message sent successfully!"})
}
