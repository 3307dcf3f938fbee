package controllers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"viadocs/backend/config"
	"viadocs/backend/models"
	"viadocs/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile data
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	// Ответ без чувствительных данных
	return c.JSON(fiber.Map{
		"id":           user.ID,
		"username":     user.Username,
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
		"fullName":     user.FullName(),
		"email":        user.Email,
		"dateOfBirth":  user.DOB,
		"gender":       user.Gender,
		"role":         user.Role,
		"premium":      user.Premium,
		"profileImage": user.ProfileImage,
	})
}

// UpdateProfile applies a partial update of name and date-of-birth fields.
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		FirstName   *string `json:"firstName"`
		LastName    *string `json:"lastName"`
		DateOfBirth *string `json:"dateOfBirth"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "Cannot parse JSON")
	}

	updates := map[string]interface{}{}
	if input.FirstName != nil {
		updates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		updates["last_name"] = *input.LastName
	}
	if input.DateOfBirth != nil {
		updates["dob"] = *input.DateOfBirth
	}

	if len(updates) == 0 {
		return utils.BadRequest(c, utils.CodeValidation, "No valid fields to update")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not update user")
	}

	return c.JSON(fiber.Map{
		"id":           user.ID,
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
		"dateOfBirth":  user.DOB,
		"username":     user.Username,
		"email":        user.Email,
		"profileImage": user.ProfileImage,
	})
}

// UploadProfileImage stores the uploaded picture under the uploads dir and
// keeps only the reference path on the user record.
func (uc *UserController) UploadProfileImage(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	file, err := c.FormFile("profileImage")
	if err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "No file provided")
	}
	if file.Filename == "" {
		return utils.BadRequest(c, utils.CodeValidation, "Empty filename")
	}

	uploadsDir := filepath.Join(uc.Cfg.UploadDir, "profile_images")
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return utils.InternalServerError(c, utils.CodeServer, "Could not save file")
	}

	filename := fmt.Sprintf("profile_%d_%d.jpg", userID, time.Now().Unix())
	if err := c.SaveFile(file, filepath.Join(uploadsDir, filename)); err != nil {
		return utils.InternalServerError(c, utils.CodeServer, "Could not save file")
	}

	imageURL := "/uploads/profile_images/" + filename
	if err := uc.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("profile_image", imageURL).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not update user")
	}

	return c.JSON(fiber.Map{
		"message":      "Profile image updated successfully",
		"profileImage": imageURL,
	})
}

// SetRole saves the user type chosen after onboarding (student / employee).
func (uc *UserController) SetRole(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "Cannot parse JSON")
	}

	if input.Role != "student" && input.Role != "employee" {
		return utils.BadRequest(c, utils.CodeValidation, "Invalid role")
	}

	if err := uc.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("role", input.Role).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not update user")
	}

	return c.JSON(fiber.Map{
		"message": "Role saved successfully",
		"role":    input.Role,
	})
}
