package controllers

import (
	"errors"
	"time"

	"viadocs/backend/config"
	"viadocs/backend/models"
	"viadocs/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ActivityController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewActivityController(db *gorm.DB, cfg *config.Config) *ActivityController {
	return &ActivityController{DB: db, Cfg: cfg}
}

// Ping accumulates usage minutes on the caller's per-day activity record.
// The visitors dashboard reads these rows.
func (ac *ActivityController) Ping(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Minutes float64 `json:"minutes"`
	}
	if err := c.BodyParser(&input); err != nil {
		input.Minutes = 0
	}
	if input.Minutes <= 0 {
		input.Minutes = 1
	}

	now := time.Now().UTC()
	today := now.Format("2006-01-02")

	var activity models.UserActivity
	err = ac.DB.Where("user_id = ? AND date = ?", userID, today).First(&activity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		activity = models.UserActivity{
			UserID:       userID,
			Date:         today,
			TotalMinutes: input.Minutes,
			FirstSeen:    now,
			LastSeen:     now,
		}
		if err := ac.DB.Create(&activity).Error; err != nil {
			return utils.InternalServerError(c, utils.CodeDependency, "Could not record activity")
		}
	} else if err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	} else {
		if err := ac.DB.Model(&activity).Updates(map[string]interface{}{
			"total_minutes": gorm.Expr("total_minutes + ?", input.Minutes),
			"last_seen":     now,
		}).Error; err != nil {
			return utils.InternalServerError(c, utils.CodeDependency, "Could not record activity")
		}
	}

	return c.JSON(fiber.Map{"message": "Activity recorded"})
}
