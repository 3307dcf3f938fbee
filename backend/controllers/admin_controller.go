package controllers

import (
	"strconv"
	"strings"
	"time"

	"viadocs/backend/config"
	"viadocs/backend/models"
	"viadocs/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAdminController(db *gorm.DB, cfg *config.Config) *AdminController {
	return &AdminController{DB: db, Cfg: cfg}
}

// TrendBucket is one point of the registration trend graph.
type TrendBucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// ReferralBucket is one bar of the referral distribution graph.
type ReferralBucket struct {
	Referral string `json:"referral"`
	Users    int64  `json:"users"`
}

// registrationTrend buckets registrations of the given role by period.
// Buckets come back oldest first. The clock is a parameter so bucket math
// (including December→January rollover) is testable.
func registrationTrend(db *gorm.DB, period string, userType string, now time.Time) []TrendBucket {
	count := func(start, end time.Time) int64 {
		var n int64
		db.Model(&models.User{}).
			Where("created_at >= ? AND created_at < ? AND role = ?", start, end, userType).
			Count(&n)
		return n
	}

	var buckets []TrendBucket

	switch period {
	case "weekly":
		// Four trailing 7-day windows ending at now.
		for i := 3; i >= 0; i-- {
			start := now.AddDate(0, 0, -7*(i+1))
			end := now.AddDate(0, 0, -7*i)
			buckets = append(buckets, TrendBucket{
				Label: "Week " + strconv.Itoa(4-i),
				Count: count(start, end),
			})
		}
	case "monthly":
		// Six calendar months ending at the current one. time.Date
		// normalizes out-of-range months, which handles year rollover.
		for i := 5; i >= 0; i-- {
			start := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
			end := start.AddDate(0, 1, 0)
			buckets = append(buckets, TrendBucket{
				Label: start.Format("Jan 2006"),
				Count: count(start, end),
			})
		}
	default: // daily
		for i := 6; i >= 0; i-- {
			day := now.AddDate(0, 0, -i)
			start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
			end := start.AddDate(0, 0, 1)
			buckets = append(buckets, TrendBucket{
				Label: start.Format("02 Jan"),
				Count: count(start, end),
			})
		}
	}

	return buckets
}

// referralDistribution counts users per reserved referral code for one role.
func referralDistribution(db *gorm.DB, userType string) []ReferralBucket {
	graph := make([]ReferralBucket, 0, len(models.ReferralCodes))
	for _, code := range models.ReferralCodes {
		var n int64
		db.Model(&models.User{}).
			Where("referred_by = ? AND role = ?", code, userType).
			Count(&n)
		graph = append(graph, ReferralBucket{Referral: code, Users: n})
	}
	return graph
}

// Dashboard godoc
// @Summary Admin analytics dashboard
// @Description Referral distribution, registration trend and recent users for one user type
// @Tags admin
// @Produce json
// @Param referral query string false "Referral filter (DOC1..DOC10 or overall)" default(overall)
// @Param period query string false "Trend granularity (daily|weekly|monthly)" default(daily)
// @Param user_type query string false "Role filter" default(student)
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/dashboard [get]
func (ad *AdminController) Dashboard(c *fiber.Ctx) error {
	referralFilter := strings.ToUpper(c.Query("referral", "overall"))
	period := strings.ToLower(c.Query("period", "daily"))
	userType := strings.ToLower(c.Query("user_type", "student"))

	query := ad.DB.Model(&models.User{}).Where("role = ?", userType)
	if referralFilter != "OVERALL" {
		query = query.Where("referred_by = ?", referralFilter)
	}

	var totalUsers int64
	if err := query.Count(&totalUsers).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	var users []models.User
	if err := query.Order("created_at DESC").Limit(10).Find(&users).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	recentUsers := make([]fiber.Map, 0, len(users))
	for i := range users {
		user := &users[i]

		var docCount int64
		ad.DB.Model(&models.Document{}).Where("user_id = ?", user.ID).Count(&docCount)

		name := user.FullName()
		if name == "" {
			name = "Unknown"
		}
		referral := user.ReferredBy
		if referral == "" {
			referral = "None"
		}

		recentUsers = append(recentUsers, fiber.Map{
			"name":          name,
			"username":      user.Username,
			"mail":          user.Email,
			"docs":          docCount,
			"register_date": user.CreatedAt.Format("02-01-2006 15:04:05"),
			"referral":      referral,
			"role":          user.Role,
		})
	}

	return c.JSON(fiber.Map{
		"total_users":       totalUsers,
		"recent_users":      recentUsers,
		"graph_data":        referralDistribution(ad.DB, userType),
		"trend_data":        registrationTrend(ad.DB, period, userType, time.Now().UTC()),
		"selected_referral": referralFilter,
		"period":            period,
		"user_type":         userType,
	})
}

// ListFeedbacks returns every feedback entry for the admin table.
func (ad *AdminController) ListFeedbacks(c *fiber.Ctx) error {
	var feedbacks []models.Feedback
	if err := ad.DB.Order("created_at DESC").Find(&feedbacks).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	out := make([]fiber.Map, 0, len(feedbacks))
	for i := range feedbacks {
		fb := &feedbacks[i]
		out = append(out, fiber.Map{
			"id":        fb.ID,
			"name":      fb.Name,
			"email":     fb.Email,
			"rating":    fb.Rating,
			"message":   fb.Message,
			"createdAt": fb.CreatedAt.Format("02-01-2006 15:04"),
		})
	}

	return c.JSON(fiber.Map{"feedbacks": out})
}

func (ad *AdminController) DeleteFeedback(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.NotFound(c, "Feedback not found")
	}

	res := ad.DB.Delete(&models.Feedback{}, uint(id))
	if res.Error != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not delete feedback")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Feedback not found")
	}

	return c.JSON(fiber.Map{"message": "Feedback deleted successfully"})
}

// ListContacts returns every contact message for the admin table.
func (ad *AdminController) ListContacts(c *fiber.Ctx) error {
	var contacts []models.ContactMessage
	if err := ad.DB.Order("created_at DESC").Find(&contacts).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	out := make([]fiber.Map, 0, len(contacts))
	for i := range contacts {
		msg := &contacts[i]
		out = append(out, fiber.Map{
			"id":        msg.ID,
			"name":      msg.Name,
			"email":     msg.Email,
			"subject":   msg.Subject,
			"message":   msg.Message,
			"createdAt": msg.CreatedAt.Format("02-01-2006 15:04"),
		})
	}

	return c.JSON(fiber.Map{"contacts": out})
}

func (ad *AdminController) DeleteContact(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.NotFound(c, "Contact not found")
	}

	res := ad.DB.Delete(&models.ContactMessage{}, uint(id))
	if res.Error != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not delete contact")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Contact not found")
	}

	return c.JSON(fiber.Map{"message": "Contact deleted successfully"})
}

// Visitors godoc
// @Summary Visitor analytics
// @Description Totals, today's activity and per-visit detail built from daily activity records
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/visitors [get]
func (ad *AdminController) Visitors(c *fiber.Ctx) error {
	today := time.Now().UTC().Format("2006-01-02")

	var totalVisitors int64
	if err := ad.DB.Model(&models.UserActivity{}).
		Distinct("user_id").Count(&totalVisitors).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	var todayVisitors int64
	ad.DB.Model(&models.UserActivity{}).Where("date = ?", today).Count(&todayVisitors)

	var todayTimeSpent float64
	ad.DB.Model(&models.UserActivity{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(total_minutes), 0)").
		Scan(&todayTimeSpent)

	// Referral breakdown over all users, unfiltered by role.
	var referralRows []struct {
		ReferredBy string
		Count      int64
	}
	ad.DB.Model(&models.User{}).
		Select("referred_by, COUNT(*) as count").
		Group("referred_by").
		Scan(&referralRows)

	referralStats := make(map[string]int64, len(referralRows))
	for _, row := range referralRows {
		ref := row.ReferredBy
		if ref == "" {
			ref = "Unknown"
		}
		referralStats[ref] += row.Count
	}

	var logs []models.UserActivity
	ad.DB.Where("date = ?", today).Order("last_seen DESC").Find(&logs)

	// Visit rows whose user vanished are skipped; partial results beat
	// failing the whole aggregation.
	visitors := make([]fiber.Map, 0, len(logs))
	for i := range logs {
		log := &logs[i]

		var user models.User
		if err := ad.DB.First(&user, log.UserID).Error; err != nil {
			continue
		}

		name := user.FullName()
		if name == "" {
			name = "Guest"
		}
		referral := user.ReferredBy
		if referral == "" {
			referral = "N/A"
		}

		visitors = append(visitors, fiber.Map{
			"id":               log.ID,
			"name":             name,
			"email":            user.Email,
			"referral":         referral,
			"visit_start":      log.FirstSeen.Format("15:04"),
			"visit_end":        log.LastSeen.Format("15:04"),
			"duration_minutes": log.TotalMinutes,
		})
	}

	return c.JSON(fiber.Map{
		"total_visitors":   totalVisitors,
		"today_visitors":   todayVisitors,
		"today_time_spent": todayTimeSpent,
		"referral_stats":   referralStats,
		"visitors":         visitors,
	})
}
