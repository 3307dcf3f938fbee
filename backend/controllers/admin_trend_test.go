package controllers

import (
	"testing"
	"time"

	"viadocs/backend/models"
	"viadocs/backend/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTrendDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, utils.Migrate(db))
	return db
}

func addUser(t *testing.T, db *gorm.DB, username, role string, createdAt time.Time) {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@x.com",
		FirstName:    "T",
		LastName:     "U",
		PasswordHash: "x",
		Role:         role,
	}
	user.CreatedAt = createdAt
	require.NoError(t, db.Create(&user).Error)
}

func TestRegistrationTrendDaily(t *testing.T) {
	db := newTrendDB(t)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	addUser(t, db, "a", "student", now.AddDate(0, 0, -6).Add(time.Hour)) // oldest bucket
	addUser(t, db, "b", "student", now.Add(-time.Hour))                  // today
	addUser(t, db, "c", "student", now.Add(-2*time.Hour))                // today
	addUser(t, db, "d", "student", now.AddDate(0, 0, -8))                // outside the window
	addUser(t, db, "e", "employee", now.Add(-time.Hour))                 // other role

	buckets := registrationTrend(db, "daily", "student", now)
	require.Len(t, buckets, 7)

	assert.Equal(t, "04 Mar", buckets[0].Label)
	assert.Equal(t, int64(1), buckets[0].Count)
	assert.Equal(t, "10 Mar", buckets[6].Label)
	assert.Equal(t, int64(2), buckets[6].Count)

	var total int64
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, int64(3), total)
}

func TestRegistrationTrendWeekly(t *testing.T) {
	db := newTrendDB(t)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	addUser(t, db, "a", "student", now.AddDate(0, 0, -10)) // Week 3 window
	addUser(t, db, "b", "student", now.AddDate(0, 0, -2))  // Week 4 window
	addUser(t, db, "c", "student", now.AddDate(0, 0, -30)) // outside

	buckets := registrationTrend(db, "weekly", "student", now)
	require.Len(t, buckets, 4)

	assert.Equal(t, "Week 1", buckets[0].Label)
	assert.Equal(t, int64(0), buckets[0].Count)
	assert.Equal(t, int64(1), buckets[2].Count)
	assert.Equal(t, "Week 4", buckets[3].Label)
	assert.Equal(t, int64(1), buckets[3].Count)
}

func TestRegistrationTrendMonthlyYearRollover(t *testing.T) {
	db := newTrendDB(t)
	now := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

	addUser(t, db, "a", "student", time.Date(2025, time.December, 20, 9, 0, 0, 0, time.UTC))
	addUser(t, db, "b", "student", time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC))
	addUser(t, db, "c", "student", time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)) // outside

	buckets := registrationTrend(db, "monthly", "student", now)
	require.Len(t, buckets, 6)

	assert.Equal(t, "Aug 2025", buckets[0].Label)
	assert.Equal(t, "Dec 2025", buckets[4].Label)
	assert.Equal(t, int64(1), buckets[4].Count)
	assert.Equal(t, "Jan 2026", buckets[5].Label)
	assert.Equal(t, int64(1), buckets[5].Count)
}

func TestReferralDistributionRoleScoped(t *testing.T) {
	db := newTrendDB(t)
	now := time.Now().UTC()

	addUser(t, db, "a", "student", now)
	db.Model(&models.User{}).Where("username = ?", "a").Update("referred_by", "DOC3")
	addUser(t, db, "b", "employee", now)
	db.Model(&models.User{}).Where("username = ?", "b").Update("referred_by", "DOC3")

	graph := referralDistribution(db, "student")
	require.Len(t, graph, len(models.ReferralCodes))

	for _, bucket := range graph {
		if bucket.Referral == "DOC3" {
			assert.Equal(t, int64(1), bucket.Users)
		} else {
			assert.Equal(t, int64(0), bucket.Users, bucket.Referral)
		}
	}
}
