package data

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// newTestDB returns a migrated in-memory database private to t.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

// closeDB makes every further query on db fail.
func closeDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func createUser(t *testing.T, db *gorm.DB, email string) User {
	t.Helper()
	u := User{Email: email, Name: email}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// createProperty inserts p owned by host, created at the given time.
func createProperty(t *testing.T, db *gorm.DB, host User, p Property, createdAt time.Time) Property {
	t.Helper()
	p.HostID = host.ID
	p.CreatedAt = createdAt
	if p.MaxGuests == 0 {
		p.MaxGuests = 2
	}
	if p.PropertyType == "" {
		p.PropertyType = "city"
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&p).Error)
	return p
}

func createImage(t *testing.T, db *gorm.DB, p Property, url string, primary bool, createdAt time.Time) Image {
	t.Helper()
	img := Image{PropertyID: p.ID, URL: url, IsPrimary: primary, CreatedAt: createdAt}
	require.NoError(t, db.Create(&img).Error)
	return img
}

func createReview(t *testing.T, db *gorm.DB, p Property, author User, rating int, createdAt time.Time) Review {
	t.Helper()
	r := Review{PropertyID: p.ID, UserID: author.ID, Rating: rating, Photos: []string{}, CreatedAt: createdAt}
	require.NoError(t, db.Omit(clause.Associations).Create(&r).Error)
	return r
}

func ptr[T any](v T) *T {
	return &v
}
