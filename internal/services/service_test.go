package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/swcms/internal/database"
	"github.com/example/swcms/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Per-test in-memory database to avoid cross-test interference.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedWard(t *testing.T, db *gorm.DB, number int) uuid.UUID {
	t.Helper()
	panchayath := models.Panchayath{
		Name: "Panchayath " + uuid.NewString(),
		Code: uuid.NewString(),
	}
	require.NoError(t, db.Create(&panchayath).Error)

	ward := models.Ward{
		Name:         fmt.Sprintf("Ward %d", number),
		PanchayathID: panchayath.ID,
		WardNumber:   number,
	}
	require.NoError(t, db.Create(&ward).Error)
	return ward.ID
}

func seedAccount(t *testing.T, db *gorm.DB, role string, wardID *uuid.UUID) Actor {
	t.Helper()
	user := models.User{
		Username:     uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "irrelevant",
	}
	require.NoError(t, db.Create(&user).Error)

	profile := models.Profile{UserID: user.ID, Role: role, WardID: wardID}
	require.NoError(t, db.Create(&profile).Error)

	return Actor{UserID: user.ID, Role: role, WardID: wardID}
}

func seedPickup(t *testing.T, db *gorm.DB, userID uuid.UUID, wasteType, status string, weight *float64) models.PickupRequest {
	t.Helper()
	pickup := models.PickupRequest{
		UserID:      userID,
		WasteType:   wasteType,
		Status:      status,
		WasteWeight: weight,
	}
	require.NoError(t, db.Create(&pickup).Error)
	return pickup
}

func weightOf(kg float64) *float64 {
	return &kg
}
