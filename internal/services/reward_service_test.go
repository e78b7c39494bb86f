package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/swcms/internal/models"
)

func TestHarmFactor(t *testing.T) {
	require.Equal(t, 1.0, harmFactor(models.WasteTypeWet))
	require.Equal(t, 1.0, harmFactor(models.WasteTypeDry))
	require.Equal(t, 0.5, harmFactor(models.WasteTypeRecyclable))
	require.Equal(t, 2.0, harmFactor(models.WasteTypePlastic))
	require.Equal(t, 3.0, harmFactor(models.WasteTypeEWaste))
	require.Equal(t, 1.0, harmFactor("garden"))
}

func TestRecalculateRanksByImpact(t *testing.T) {
	db := setupDB(t)
	svc := NewRewardService(db)

	// 10kg of wet waste has less impact than 5kg of e-waste (10 vs 15).
	a := seedAccount(t, db, models.RoleUser, nil)
	b := seedAccount(t, db, models.RoleUser, nil)
	seedPickup(t, db, a.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(10))
	seedPickup(t, db, b.UserID, models.WasteTypeEWaste, models.PickupStatusCompleted, weightOf(5))

	require.NoError(t, svc.Recalculate(context.Background()))

	var rewardA, rewardB models.Reward
	require.NoError(t, db.First(&rewardA, "user_id = ?", a.UserID).Error)
	require.NoError(t, db.First(&rewardB, "user_id = ?", b.UserID).Error)

	require.Equal(t, 100, rewardA.Points)
	require.Equal(t, 10, rewardB.Points)
	require.Equal(t, 10.0, rewardA.TotalWasteCollected)
	require.Equal(t, 5.0, rewardB.TotalWasteCollected)
}

func TestRecalculateIgnoresNonCompletedPickups(t *testing.T) {
	db := setupDB(t)
	svc := NewRewardService(db)

	a := seedAccount(t, db, models.RoleUser, nil)
	seedPickup(t, db, a.UserID, models.WasteTypePlastic, models.PickupStatusPending, nil)
	seedPickup(t, db, a.UserID, models.WasteTypePlastic, models.PickupStatusCancelled, nil)
	seedPickup(t, db, a.UserID, models.WasteTypePlastic, models.PickupStatusCompleted, weightOf(2))

	require.NoError(t, svc.Recalculate(context.Background()))

	var reward models.Reward
	require.NoError(t, db.First(&reward, "user_id = ?", a.UserID).Error)
	require.Equal(t, 2.0, reward.TotalWasteCollected)
}

func TestRecalculateIncludesResidentsWithoutPickups(t *testing.T) {
	db := setupDB(t)
	svc := NewRewardService(db)

	active := seedAccount(t, db, models.RoleUser, nil)
	idle := seedAccount(t, db, models.RoleUser, nil)
	worker := seedAccount(t, db, models.RoleWorker, nil)
	seedPickup(t, db, active.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(5))

	require.NoError(t, svc.Recalculate(context.Background()))

	// Zero impact outranks any positive impact.
	var idleReward, activeReward models.Reward
	require.NoError(t, db.First(&idleReward, "user_id = ?", idle.UserID).Error)
	require.NoError(t, db.First(&activeReward, "user_id = ?", active.UserID).Error)
	require.Equal(t, 100, idleReward.Points)
	require.Equal(t, 0.0, idleReward.TotalWasteCollected)
	require.Equal(t, 10, activeReward.Points)

	// Workers never get reward rows.
	var count int64
	require.NoError(t, db.Model(&models.Reward{}).Where("user_id = ?", worker.UserID).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestRecalculateSingleResidentGetsMax(t *testing.T) {
	db := setupDB(t)
	svc := NewRewardService(db)

	a := seedAccount(t, db, models.RoleUser, nil)
	seedPickup(t, db, a.UserID, models.WasteTypeEWaste, models.PickupStatusCompleted, weightOf(50))

	require.NoError(t, svc.Recalculate(context.Background()))

	var reward models.Reward
	require.NoError(t, db.First(&reward, "user_id = ?", a.UserID).Error)
	require.Equal(t, 100, reward.Points)
}

func TestRecalculateLinearSpread(t *testing.T) {
	db := setupDB(t)
	svc := NewRewardService(db)

	low := seedAccount(t, db, models.RoleUser, nil)
	mid := seedAccount(t, db, models.RoleUser, nil)
	high := seedAccount(t, db, models.RoleUser, nil)
	seedPickup(t, db, low.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(1))
	seedPickup(t, db, mid.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(2))
	seedPickup(t, db, high.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(3))

	require.NoError(t, svc.Recalculate(context.Background()))

	var lowReward, midReward, highReward models.Reward
	require.NoError(t, db.First(&lowReward, "user_id = ?", low.UserID).Error)
	require.NoError(t, db.First(&midReward, "user_id = ?", mid.UserID).Error)
	require.NoError(t, db.First(&highReward, "user_id = ?", high.UserID).Error)

	require.Equal(t, 100, lowReward.Points)
	require.Equal(t, 55, midReward.Points)
	require.Equal(t, 10, highReward.Points)
}

func TestRecalculateTieBreaksOnUserID(t *testing.T) {
	db := setupDB(t)
	svc := NewRewardService(db)

	a := seedAccount(t, db, models.RoleUser, nil)
	b := seedAccount(t, db, models.RoleUser, nil)

	require.NoError(t, svc.Recalculate(context.Background()))

	var rewardA, rewardB models.Reward
	require.NoError(t, db.First(&rewardA, "user_id = ?", a.UserID).Error)
	require.NoError(t, db.First(&rewardB, "user_id = ?", b.UserID).Error)

	if a.UserID.String() < b.UserID.String() {
		require.Equal(t, 100, rewardA.Points)
		require.Equal(t, 10, rewardB.Points)
	} else {
		require.Equal(t, 10, rewardA.Points)
		require.Equal(t, 100, rewardB.Points)
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	db := setupDB(t)
	svc := NewRewardService(db)

	a := seedAccount(t, db, models.RoleUser, nil)
	b := seedAccount(t, db, models.RoleUser, nil)
	seedPickup(t, db, a.UserID, models.WasteTypePlastic, models.PickupStatusCompleted, weightOf(4))
	seedPickup(t, db, b.UserID, models.WasteTypeDry, models.PickupStatusCompleted, weightOf(1))

	require.NoError(t, svc.Recalculate(context.Background()))
	require.NoError(t, svc.Recalculate(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.Reward{}).Count(&count).Error)
	require.Equal(t, int64(2), count)

	var rewardA models.Reward
	require.NoError(t, db.First(&rewardA, "user_id = ?", a.UserID).Error)
	require.Equal(t, 10, rewardA.Points)
	require.Equal(t, 4.0, rewardA.TotalWasteCollected)
}

func TestAwardBonusGoesToLowestTotal(t *testing.T) {
	db := setupDB(t)
	svc := NewRewardService(db)

	a := seedAccount(t, db, models.RoleUser, nil)
	b := seedAccount(t, db, models.RoleUser, nil)
	seedPickup(t, db, a.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(8))
	seedPickup(t, db, b.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(3))
	require.NoError(t, svc.Recalculate(context.Background()))

	reward, err := svc.AwardBonus(context.Background(), 15)
	require.NoError(t, err)
	require.Equal(t, b.UserID, reward.UserID)
	require.Equal(t, 100+15, reward.Points)

	var stored models.Reward
	require.NoError(t, db.First(&stored, "user_id = ?", b.UserID).Error)
	require.Equal(t, 115, stored.Points)
}

func TestRecalculateWaitsForHeldLock(t *testing.T) {
	db := setupDB(t)
	svc := NewRewardService(db)
	seedAccount(t, db, models.RoleUser, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = svc.locked(func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	done := make(chan error, 1)
	go func() { done <- svc.Recalculate(context.Background()) }()

	select {
	case <-done:
		t.Fatal("recompute ran while the lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-done)
}

func TestMarkCompletedHoldsRecomputeLock(t *testing.T) {
	db := setupDB(t)
	rewards := NewRewardService(db)
	pickups := NewPickupService(db, rewards)

	wardID := seedWard(t, db, 1)
	resident := seedAccount(t, db, models.RoleUser, &wardID)
	worker := seedAccount(t, db, models.RoleWorker, &wardID)
	pickup := seedPickup(t, db, resident.UserID, models.WasteTypeWet, models.PickupStatusPicked, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = rewards.locked(func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	done := make(chan error, 1)
	go func() {
		_, err := pickups.MarkCompleted(context.Background(), worker, pickup.ID, 2)
		done <- err
	}()

	// The completion transaction must not even start while a recompute
	// holds the lock.
	select {
	case <-done:
		t.Fatal("completion ran while the recompute lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-done)

	var reward models.Reward
	require.NoError(t, db.First(&reward, "user_id = ?", resident.UserID).Error)
	require.Equal(t, 2.0, reward.TotalWasteCollected)
}

func TestAwardBonusValidation(t *testing.T) {
	db := setupDB(t)
	svc := NewRewardService(db)

	var validationErr *ValidationError
	_, err := svc.AwardBonus(context.Background(), 0)
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.AwardBonus(context.Background(), 10)
	require.True(t, errors.Is(err, ErrNotFound))
}
