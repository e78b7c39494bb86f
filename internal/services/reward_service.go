package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/models"
)

// Reward points are assigned on a linear scale: the user with the lowest
// environmental impact gets maxRewardPoints, the highest gets minRewardPoints.
const (
	maxRewardPoints = 100
	minRewardPoints = 10
)

// harmFactors weight waste mass by how harmful the waste type is.
// Unrecognized types count as 1.0.
var harmFactors = map[string]float64{
	models.WasteTypeWet:        1.0,
	models.WasteTypeDry:        1.0,
	models.WasteTypeRecyclable: 0.5,
	models.WasteTypePlastic:    2.0,
	models.WasteTypeEWaste:     3.0,
}

func harmFactor(wasteType string) float64 {
	if f, ok := harmFactors[wasteType]; ok {
		return f
	}
	return 1.0
}

// RewardService recomputes reward points and waste totals from completed
// pickups. The recompute is wholesale and idempotent: running it twice over
// unchanged data yields identical results.
type RewardService struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewRewardService constructs a RewardService.
func NewRewardService(db *gorm.DB) *RewardService {
	return &RewardService{db: db}
}

// Recalculate runs a full recompute inside its own transaction.
func (s *RewardService) Recalculate(ctx context.Context) error {
	return s.locked(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.RecalculateIn(tx)
		})
	})
}

// locked runs fn while holding the recompute mutex. The lock must cover the
// whole transaction, commit included: releasing it earlier would let a
// concurrent recompute scan before this one's rows land and then commit
// stale aggregates on top of them.
func (s *RewardService) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type impactTally struct {
	userID  uuid.UUID
	impact  float64
	totalKg float64
}

// RecalculateIn runs the recompute on the caller's transaction so a pickup
// completion and its reward update commit or roll back together. The caller
// must already hold the recompute mutex via locked, wrapped around the whole
// transaction.
func (s *RewardService) RecalculateIn(tx *gorm.DB) error {
	var pickups []models.PickupRequest
	if err := tx.
		Where("status = ? AND waste_weight IS NOT NULL", models.PickupStatusCompleted).
		Find(&pickups).Error; err != nil {
		return err
	}

	tallies := make(map[uuid.UUID]*impactTally)
	for _, p := range pickups {
		t, ok := tallies[p.UserID]
		if !ok {
			t = &impactTally{userID: p.UserID}
			tallies[p.UserID] = t
		}
		t.totalKg += *p.WasteWeight
		t.impact += *p.WasteWeight * harmFactor(p.WasteType)
	}

	// Residents with no completed pickups still get a zero-valued entry.
	var profiles []models.Profile
	if err := tx.Where("role = ?", models.RoleUser).Find(&profiles).Error; err != nil {
		return err
	}
	for _, profile := range profiles {
		if _, ok := tallies[profile.UserID]; !ok {
			tallies[profile.UserID] = &impactTally{userID: profile.UserID}
		}
	}

	ranked := make([]*impactTally, 0, len(tallies))
	for _, t := range tallies {
		ranked = append(ranked, t)
	}
	// Lower impact ranks better; user id breaks ties deterministically.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].impact != ranked[j].impact {
			return ranked[i].impact < ranked[j].impact
		}
		return ranked[i].userID.String() < ranked[j].userID.String()
	})

	n := len(ranked)
	for rank, t := range ranked {
		points := maxRewardPoints
		if n > 1 {
			spread := float64(maxRewardPoints - minRewardPoints)
			points = minRewardPoints + int(spread*float64(n-1-rank)/float64(n-1))
		}
		if err := upsertReward(tx, t.userID, points, t.totalKg); err != nil {
			return err
		}
	}

	return nil
}

func upsertReward(tx *gorm.DB, userID uuid.UUID, points int, totalKg float64) error {
	var reward models.Reward
	err := tx.Where("user_id = ?", userID).First(&reward).Error
	if err == gorm.ErrRecordNotFound {
		return tx.Create(&models.Reward{
			UserID:              userID,
			Points:              points,
			TotalWasteCollected: totalKg,
		}).Error
	}
	if err != nil {
		return err
	}

	return tx.Model(&models.Reward{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"points":                points,
			"total_waste_collected": totalKg,
		}).Error
}

// AwardBonus grants a flat bonus to the resident reward with the lowest
// waste total, incrementing points without rescaling. Ties break on user id
// so repeated calls are deterministic.
func (s *RewardService) AwardBonus(ctx context.Context, points int) (*models.Reward, error) {
	if points <= 0 {
		return nil, newValidationError("bonus points must be greater than zero")
	}

	var reward models.Reward
	err := s.db.WithContext(ctx).
		Select("rewards.*").
		Joins("JOIN profiles ON profiles.user_id = rewards.user_id").
		Where("profiles.role = ?", models.RoleUser).
		Order("rewards.total_waste_collected asc, rewards.user_id asc").
		First(&reward).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Reward{}).
		Where("id = ?", reward.ID).
		Update("points", gorm.Expr("points + ?", points)).Error; err != nil {
		return nil, err
	}

	reward.Points += points
	return &reward, nil
}
