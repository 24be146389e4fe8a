package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"facility-buddy-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// LoadDirectory returns the persisted facility directory in stored order
	// together with the time of the last successful refresh. A missing
	// directory comes back empty with a zero time, not an error.
	LoadDirectory(ctx context.Context) ([]model.Facility, time.Time, error)

	// ReplaceDirectory persists a freshly built directory wholesale: new
	// entries inserted, surviving entries updated, entries absent from the
	// new list removed, and the refresh timestamp advanced — all in one
	// transaction. Readers see either the old directory or the new one.
	ReplaceDirectory(ctx context.Context, facilities []model.Facility, refreshedAt time.Time) error

	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error

	// WatchedFacilityIDs lists facilities at least one push subscription is
	// watching.
	WatchedFacilityIDs(ctx context.Context) ([]int64, error)
	SubscriptionsForFacility(ctx context.Context, facilityID int64) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) LoadDirectory(ctx context.Context) ([]model.Facility, time.Time, error) {
	var facilities []model.Facility
	if err := s.db.WithContext(ctx).Order("position asc").Find(&facilities).Error; err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load facility directory: %w", err)
	}

	raw, err := s.GetPreference(ctx, model.PrefDirectoryTimestamp)
	if err != nil {
		return nil, time.Time{}, err
	}

	var refreshedAt time.Time
	if raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("corrupt directory timestamp %q: %w", raw, err)
		}
		refreshedAt = time.UnixMilli(ms)
	}
	return facilities, refreshedAt, nil
}

func (s *gormStore) ReplaceDirectory(ctx context.Context, facilities []model.Facility, refreshedAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keep := make([]int64, 0, len(facilities))
		for i := range facilities {
			facilities[i].Position = i
			keep = append(keep, facilities[i].OrgID)

			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "org_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "address", "latitude", "longitude", "image_url", "position", "updated_at",
				}),
			}).Create(&facilities[i]).Error; err != nil {
				return fmt.Errorf("failed to upsert facility %d: %w", facilities[i].OrgID, err)
			}
		}

		// Facilities gone from the authoritative list are dropped.
		drop := tx.Where("1 = 1")
		if len(keep) > 0 {
			drop = tx.Where("org_id NOT IN ?", keep)
		}
		if err := drop.Delete(&model.Facility{}).Error; err != nil {
			return fmt.Errorf("failed to prune removed facilities: %w", err)
		}

		ts := model.Preference{
			Key:   model.PrefDirectoryTimestamp,
			Value: strconv.FormatInt(refreshedAt.UnixMilli(), 10),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&ts).Error; err != nil {
			return fmt.Errorf("failed to persist directory timestamp: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetPreference(ctx context.Context, key string) (string, error) {
	var pref model.Preference
	err := s.db.WithContext(ctx).First(&pref, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read preference %q: %w", key, err)
	}
	return pref.Value, nil
}

func (s *gormStore) SetPreference(ctx context.Context, key, value string) error {
	pref := model.Preference{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("failed to write preference %q: %w", key, err)
	}
	return nil
}

func (s *gormStore) WatchedFacilityIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Table("subscription_facility_mapping").
		Distinct("facility_org_id").
		Order("facility_org_id asc").
		Pluck("facility_org_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list watched facilities: %w", err)
	}
	return ids, nil
}

func (s *gormStore) SubscriptionsForFacility(ctx context.Context, facilityID int64) ([]model.PushSubscription, error) {
	var subscriptions []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_facility_mapping sfm ON sfm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sfm.facility_org_id = ?", facilityID).
		Find(&subscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for facility %d: %w", facilityID, err)
	}
	return subscriptions, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	// Select(Associations) also clears the mapping rows; otherwise the
	// facility would stay watched forever.
	if err := s.db.WithContext(ctx).Select(clause.Associations).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription %s: %w", endpoint, err)
	}
	return nil
}
