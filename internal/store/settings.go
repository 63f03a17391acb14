package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Settings keys for the persisted calibration pair.
const (
	settingSittingHipY  = "calibration.sitting_hip_y"
	settingStandingHipY = "calibration.standing_hip_y"
)

// SettingsRepository provides key-value settings storage, including the
// calibration persistence contract used by the exercise engine.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get retrieves a setting value by key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set inserts or replaces a setting value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes a setting. Deleting an absent key is not an error.
func (r *SettingsRepository) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

// SaveCalibration persists the calibrated hip-height pair.
func (r *SettingsRepository) SaveCalibration(sittingHipY, standingHipY float64) error {
	if err := r.Set(settingSittingHipY, strconv.FormatFloat(sittingHipY, 'f', -1, 64)); err != nil {
		return fmt.Errorf("save sitting reference: %w", err)
	}
	if err := r.Set(settingStandingHipY, strconv.FormatFloat(standingHipY, 'f', -1, 64)); err != nil {
		return fmt.Errorf("save standing reference: %w", err)
	}
	return nil
}

// LoadCalibration returns the persisted pair. ok is false when no pair is
// stored or the stored pair is invalid (zero or equal values).
func (r *SettingsRepository) LoadCalibration() (sittingHipY, standingHipY float64, ok bool, err error) {
	sittingStr, err := r.Get(settingSittingHipY)
	if errors.Is(err, ErrNotFound) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	standingStr, err := r.Get(settingStandingHipY)
	if errors.Is(err, ErrNotFound) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}

	sittingHipY, err = strconv.ParseFloat(sittingStr, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("parse sitting reference: %w", err)
	}
	standingHipY, err = strconv.ParseFloat(standingStr, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("parse standing reference: %w", err)
	}

	if sittingHipY == 0 || standingHipY == 0 || sittingHipY == standingHipY {
		return 0, 0, false, nil
	}
	return sittingHipY, standingHipY, true, nil
}

// ClearCalibration removes the persisted pair. Clearing twice is a no-op.
func (r *SettingsRepository) ClearCalibration() error {
	if err := r.Delete(settingSittingHipY); err != nil {
		return err
	}
	return r.Delete(settingStandingHipY)
}
