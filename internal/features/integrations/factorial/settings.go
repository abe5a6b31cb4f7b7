package factorial

import (
	"errors"
	"fmt"
	"strings"
	"time"

	users_interfaces "timebridge/internal/features/users/interfaces"
	users_models "timebridge/internal/features/users/models"
	"timebridge/internal/storage"
	"timebridge/internal/util/app_errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const settingsID = "factorial"

type Settings struct {
	ID              string     `json:"-"                         gorm:"column:id;primaryKey"`
	APIKey          string     `json:"-"                         gorm:"column:api_key"`
	IsEnabled       bool       `json:"isEnabled"                 gorm:"column:is_enabled"`
	LastSyncAt      *time.Time `json:"lastSyncAt,omitempty"      gorm:"column:last_sync_at"`
	LastSyncSuccess *bool      `json:"lastSyncSuccess,omitempty" gorm:"column:last_sync_success"`
	LastSyncError   *string    `json:"lastSyncError,omitempty"   gorm:"column:last_sync_error"`
	UpdatedAt       time.Time  `json:"updatedAt"                 gorm:"column:updated_at"`
}

func (Settings) TableName() string {
	return "integration_settings"
}

type SettingsResponseDTO struct {
	*Settings
	HasAPIKey    bool   `json:"hasApiKey"`
	MaskedAPIKey string `json:"maskedApiKey,omitempty"`
	KeySource    string `json:"keySource"`
}

type UpdateSettingsRequestDTO struct {
	APIKey    *string `json:"apiKey"`
	IsEnabled *bool   `json:"isEnabled"`
}

type SettingsRepository struct{}

// Get returns the stored settings, or disabled defaults when none exist yet.
func (r *SettingsRepository) Get() (*Settings, error) {
	var settings Settings

	err := storage.GetDb().Where("id = ?", settingsID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Settings{ID: settingsID}, nil
		}

		return nil, err
	}

	return &settings, nil
}

func (r *SettingsRepository) Save(settings *Settings) error {
	settings.ID = settingsID
	settings.UpdatedAt = time.Now().UTC()

	return storage.GetDb().
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"api_key", "is_enabled", "last_sync_at", "last_sync_success", "last_sync_error", "updated_at",
			}),
		}).
		Create(settings).Error
}

type settingsStore interface {
	Get() (*Settings, error)
	Save(settings *Settings) error
}

type SettingsService struct {
	settingsRepository settingsStore
	fallbackAPIKey     string
	auditLogWriter     users_interfaces.AuditLogWriter
}

func NewSettingsService(store settingsStore, fallbackAPIKey string) *SettingsService {
	return &SettingsService{
		settingsRepository: store,
		fallbackAPIKey:     fallbackAPIKey,
	}
}

func (s *SettingsService) SetAuditLogWriter(writer users_interfaces.AuditLogWriter) {
	s.auditLogWriter = writer
}

func (s *SettingsService) GetSettings() (*SettingsResponseDTO, error) {
	settings, err := s.settingsRepository.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get integration settings: %w", err)
	}

	return s.toResponse(settings), nil
}

func (s *SettingsService) UpdateSettings(
	request *UpdateSettingsRequestDTO,
	user *users_models.User,
) (*SettingsResponseDTO, error) {
	if !user.IsAdmin() {
		return nil, app_errors.NewAuthorizationError("only administrators can change integration settings")
	}

	settings, err := s.settingsRepository.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get integration settings: %w", err)
	}

	if request.APIKey != nil {
		settings.APIKey = strings.TrimSpace(*request.APIKey)
	}
	if request.IsEnabled != nil {
		settings.IsEnabled = *request.IsEnabled
	}

	if err := s.settingsRepository.Save(settings); err != nil {
		return nil, fmt.Errorf("failed to save integration settings: %w", err)
	}

	if s.auditLogWriter != nil {
		s.auditLogWriter.WriteAuditLog(
			fmt.Sprintf("Factorial settings updated (enabled: %t)", settings.IsEnabled),
			&user.ID,
			nil,
		)
	}

	return s.toResponse(settings), nil
}

// ResolveAPIKey prefers the stored key over FACTORIAL_API_KEY. An empty
// result is left for the client to reject.
func (s *SettingsService) ResolveAPIKey() (string, error) {
	settings, err := s.settingsRepository.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get integration settings: %w", err)
	}

	if settings.APIKey != "" {
		return settings.APIKey, nil
	}

	return s.fallbackAPIKey, nil
}

func (s *SettingsService) IsEnabled() (bool, error) {
	settings, err := s.settingsRepository.Get()
	if err != nil {
		return false, err
	}

	return settings.IsEnabled, nil
}

func (s *SettingsService) RecordSyncResult(report *SyncReport) error {
	settings, err := s.settingsRepository.Get()
	if err != nil {
		return err
	}

	finishedAt := report.FinishedAt
	success := report.Success
	settings.LastSyncAt = &finishedAt
	settings.LastSyncSuccess = &success
	settings.LastSyncError = nil
	if report.Error != "" {
		message := report.Error
		settings.LastSyncError = &message
	}

	return s.settingsRepository.Save(settings)
}

func (s *SettingsService) toResponse(settings *Settings) *SettingsResponseDTO {
	response := &SettingsResponseDTO{Settings: settings, KeySource: "none"}

	key := settings.APIKey
	switch {
	case key != "":
		response.KeySource = "settings"
	case s.fallbackAPIKey != "":
		key = s.fallbackAPIKey
		response.KeySource = "environment"
	}

	if key != "" {
		response.HasAPIKey = true
		response.MaskedAPIKey = maskKey(key)
	}

	return response
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}

	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
