package factorial

import (
	"testing"
	"time"

	users_models "timebridge/internal/features/users/models"
	"timebridge/internal/util/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySettingsStore struct {
	settings *Settings
}

func (m *memorySettingsStore) Get() (*Settings, error) {
	if m.settings == nil {
		return &Settings{ID: settingsID}, nil
	}

	copied := *m.settings
	return &copied, nil
}

func (m *memorySettingsStore) Save(settings *Settings) error {
	copied := *settings
	m.settings = &copied
	return nil
}

func Test_ResolveAPIKey_PrefersStoredKeyOverEnvironment(t *testing.T) {
	store := &memorySettingsStore{}
	service := NewSettingsService(store, "env-key")

	key, err := service.ResolveAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "env-key", key)

	stored := "stored-key"
	_, err = service.UpdateSettings(&UpdateSettingsRequestDTO{APIKey: &stored}, &users_models.User{
		ID:     uuid.New(),
		RoleID: users_models.AdminRoleID,
	})
	require.NoError(t, err)

	key, err = service.ResolveAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "stored-key", key)
}

func Test_GetSettings_MasksKey(t *testing.T) {
	service := NewSettingsService(&memorySettingsStore{settings: &Settings{ID: settingsID, APIKey: "abcdef123456"}}, "")

	response, err := service.GetSettings()

	require.NoError(t, err)
	assert.True(t, response.HasAPIKey)
	assert.Equal(t, "********3456", response.MaskedAPIKey)
	assert.Equal(t, "settings", response.KeySource)
}

func Test_UpdateSettings_AsNonAdmin_ReturnsAuthorizationError(t *testing.T) {
	store := &memorySettingsStore{}
	service := NewSettingsService(store, "")
	enabled := true

	_, err := service.UpdateSettings(&UpdateSettingsRequestDTO{IsEnabled: &enabled}, &users_models.User{
		ID:     uuid.New(),
		RoleID: "project_manager",
	})

	var authorizationErr *app_errors.AuthorizationError
	assert.ErrorAs(t, err, &authorizationErr)
	assert.Nil(t, store.settings)
}

func Test_RecordSyncResult_StoresOutcome(t *testing.T) {
	store := &memorySettingsStore{}
	service := NewSettingsService(store, "")
	finishedAt := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, service.RecordSyncResult(&SyncReport{
		Success:    false,
		Error:      "factorial responded with status 401",
		FinishedAt: finishedAt,
	}))

	require.NotNil(t, store.settings)
	assert.Equal(t, finishedAt, *store.settings.LastSyncAt)
	assert.False(t, *store.settings.LastSyncSuccess)
	assert.Equal(t, "factorial responded with status 401", *store.settings.LastSyncError)
}
