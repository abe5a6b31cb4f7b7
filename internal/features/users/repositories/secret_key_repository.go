package users_repositories

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"

	users_models "timebridge/internal/features/users/models"
	"timebridge/internal/storage"

	"gorm.io/gorm"
)

type SecretKeyRepository struct {
	mu     sync.Mutex
	cached string
}

// GetSecretKey returns the JWT signing key, generating and storing one on
// first use.
func (r *SecretKeyRepository) GetSecretKey() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != "" {
		return r.cached, nil
	}

	var secretKey users_models.SecretKey
	err := storage.GetDb().First(&secretKey).Error
	if err == nil {
		r.cached = secretKey.Secret
		return r.cached, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	secretKey.Secret = hex.EncodeToString(buf)
	if err := storage.GetDb().Create(&secretKey).Error; err != nil {
		return "", err
	}

	r.cached = secretKey.Secret
	return r.cached, nil
}
