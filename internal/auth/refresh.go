package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"example.com/finospark/backend/internal/models"
)

var ErrRefreshRejected = errors.New("refresh token rejected")

// HashToken возвращает SHA-256 хэш токена в hex-представлении.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RefreshRecord строит запись refresh-токена для хранения.
func RefreshRecord(userID uuid.UUID, pair TokenPair) models.RefreshToken {
	return models.RefreshToken{
		ID:        pair.RefreshID,
		UserID:    userID,
		TokenHash: HashToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
	}
}

// VerifyStored сверяет предъявленный refresh-токен с сохраненной записью.
func VerifyStored(stored models.RefreshToken, parsed ParsedToken, raw string, now time.Time) error {
	switch {
	case stored.RevokedAt != nil:
		return ErrRefreshRejected
	case !now.Before(stored.ExpiresAt):
		return ErrRefreshRejected
	case stored.UserID != parsed.UserID:
		return ErrRefreshRejected
	}

	computed := HashToken(raw)
	if subtle.ConstantTimeCompare([]byte(stored.TokenHash), []byte(computed)) != 1 {
		return ErrRefreshRejected
	}

	return nil
}
