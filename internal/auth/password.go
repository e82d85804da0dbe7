package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 12

var ErrPasswordMismatch = errors.New("password mismatch")

// dummyHash сравнивается при входе неизвестного пользователя,
// чтобы время ответа не выдавало наличие учетной записи.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("finospark-placeholder"), passwordCost)

// HashPassword хэширует пароль с использованием bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// ComparePassword сравнивает хэш с паролем через bcrypt.
func ComparePassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// CompareMissing тратит столько же времени, сколько проверка реального пароля.
func CompareMissing(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
