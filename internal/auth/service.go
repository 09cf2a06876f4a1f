package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const minPasswordLen = 8

type Service struct {
	DB  *gorm.DB
	JWT *JWT
}

func normalizeEmail(e string) string {
	return strings.TrimSpace(strings.ToLower(e))
}

// Register creates the owner account and returns a token for it. It fails
// with ErrConflict once any user exists.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") || len(password) < minPasswordLen {
		return "", fmt.Errorf("%w: email and a password of at least %d characters are required", ErrInvalidInput, minPasswordLen)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	u := User{Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&User{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: registration is closed", ErrConflict)
		}
		return tx.Create(&u).Error
	})
	if err != nil {
		return "", err
	}
	return s.JWT.Sign(u.ID)
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	var u User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !ComparePassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return s.JWT.Sign(u.ID)
}
