// Package auth protects the mutating API routes. A single admin password
// (stored as an argon2id hash in the config) is exchanged for a short lived
// JWT; read and decode routes stay open.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/KevinKickass/OpenIOLink/internal/config"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleReader Role = "reader"
)

type Permission string

const (
	PermSpecsWrite   Permission = "specs:write"
	PermSystemReload Permission = "system:reload"
)

const adminSubject = "admin"

type Service struct {
	jwtHandler     *JWTHandler
	passwordHasher *PasswordHasher
	adminHash      string
}

func NewService(cfg config.AuthConfig) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if cfg.AdminPasswordHash == "" {
		return nil, errors.New("auth.admin_password_hash is required")
	}

	return &Service{
		jwtHandler:     NewJWTHandler(cfg.JWTSecret, cfg.TokenTTL),
		passwordHasher: NewPasswordHasher(),
		adminHash:      cfg.AdminPasswordHash,
	}, nil
}

// Login checks the admin password and returns a signed access token.
func (s *Service) Login(password string) (string, time.Time, error) {
	valid, err := s.passwordHasher.VerifyPassword(password, s.adminHash)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return "", time.Time{}, ErrInvalidCredentials
	}

	return s.jwtHandler.GenerateToken(adminSubject, RoleAdmin)
}

func (s *Service) ValidateToken(token string) (*Claims, error) {
	return s.jwtHandler.ValidateToken(token)
}

func roleToPermissions(role Role) []Permission {
	switch role {
	case RoleAdmin:
		return []Permission{PermSpecsWrite, PermSystemReload}
	default:
		return nil
	}
}
