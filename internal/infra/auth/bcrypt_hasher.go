// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"usermgmt/config"
	domainerrors "usermgmt/internal/domain/errors"
	"usermgmt/internal/domain/service"
)

const (
	defaultMinLength = 6
	// bcrypt ignores every byte past 72.
	defaultMaxLength = 72
)

// passwordPolicy holds the resolved strength rules.
type passwordPolicy struct {
	minLength        int
	maxLength        int
	requireUppercase bool
	requireLowercase bool
	requireNumbers   bool
	requireSpecial   bool
	forbiddenWords   []string
}

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost   int
	policy passwordPolicy
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		cost = cfg.Auth.BcryptCost
	}

	var strength *config.PasswordStrengthConfig
	if cfg != nil {
		strength = cfg.PasswordStrength
	}

	return &bcryptHasher{
		cost:   clampCost(cost),
		policy: newPolicy(strength),
	}
}

// NewBcryptHasherWithCost builds a hasher with the default policy and the given cost.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	return &bcryptHasher{
		cost:   clampCost(cost),
		policy: newPolicy(nil),
	}
}

func clampCost(cost int) int {
	if cost < bcrypt.MinCost {
		return bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		return bcrypt.MaxCost
	}

	return cost
}

func newPolicy(cfg *config.PasswordStrengthConfig) passwordPolicy {
	policy := passwordPolicy{
		minLength: defaultMinLength,
		maxLength: defaultMaxLength,
	}
	if cfg == nil {
		return policy
	}

	if cfg.MinLength > 0 {
		policy.minLength = cfg.MinLength
	}
	if cfg.MaxLength > 0 && cfg.MaxLength < defaultMaxLength {
		policy.maxLength = cfg.MaxLength
	}
	policy.requireUppercase = cfg.RequireUppercase
	policy.requireLowercase = cfg.RequireLowercase
	policy.requireNumbers = cfg.RequireNumbers
	policy.requireSpecial = cfg.RequireSpecial
	for _, word := range cfg.ForbiddenWords {
		if word = strings.TrimSpace(word); word != "" {
			policy.forbiddenWords = append(policy.forbiddenWords, strings.ToLower(word))
		}
	}

	return policy
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// The password is validated against the policy first.
func (h *bcryptHasher) Hash(password string) (string, error) {
	if err := h.ValidatePasswordStrength(password); err != nil {
		return "", err
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	// err is nil if the password and hash match.
	return err == nil
}

// ValidatePasswordStrength checks password against the configured policy.
// Length is measured in bytes since that is what bcrypt consumes.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	p := h.policy

	if len(password) < p.minLength {
		return domainerrors.ErrPasswordStrength.WithDetails(
			fmt.Sprintf("password must be at least %d characters long", p.minLength))
	}
	if len(password) > p.maxLength {
		return domainerrors.ErrPasswordStrength.WithDetails(
			fmt.Sprintf("password must be at most %d bytes long", p.maxLength))
	}
	if p.requireLowercase && !h.hasLowercase(password) {
		return domainerrors.ErrPasswordStrength.WithDetails("password must contain at least one lowercase letter")
	}
	if p.requireUppercase && !h.hasUppercase(password) {
		return domainerrors.ErrPasswordStrength.WithDetails("password must contain at least one uppercase letter")
	}
	if p.requireNumbers && !h.hasNumbers(password) {
		return domainerrors.ErrPasswordStrength.WithDetails("password must contain at least one number")
	}
	if p.requireSpecial && !h.hasSpecialChars(password) {
		return domainerrors.ErrPasswordStrength.WithDetails("password must contain at least one special character")
	}
	if h.containsForbiddenWords(password, p.forbiddenWords) {
		return domainerrors.ErrPasswordForbiddenWords.WithDetails("password contains forbidden words")
	}

	return nil
}

func (h *bcryptHasher) hasUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}

	return false
}

func (h *bcryptHasher) hasLowercase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}

	return false
}

func (h *bcryptHasher) hasNumbers(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}

	return false
}

func (h *bcryptHasher) hasSpecialChars(s string) bool {
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return true
		}
	}

	return false
}

// containsForbiddenWords expects words already lowercased.
func (h *bcryptHasher) containsForbiddenWords(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, word := range words {
		if strings.Contains(lower, word) {
			return true
		}
	}

	return false
}
