package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/questchain/questchain-api/internal/config"
	"github.com/questchain/questchain-api/internal/dto"
	"github.com/questchain/questchain-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	otpLifetime       = 5 * time.Minute
	minPasswordLength = 8
)

var (
	ErrNameRequired       = errors.New("name is required")
	ErrUsernameRequired   = errors.New("username is required")
	ErrInvalidEmail       = errors.New("please include a valid email")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrMissingCredentials = errors.New("username or email and password are required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrOTPExpired         = errors.New("OTP has expired")
)

// IsConflict reports whether err is a uniqueness conflict (HTTP 409).
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrEmailInUse) || errors.Is(err, ErrAccountConflict)
}

// IsValidation reports whether err is a client input error (HTTP 400).
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrNameRequired, ErrUsernameRequired, ErrInvalidEmail, ErrPasswordTooShort,
		ErrMissingCredentials, ErrInvalidOTP, ErrOTPExpired, ErrIncorrectPassword,
		ErrPasswordChangeIncomplete, ErrNotAnImage, ErrPhotoTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer Mailer
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mailer Mailer) *AuthService {
	return &AuthService{
		db:     db,
		cfg:    cfg,
		mailer: mailer,
		now:    time.Now,
	}
}

func (s *AuthService) Signup(req *dto.SignupRequest) (*dto.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	switch {
	case name == "":
		return nil, ErrNameRequired
	case username == "":
		return nil, ErrUsernameRequired
	case !validEmail(email):
		return nil, ErrInvalidEmail
	case len(req.Password) < minPasswordLength:
		return nil, ErrPasswordTooShort
	}

	var existing models.User
	err := s.db.Where("email = ? OR username = ?", email, username).First(&existing).Error
	if err == nil {
		if existing.Email == email {
			return nil, ErrEmailTaken
		}
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     name,
		Username: username,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAccountConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.authResponse(&user)
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	identifier := strings.TrimSpace(req.UsernameOrEmail)
	if identifier == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	var user models.User
	err := s.db.Where("email = ? OR username = ?", strings.ToLower(identifier), identifier).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !checkPassword(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.authResponse(&user)
}

func (s *AuthService) GetAccount(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// RequestPasswordReset issues a one-time code and emails it to the account owner.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrInvalidEmail
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(otpLifetime)

	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"otp_code":       code,
		"otp_expires_at": expiresAt,
	}).Error; err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, user.Email, code); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	slog.Info("password reset code issued", "user_id", user.ID.String(), "action", "forgot_password")
	return nil
}

// ResetPassword redeems a one-time code. An expired code is cleared before failing.
func (s *AuthService) ResetPassword(req *dto.ResetPasswordRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOTP
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.OTPCode == "" || user.OTPExpiresAt == nil ||
		subtle.ConstantTimeCompare([]byte(user.OTPCode), []byte(req.OTP)) != 1 {
		return ErrInvalidOTP
	}

	if s.now().After(*user.OTPExpiresAt) {
		if err := s.clearOTP(&user); err != nil {
			return err
		}
		return ErrOTPExpired
	}

	if len(req.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"password":       hash,
		"otp_code":       "",
		"otp_expires_at": nil,
	}).Error; err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

func (s *AuthService) VerifyPassword(userID uuid.UUID, password string) (bool, error) {
	user, err := s.GetAccount(userID)
	if err != nil {
		return false, err
	}
	return checkPassword(user.Password, password), nil
}

func (s *AuthService) clearOTP(user *models.User) error {
	if err := s.db.Model(user).Updates(map[string]interface{}{
		"otp_code":       "",
		"otp_expires_at": nil,
	}).Error; err != nil {
		return fmt.Errorf("failed to clear otp: %w", err)
	}
	return nil
}

func (s *AuthService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: token,
		User: dto.UserResponse{
			ID:       user.ID,
			Username: user.Username,
		},
	}, nil
}

// GenerateToken signs an HS256 access token whose subject is the user id.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.JWTExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// generateOTP returns a uniformly random six-digit code in [100000, 999999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
