package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homescout/internal/server/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const jwtExpDays = 365

// Sentinel errors the handlers map onto HTTP status codes.
var (
	ErrInvalidCredentials = errors.New("invalid email, phone or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *repository.UserRow) error
	GetByID(ctx context.Context, id string) (*repository.UserRow, error)
	GetByEmail(ctx context.Context, email string) (*repository.UserRow, error)
	GetByPhone(ctx context.Context, phone string) (*repository.UserRow, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*repository.UserRow, error)
	UpdateProfile(ctx context.Context, user *repository.UserRow) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// AuthService handles accounts, credentials and bearer tokens.
type AuthService struct {
	users     UserStore
	jwtSecret string
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, jwtSecret string) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret}
}

// GenerateJWT generates a JWT token for a user
func (s *AuthService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *AuthService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// Register creates an account and issues a token.
func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) (*repository.UserRow, string, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &repository.UserRow{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies password credentials. Exactly one of email and phone is
// expected to be set, matching the client's identifier classification.
func (s *AuthService) Login(ctx context.Context, email, phone, password string) (*repository.UserRow, string, error) {
	var (
		user *repository.UserRow
		err  error
	)
	if email != "" {
		user, err = s.users.GetByEmail(ctx, email)
	} else {
		user, err = s.users.GetByPhone(ctx, phone)
	}
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// FederatedLogin resolves the identity provider's UID to an account,
// creating one from the posted claims on first sight.
func (s *AuthService) FederatedLogin(ctx context.Context, uid, name, email, phone, assertion string) (*repository.UserRow, string, error) {
	if assertion == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.users.GetByFirebaseUID(ctx, uid)
	if err != nil {
		user = &repository.UserRow{
			ID:          uuid.New().String(),
			Name:        name,
			Email:       email,
			Phone:       phone,
			FirebaseUID: &uid,
			CreatedAt:   time.Now(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to create user: %w", err)
		}
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetUser fetches a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*repository.UserRow, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ProfilePatch carries the optional profile fields of a partial update.
type ProfilePatch struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatarUrl"`
}

// UpdateProfile applies a partial update and returns the stored record.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*repository.UserRow, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if patch.AvatarURL != nil {
		user.AvatarURL = *patch.AvatarURL
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetPushToken records the device push token for a user.
func (s *AuthService) SetPushToken(ctx context.Context, userID, pushToken string) error {
	var token *string
	if pushToken != "" {
		token = &pushToken
	}
	return s.users.UpdatePushToken(ctx, userID, token)
}
