package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"skycarry/internal/models"
	"skycarry/internal/storage"
)

// ServiceInterface defines user business logic.
type ServiceInterface interface {
	GetClientOrigin() string

	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	HandleGoogleLogin() (authURL string, state string, err error)
	HandleGoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error)

	GetProfile(ctx context.Context, userID int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, data models.UserUpdateData) (*models.User, error)

	GetVerification(ctx context.Context, userID int) (*models.VerificationStatus, error)
	SubmitVerification(ctx context.Context, userID int, req models.VerificationRequest) (*models.VerificationStatus, error)
}

type Service struct {
	store             storage.Storage
	jwtSecret         string
	clientOrigin      string
	googleOAuthConfig *oauth2.Config
}

func NewService(store storage.Storage, jwtSecret, clientOrigin string, googleOAuthConfig *oauth2.Config) ServiceInterface {
	return &Service{
		store:             store,
		jwtSecret:         jwtSecret,
		clientOrigin:      clientOrigin,
		googleOAuthConfig: googleOAuthConfig,
	}
}

// googleUserInfo unmarshals the Google user info response.
type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GetClientOrigin lets the handler know the frontend URL for redirects.
func (s *Service) GetClientOrigin() string {
	return s.clientOrigin
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	_, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.Register.GetUserByEmail: %w", err)
	}
	if err == nil {
		// User was found, email is taken.
		return nil, models.ErrConflict
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.Register.HashPassword: %w", err)
	}

	user, err := s.store.CreateUser(ctx, &models.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Phone:        req.Phone,
		AuthProvider: "email",
	})
	if err != nil {
		return nil, fmt.Errorf("service.Register.CreateUser: %w", err)
	}

	return s.generateAuthResponse(user)
}

// generateAuthResponse issues a signed JWT for the user.
func (s *Service) generateAuthResponse(user *models.User) (*models.AuthResponse, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24 * 30)),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenSignedString, err := accessToken.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	user.PasswordHash = ""

	return &models.AuthResponse{
		AccessToken: tokenSignedString,
		User:        user,
	}, nil
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service.Login.GetUserByEmail: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return s.generateAuthResponse(user)
}

// HandleGoogleLogin builds the consent-screen URL and a one-time state value.
func (s *Service) HandleGoogleLogin() (string, string, error) {
	if s.googleOAuthConfig == nil {
		return "", "", errors.New("google oauth is not configured")
	}
	state := uuid.NewString()
	return s.googleOAuthConfig.AuthCodeURL(state), state, nil
}

func (s *Service) HandleGoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error) {
	if s.googleOAuthConfig == nil {
		return nil, errors.New("google oauth is not configured")
	}

	token, err := s.googleOAuthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.Exchange: %w", err)
	}

	resp, err := s.googleOAuthConfig.Client(ctx, token).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.UserInfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service.HandleGoogleCallback: userinfo returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.ReadBody: %w", err)
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.Unmarshal: %w", err)
	}

	// Find or create the account for this Google identity.
	user, err := s.store.GetUserByEmail(ctx, info.Email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("service.HandleGoogleCallback.GetUserByEmail: %w", err)
		}
		user, err = s.store.CreateUser(ctx, &models.User{
			Email:        info.Email,
			FullName:     info.Name,
			PhotoURL:     info.Picture,
			AuthProvider: "google",
		})
		if err != nil {
			return nil, fmt.Errorf("service.HandleGoogleCallback.CreateUser: %w", err)
		}
	}

	return s.generateAuthResponse(user)
}

func (s *Service) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.GetProfile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int, data models.UserUpdateData) (*models.User, error) {
	user, err := s.store.UpdateUserProfile(ctx, userID, data)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.UpdateProfile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) GetVerification(ctx context.Context, userID int) (*models.VerificationStatus, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.GetVerification: %w", err)
	}
	return verificationStatus(user), nil
}

// SubmitVerification records the checks covered by the submitted documents.
// There is no production verification provider; each submitted document
// auto-approves its corresponding flag.
func (s *Service) SubmitVerification(ctx context.Context, userID int, req models.VerificationRequest) (*models.VerificationStatus, error) {
	update := models.VerificationUpdate{}
	approved := true
	if req.IDDocument != "" {
		update.IDVerified = &approved
	}
	if req.PhoneCode != "" {
		update.PhoneVerified = &approved
	}
	if req.AddressProof != "" {
		update.AddressVerified = &approved
	}

	user, err := s.store.UpdateUserVerification(ctx, userID, update)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.SubmitVerification: %w", err)
	}
	return verificationStatus(user), nil
}

func verificationStatus(user *models.User) *models.VerificationStatus {
	return &models.VerificationStatus{
		IDVerified:      user.IDVerified,
		PhoneVerified:   user.PhoneVerified,
		AddressVerified: user.AddressVerified,
		IsVerified:      user.IsVerified(),
	}
}
