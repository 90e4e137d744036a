package service

import (
	"context"
	"time"

	"aidanwoods.dev/go-paseto"
	"golang.org/x/crypto/bcrypt"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// AuthService implements the credential lifecycle: signup, login and
// stateless session token verification. Tokens are PASETO v4 public tokens
// carrying the subject email; validity is solely signature plus expiry, so
// logout is purely a cookie overwrite on the HTTP side.
type AuthService struct {
	repo       domain.AccountRepository
	logger     logger.Logger
	privateKey paseto.V4AsymmetricSecretKey
	publicKey  paseto.V4AsymmetricPublicKey
}

type AuthServiceConfig struct {
	Repository domain.AccountRepository
	PrivateKey []byte
	PublicKey  []byte
	Logger     logger.Logger
}

func NewAuthService(cfg AuthServiceConfig) (*AuthService, error) {
	privateKey, err := paseto.NewV4AsymmetricSecretKeyFromBytes(cfg.PrivateKey)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.WithField("error", err.Error()).Error("Error creating PASETO private key")
		}
		return nil, err
	}

	publicKey, err := paseto.NewV4AsymmetricPublicKeyFromBytes(cfg.PublicKey)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.WithField("error", err.Error()).Error("Error creating PASETO public key")
		}
		return nil, err
	}

	return &AuthService{
		repo:       cfg.Repository,
		logger:     cfg.Logger,
		privateKey: privateKey,
		publicKey:  publicKey,
	}, nil
}

var _ domain.AuthServiceInterface = (*AuthService)(nil)

func (s *AuthService) Signup(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	email = domain.NormalizeEmail(email)

	if err := domain.ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithField("error", err.Error()).Error("Failed to hash password")
		return nil, err
	}

	account := &domain.Account{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.WithField("email", email).Info("Account created")
	return s.issueSession(email), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	email = domain.NormalizeEmail(email)

	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		// never reveal whether the account or the password was wrong
		if _, ok := err.(*domain.ErrNotFound); ok {
			return nil, domain.ErrUnauthorized
		}
		s.logger.WithField("email", email).WithField("error", err.Error()).Error("Failed to load account")
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrUnauthorized
	}

	return s.issueSession(email), nil
}

// VerifySessionToken returns the subject email for a valid session token,
// or "" for anything else. Tampered, malformed and expired tokens all mean
// "not authenticated", never a failure.
func (s *AuthService) VerifySessionToken(token string) string {
	if token == "" {
		return ""
	}

	parser := paseto.NewParser()
	parser.AddRule(paseto.NotExpired())

	verified, err := parser.ParseV4Public(s.publicKey, token, nil)
	if err != nil {
		return ""
	}

	tokenType, err := verified.GetString("type")
	if err != nil || tokenType != domain.SessionTokenType {
		return ""
	}

	email, err := verified.GetString("sub")
	if err != nil {
		return ""
	}
	return email
}

func (s *AuthService) issueSession(email string) *domain.AuthResponse {
	expiresAt := time.Now().Add(domain.SessionDuration)

	token := paseto.NewToken()
	token.SetIssuedAt(time.Now())
	token.SetNotBefore(time.Now())
	token.SetExpiration(expiresAt)
	token.SetString("sub", email)
	token.SetString("type", domain.SessionTokenType)

	signed := token.V4Sign(s.privateKey, nil)
	if signed == "" {
		s.logger.WithField("email", email).Error("Failed to sign session token")
	}

	return &domain.AuthResponse{
		Email:     email,
		Token:     signed,
		ExpiresAt: expiresAt,
	}
}
