package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chatbot_platform/internal/entities"
	"chatbot_platform/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenTypeAccount = "account"
	TokenTypeClient  = "client"
)

// Claims are the JWT claims issued by the backend. Subject holds the account or client id.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

type AuthOptions struct {
	Secret     string
	Algorithm  string // HS256, HS384 or HS512
	Expire     time.Duration
	BcryptCost int
}

type AuthUsecase struct {
	accounts AccountStore
	clients  ClientStore
	secret   []byte
	method   jwt.SigningMethod
	expire   time.Duration
	cost     int
	now      func() time.Time
}

func NewAuthUsecase(accounts AccountStore, clients ClientStore, opts AuthOptions) *AuthUsecase {
	method := jwt.GetSigningMethod(strings.ToUpper(opts.Algorithm))
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthUsecase{
		accounts: accounts,
		clients:  clients,
		secret:   []byte(opts.Secret),
		method:   method,
		expire:   opts.Expire,
		cost:     cost,
		now:      time.Now,
	}
}

func (uc *AuthUsecase) HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates an account with a hashed password.
func (uc *AuthUsecase) Register(ctx context.Context, email, password string) (*entities.Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	hashed, err := uc.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &entities.Account{Email: email, PasswordHash: hashed}
	if err := uc.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login exchanges account credentials for a bearer token.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (string, *entities.Account, error) {
	account, err := uc.accounts.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !checkPassword(account.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	if account.Disabled {
		return "", nil, ErrInactive
	}

	token, err := uc.IssueToken(account.ID, TokenTypeAccount)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// Reactivate re-enables a soft-deleted account after checking its credentials
// and returns a fresh token. Active accounts are accepted unchanged.
func (uc *AuthUsecase) Reactivate(ctx context.Context, email, password string) (string, *entities.Account, error) {
	account, err := uc.accounts.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !checkPassword(account.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	if account.Disabled {
		if err := uc.accounts.Reactivate(ctx, account.ID); err != nil {
			return "", nil, err
		}
		account.Disabled = false
	}

	token, err := uc.IssueToken(account.ID, TokenTypeAccount)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// ClientLogin exchanges client credentials for a client-scoped token.
func (uc *AuthUsecase) ClientLogin(ctx context.Context, email, password string) (string, *entities.Client, error) {
	client, err := uc.clients.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !checkPassword(client.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	if client.Disabled {
		return "", nil, fmt.Errorf("client account is disabled: %w", ErrInactive)
	}

	token, err := uc.IssueToken(client.ID, TokenTypeClient)
	if err != nil {
		return "", nil, err
	}
	return token, client, nil
}

func (uc *AuthUsecase) IssueToken(subject int64, tokenType string) (string, error) {
	now := uc.now()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subject, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(uc.expire)),
		},
	}
	signed, err := jwt.NewWithClaims(uc.method, claims).SignedString(uc.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates signature, algorithm and expiry.
func (uc *AuthUsecase) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return uc.secret, nil
	}, jwt.WithValidMethods([]string{uc.method.Alg()}), jwt.WithTimeFunc(uc.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resolves an account bearer token to an active account.
func (uc *AuthUsecase) Authenticate(ctx context.Context, tokenString string) (*entities.Account, error) {
	claims, err := uc.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccount {
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	account, err := uc.accounts.GetIncludingDisabled(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if account.Disabled {
		return nil, ErrInactive
	}
	return account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
