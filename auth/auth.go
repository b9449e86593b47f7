package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 24 * time.Hour

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthModule struct {
	db        *pgxpool.Pool
	redis     *redis.Client
	jwtSecret []byte
}

func NewAuthModule(db *pgxpool.Pool, redisClient *redis.Client, jwtSecret string) *AuthModule {
	return &AuthModule{
		db:        db,
		redis:     redisClient,
		jwtSecret: []byte(jwtSecret),
	}
}

func (a *AuthModule) createUser(ctx context.Context, username, password, email string) (string, error) {
	var exists bool
	if err := a.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username).Scan(&exists); err != nil {
		return "", fmt.Errorf("check username: %w", err)
	}
	if exists {
		return "", errors.New("username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	userID := uuid.NewString()
	_, err = a.db.Exec(ctx,
		"INSERT INTO users (id, username, password, email) VALUES ($1, $2, $3, $4)",
		userID, username, string(hashed), email)
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	return userID, nil
}

func (a *AuthModule) generateJWT(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(tokenLifetime).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

func (a *AuthModule) authenticateUser(ctx context.Context, username, password string) (string, error) {
	var userID, passwordHash string
	err := a.db.QueryRow(ctx, "SELECT id, password FROM users WHERE username = $1", username).Scan(&userID, &passwordHash)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return userID, nil
}

// Register creates an account and returns a signed token
func (a *AuthModule) Register(ctx context.Context, username, password, email string) (string, error) {
	userID, err := a.createUser(ctx, username, password, email)
	if err != nil {
		return "", err
	}
	return a.generateJWT(userID)
}

// Login verifies credentials and returns a signed token
func (a *AuthModule) Login(ctx context.Context, username, password string) (string, error) {
	userID, err := a.authenticateUser(ctx, username, password)
	if err != nil {
		return "", err
	}
	return a.generateJWT(userID)
}

// ValidateToken returns the user id a valid token belongs to. Revoked
// tokens (logout) are rejected via a Redis denylist.
func (a *AuthModule) ValidateToken(ctx context.Context, token string) (string, error) {
	revoked, err := a.redis.Exists(ctx, "revoked:"+token).Result()
	if err == nil && revoked > 0 {
		return "", errors.New("token revoked")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("invalid user_id in token")
	}
	return userID, nil
}

// Logout revokes a token for the remainder of its lifetime
func (a *AuthModule) Logout(ctx context.Context, token string) error {
	return a.redis.Set(ctx, "revoked:"+token, "1", tokenLifetime).Err()
}

// ChangePassword changes the user's password after verifying the old one
func (a *AuthModule) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	var passwordHash string
	if err := a.db.QueryRow(ctx, "SELECT password FROM users WHERE id = $1", userID).Scan(&passwordHash); err != nil {
		return errors.New("user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(oldPassword)); err != nil {
		return errors.New("invalid old password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = a.db.Exec(ctx, "UPDATE users SET password = $1 WHERE id = $2", string(hashed), userID)
	return err
}
