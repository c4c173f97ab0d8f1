package controllers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/orgwise/payroll_service/internal/entity"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const TokenSize = 16

type AuthController struct {
	deps *Dependens
}

func NewAuthController(deps *Dependens) *AuthController {
	return &AuthController{
		deps: deps,
	}
}

func (c *AuthController) AuthLogin(req *entity.LoginRequest) (string, string, error) {
	ctx := context.Background()

	emp, err := c.deps.Store.GetEmployeeByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, entity.ErrEmployeeNotFound) {
			c.deps.Logger.Warn("Employee with this email not found", slog.String("email", req.Email))
			return "", "", errors.New("employee with this email not found")
		}

		c.deps.Logger.Error("Error querying employee", slog.String("error", err.Error()))
		return "", "", err
	}

	if emp.Password == nil {
		c.deps.Logger.Warn("Employee has no login credentials", slog.String("email", req.Email))
		return "", "", errors.New("employee has no login credentials")
	}

	if err = bcrypt.CompareHashAndPassword([]byte(*emp.Password), []byte(req.Password)); err != nil {
		c.deps.Logger.Warn("Invalid password", slog.String("email", req.Email))
		return "", "", err
	}

	accessToken, err := c.createToken(emp, "access")
	if err != nil {
		return "", "", err
	}

	refreshToken, err := c.createToken(emp, "refresh")
	if err != nil {
		return "", "", err
	}

	if err = c.deps.Redis.Set(ctx, "access_token:"+accessToken, "valid", c.deps.Config.Redis.AccessTokenTTL).Err(); err != nil {
		c.deps.Logger.Error("Error setting access token", slog.String("error", err.Error()))
		return "", "", err
	}

	if err = c.deps.Redis.Set(ctx, "refresh_token:"+refreshToken, "valid", c.deps.Config.Redis.RefreshTokenTTL).Err(); err != nil {
		c.deps.Logger.Error("Error setting refresh token", slog.String("error", err.Error()))
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (c *AuthController) createToken(emp *entity.Employee, tokenType string) (string, error) {
	tokenID, err := generateTokenID(c.deps.Logger)
	if err != nil {
		c.deps.Logger.Error("Error generating token ID", slog.String("error", err.Error()))
		return "", err
	}

	expiresAt := c.deps.Config.Redis.AccessTokenTTL
	if tokenType == "refresh" {
		expiresAt = c.deps.Config.Redis.RefreshTokenTTL
	}

	var email string
	if emp.Email != nil {
		email = *emp.Email
	}

	claims := entity.Claims{
		ID:      emp.ID,
		Email:   email,
		Role:    emp.Role,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresAt)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(c.deps.Config.Server.JWTSecret))
	if err != nil {
		c.deps.Logger.Error("Error signing token", slog.String("error", err.Error()))
		return "", err
	}

	return tokenStr, nil
}

func generateTokenID(logger *slog.Logger) (string, error) {
	b := make([]byte, TokenSize)
	if _, err := rand.Read(b); err != nil {
		logger.Error("Error generating token ID", slog.String("error", err.Error()))
		return "", err
	}

	return hex.EncodeToString(b), nil
}

func (c *AuthController) CheckUserToken(authHeader string) (*entity.Claims, error) {
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenStr == authHeader {
		c.deps.Logger.Error("Invalid bearer token", slog.String("token", tokenStr))
		return nil, errors.New("invalid bearer token")
	}

	ctx := context.Background()
	if err := c.deps.Redis.Get(ctx, "access_token:"+tokenStr).Err(); errors.Is(err, redis.Nil) {
		c.deps.Logger.Warn("Token revoked", slog.String("token", tokenStr))
		return nil, errors.New("token revoked")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &entity.Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(c.deps.Config.Server.JWTSecret), nil
	})
	if err != nil {
		c.deps.Logger.Error("Error parsing token", slog.String("error", err.Error()))
		return nil, errors.New("invalid token")
	}

	if claims, ok := token.Claims.(*entity.Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
