// utils/auth.go
package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"invoicing-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	userContextKey   = "user"
	claimsContextKey = "claims"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// PasswordCost is the bcrypt cost used by HashPassword
var PasswordCost = bcrypt.DefaultCost

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Claims carries the user id in the subject and a unique token id
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the numeric user id stored in the subject
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return uint(id), nil
}

// TokenManager issues and verifies bearer tokens
type TokenManager struct {
	secret    []byte
	expiry    time.Duration
	blacklist TokenBlacklist
	now       func() time.Time
}

func NewTokenManager(secret string, expiry time.Duration, blacklist TokenBlacklist) *TokenManager {
	return &TokenManager{
		secret:    []byte(secret),
		expiry:    expiry,
		blacklist: blacklist,
		now:       time.Now,
	}
}

// Generate JWT token
func (m *TokenManager) GenerateToken(userID uint) (string, error) {
	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies signature, expiry and revocation
func (m *TokenManager) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	revoked, err := m.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke blacklists the token for the rest of its lifetime
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return m.blacklist.AddToBlacklist(ctx, claims.ID, ttl)
}

// Auth middleware
func AuthMiddleware(tokens *TokenManager, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			RespondWithError(c, http.StatusUnauthorized, "Unauthenticated.")
			c.Abort()
			return
		}

		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:6]) == "BEARER" {
			tokenString = tokenString[7:]
		}

		claims, err := tokens.ParseToken(c.Request.Context(), tokenString)
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Unauthenticated.")
			c.Abort()
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Unauthenticated.")
			c.Abort()
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).Preload("Company").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				RespondWithError(c, http.StatusUnauthorized, "Unauthenticated.")
			} else {
				RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			c.Abort()
			return
		}

		c.Set(userContextKey, &user)
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// CurrentUser returns the user loaded by AuthMiddleware
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentClaims returns the verified token claims of the request
func CurrentClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(claimsContextKey); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return nil
}
