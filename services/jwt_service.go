package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/schema"
	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
)

const tokenIssuer = "modeva-commerce"

// JWTClaims is the token payload understood by the auth middleware.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Platform string `json:"platform"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the caller mutations are attributed to.
func (c *JWTClaims) Principal() models.Principal {
	return models.Principal{ID: c.UserID, Platform: c.Platform, Role: c.Role}
}

// JWTService handles JWT token generation and verification
type JWTService struct {
	secretKey []byte
	expiry    time.Duration
	now       func() time.Time
}

func NewJWTService(secretKey string, expiry time.Duration) (*JWTService, error) {
	if secretKey == "" {
		return nil, errors.New("JWT secret key cannot be empty")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &JWTService{secretKey: []byte(secretKey), expiry: expiry, now: time.Now}, nil
}

// Generate signs a token for p.
func (j *JWTService) Generate(p models.Principal) (string, error) {
	if err := checkPrincipal(p); err != nil {
		return "", err
	}

	now := j.now()
	claims := JWTClaims{
		UserID:   p.ID,
		Platform: p.Platform,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses tokenString and returns its claims if the signature, expiry
// and payload are all valid.
func (j *JWTService) Verify(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if err := checkPrincipal(claims.Principal()); err != nil {
		return nil, err
	}
	return claims, nil
}

// Records store addedBy/updatedBy as ObjectIDs, so a principal id must be one.
func checkPrincipal(p models.Principal) error {
	if !schema.IsObjectID(p.ID) {
		return errors.New("token user_id must be a valid ObjectId")
	}
	if !lo.Contains([]string{models.PlatformAdmin, models.PlatformClient}, p.Platform) {
		return fmt.Errorf("unknown platform %q", p.Platform)
	}
	return nil
}

// ExtractTokenFromHeader extracts JWT token from Authorization header
// Format: "Bearer <token>"
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("authorization header is empty")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", errors.New("authorization header must start with 'Bearer '")
	}

	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	if token == "" {
		return "", errors.New("token is empty")
	}
	return token, nil
}
