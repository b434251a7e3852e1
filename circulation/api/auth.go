package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"

	claimsKey = "claims"
)

var (
	// ErrInvalidToken is returned for tokens that fail signature, expiry or role checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials is returned by CheckPassword on a mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Claims is the token payload. Subject is the borrower id for students and the desk user for admins.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the admin role.
func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer whose tokens live for ttl.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for subject with role.
func (i *TokenIssuer) Issue(subject, role string) (string, error) {
	if role != RoleAdmin && role != RoleStudent {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidToken, role)
	}

	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	now := i.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse verifies a token and returns its claims.
func (i *TokenIssuer) Parse(tokenString string) (Claims, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}

	if claims.Role != RoleAdmin && claims.Role != RoleStudent {
		return Claims{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return claims, nil
}

// HashPassword returns the bcrypt hash stored in auth.adminPasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a password with a bcrypt hash.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return nil
}

// authenticate puts the verified claims into the gin context. With auth disabled every
// caller is an anonymous admin.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.issuer == nil {
			c.Set(claimsKey, Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "anonymous"}})
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			abortWithError(c, http.StatusUnauthorized, "missing bearer token", "")
			return
		}

		claims, err := s.issuer.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "invalid or expired token", "")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireAdmin rejects students.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !claimsFrom(c).IsAdmin() {
			abortWithError(c, http.StatusForbidden, "admin role required", "")
			return
		}
		c.Next()
	}
}

// requireSelfOrAdmin lets students read only their own borrower records.
func requireSelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if !claims.IsAdmin() && claims.Subject != c.Param(param) {
			abortWithError(c, http.StatusForbidden, "students may only read their own records", "")
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) Claims {
	value, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}
	}

	claims, _ := value.(Claims)

	return claims
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Role      string    `json:"role"`
}

// handleLogin trades the admin password for an admin token.
func (s *Server) handleLogin(c *gin.Context) {
	if s.issuer == nil {
		abortWithError(c, http.StatusNotFound, "authentication is disabled", "")
		return
	}

	var request loginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	if err := CheckPassword(s.config.Auth.AdminPasswordHash, request.Password); err != nil {
		s.logger.WarnContext(c.Request.Context(), "failed login", "username", request.Username, "ip", c.ClientIP())
		abortWithError(c, http.StatusUnauthorized, err.Error(), "")
		return
	}

	token, err := s.issuer.Issue(request.Username, RoleAdmin)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "could not issue token", "")
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: s.issuer.now().Add(s.issuer.ttl),
		Role:      RoleAdmin,
	})
}
