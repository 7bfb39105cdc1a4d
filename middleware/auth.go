package middleware

import (
	"strings"
	"time"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/config"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// lang mirrors the handlers' language pick: ?lang= first, then
// Accept-Language, Arabic by default.
func lang(c *gin.Context) string {
	if l := c.Query("lang"); l == "ar" || l == "en" {
		return l
	}
	if strings.HasPrefix(c.GetHeader("Accept-Language"), "en") {
		return "en"
	}
	return "ar"
}

// abortWith renders a classified error in the same localized JSON shape the
// handlers use, then stops the chain.
func abortWith(c *gin.Context, err *apperrors.Error) {
	c.JSON(err.HTTPStatus, gin.H{
		"error":      err.Localized(lang(c)),
		"code":       err.Code,
		"message":    err.MessageEN,
		"message_ar": err.MessageAR,
	})
	c.Abort()
}

type Claims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a given user
func GenerateToken(user *models.User) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret)
}

// AuthRequired validates the JWT and injects claims into context
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortWith(c, apperrors.Authentication(
				"Authorization header required (Bearer <token>)",
				"مطلوب ترويسة التفويض (Bearer <token>)",
			))
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return config.JWTSecret, nil
		})
		if err != nil || !token.Valid {
			abortWith(c, apperrors.Authentication(
				"Invalid or expired token",
				"رمز الدخول غير صالح أو منتهي الصلاحية",
			))
			return
		}
		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", string(claims.Role))
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			abortWith(c, apperrors.Authorization(
				"No role found in the access token",
				"لا يوجد دور في رمز الدخول",
			))
			return
		}
		callerRole := models.UserRole(roleVal.(string))
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		abortWith(c, apperrors.Authorization(
			"Access denied. Required role(s): "+rolesString(roles),
			"الوصول مرفوض. الأدوار المطلوبة: "+rolesString(roles),
		))
	}
}

func rolesString(roles []models.UserRole) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	val, _ := c.Get("userID")
	return val.(uint)
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	val, _ := c.Get("role")
	return models.UserRole(val.(string))
}
