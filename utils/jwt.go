package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/mazza92/creator-dashboard-backend-sub000/models"

	"github.com/golang-jwt/jwt"
)

// GenerateJWT issues an HS256 token for a user. Brand and creator profile ids
// ride along in the claims so handlers can do ownership checks without an
// extra lookup.
func GenerateJWT(user models.User, brandID, creatorID string, hours int) (string, error) {
	var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     time.Now().Add(time.Hour * time.Duration(hours)).Unix(),
	}
	if brandID != "" {
		claims["brand_id"] = brandID
	}
	if creatorID != "" {
		claims["creator_id"] = creatorID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func DecodeJWT(tokenString string) (jwt.MapClaims, error) {
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signature method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid or expired token")
}
