package middleware

import (
	"net/http"
	"strings"
	"time"

	"vendapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ClaimsKey    = "claims"
	CompanyIDKey = "company_id"
)

// JWTClaims carry the tenant and the acting seller. Tokens are minted by
// the identity service; this API only verifies them.
type JWTClaims struct {
	CompanyID  string `json:"company_id"`
	SellerID   string `json:"seller_id"`
	SellerName string `json:"seller_name,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticação obrigatória"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token inválido ou expirado"))
			return
		}
		if _, err := uuid.Parse(claims.CompanyID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token sem empresa"))
			return
		}
		if _, err := uuid.Parse(claims.SellerID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token sem vendedor"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(CompanyIDKey, claims.CompanyID)
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}

// Identity returns the tenant and seller of an authenticated request.
// JWTAuth already rejected tokens whose ids do not parse.
func Identity(c *gin.Context) (companyID, sellerID uuid.UUID) {
	claims := GetClaims(c)
	return uuid.MustParse(claims.CompanyID), uuid.MustParse(claims.SellerID)
}

// IssueToken signs an HS256 token for the given seller. Used by seed
// tooling and tests.
func IssueToken(secret string, companyID, sellerID uuid.UUID, sellerName string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		CompanyID:  companyID.String(),
		SellerID:   sellerID.String(),
		SellerName: sellerName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sellerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
