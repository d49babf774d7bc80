package testutil

import (
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/paintlink/paintlink-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer, role string, scopes []string) *validator.ValidatedClaims {
	scopeString := ""
	for i, scope := range scopes {
		if i > 0 {
			scopeString += " "
		}
		scopeString += scope
	}

	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: scopeString,
			Role:  role,
		},
	}
}

// MockAuthMiddleware returns a handler that installs a fully authenticated
// context for the given identity, standing in for the JWT middleware.
func MockAuthMiddleware(auth0ID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", "mock-token")
		c.Set("validated_claims", MockValidatedClaims(auth0ID, "https://test.auth0.example.com/", role, nil))
		c.Next()
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
// individual handlers outside a router.
func SetMockAuthContext(c *gin.Context, auth0ID, role string, scopes []string) {
	claims := MockValidatedClaims(auth0ID, "https://test.auth0.example.com/", role, scopes)
	c.Set("user_id", auth0ID)
	c.Set("access_token", "mock-token")
	c.Set("validated_claims", claims)
}
