package apiv1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"whatsapp-reseller/internal/infra/logging"
)

// ===== Customer bearer tokens =====

type AuthManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewAuthManager(secret, issuer string, ttl time.Duration) *AuthManager {
	return &AuthManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

type CustomerClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Mint issues a signed token whose subject is the customer id.
func (a *AuthManager) Mint(customerID string) (string, error) {
	now := time.Now()
	claims := CustomerClaims{
		Role: "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   customerID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *AuthManager) ParseFromRequest(r *http.Request) (*CustomerClaims, error) {
	// Authorization: Bearer <jwt>
	hdr := r.Header.Get("Authorization")
	if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") {
		return nil, errors.New("missing token")
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *AuthManager) parse(tok string) (*CustomerClaims, error) {
	claims := &CustomerClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(a.issuer))
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

type customerKey struct{}

// RequireCustomer rejects requests without a valid customer token and puts
// the customer id on the request context.
func (a *AuthManager) RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.ParseFromRequest(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Success: false, Message: "unauthorized"})
			return
		}
		ctx := context.WithValue(r.Context(), customerKey{}, claims.Subject)
		ctx = logging.WithCustomerID(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func customerFrom(ctx context.Context) string {
	v, _ := ctx.Value(customerKey{}).(string)
	return v
}
