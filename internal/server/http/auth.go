package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/lestrrat-go/jwx/jwt"
)

// MinAuthSecretLength is the shortest HS256 signing secret accepted.
const MinAuthSecretLength = 32

// NewTokenAuth returns the HS256 signer and verifier for API bearer tokens.
func NewTokenAuth(secret string) (*jwtauth.JWTAuth, error) {
	if len(secret) < MinAuthSecretLength {
		return nil, errors.New("auth secret must be at least 32 bytes")
	}
	return jwtauth.New("HS256", []byte(secret), nil), nil
}

// AuthMiddleware admits requests carrying a valid bearer token signed by ta,
// in the Authorization header or the "jwt" cookie.
func AuthMiddleware(ta *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	verify := jwtauth.Verifier(ta)
	return func(next http.Handler) http.Handler {
		return verify(requireToken(next))
	}
}

func requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil || jwt.Validate(token) != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="figshare-connector"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IssueToken signs a bearer token for subject. A positive ttl sets the expiry.
func IssueToken(ta *jwtauth.JWTAuth, subject string, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{"sub": subject}
	jwtauth.SetIssuedNow(claims)
	if ttl > 0 {
		jwtauth.SetExpiryIn(claims, ttl)
	}
	_, signed, err := ta.Encode(claims)
	if err != nil {
		return "", err
	}
	return signed, nil
}
