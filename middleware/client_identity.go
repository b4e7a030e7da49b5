package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// HashClientAddress derives the client identifier from a remote address.
// The port is dropped so every connection from one host maps to the same
// client, and the address is hashed so raw IPs never reach state or logs.
func HashClientAddress(remoteAddr string) string {
	host := strings.TrimSpace(remoteAddr)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	sum := sha256.Sum256([]byte(host))
	return hex.EncodeToString(sum[:16])
}

// ClientIdentity stores the hashed client identifier and the chi request
// ID in the request context.
func ClientIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClientID(r.Context(), HashClientAddress(r.RemoteAddr))
		if reqID := chimw.GetReqID(ctx); reqID != "" {
			ctx = WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
