package middleware

import (
	"net/http"
	"strings"
)

// CORSConfig holds configuration for the CORS middleware
type CORSConfig struct {
	// PathPrefixes limits CORS headers to matching paths; empty means
	// every path.
	PathPrefixes []string
	AllowMethods []string
	AllowHeaders []string
}

// DefaultCORSConfig opens the API to any origin. The service fronts a
// browser extension, so requests arrive from extension origins that
// cannot be enumerated ahead of time.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		PathPrefixes: []string{"/api/", "/clips/"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
	}
}

// CORS returns a middleware that answers preflight requests and adds
// permissive CORS headers to matching paths.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(config.AllowMethods, ", ")
	headers := strings.Join(config.AllowHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !corsApplies(r.URL.Path, config.PathPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", headers)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func corsApplies(path string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
