// Package middleware provides HTTP middleware for the clip service.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics
//   - Response compression (gzip)
//   - Permissive CORS for the extension-facing API
package middleware
