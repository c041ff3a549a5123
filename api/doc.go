// Package api defines the wire types of the RunLog HTTP API.
//
// # API Overview
//
// RunLog exposes a small RESTful surface:
//   - POST /api/v1/query  — validate, cache-or-dispatch, summarize, persist
//   - GET  /api/v1/recent — a user's most recent cached runs
//   - Health monitoring (/health, /healthz, /ready) and /version
//   - Prometheus metrics on a separate port
//
// # Authentication
//
// When API keys are configured, requests must carry the X-API-Key header:
//
//	X-API-Key: your-api-key
//
// JWT bearer auth is also supported when a signing secret is configured.
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://localhost:8080
//
// # Response Shapes
//
// Successful query responses are tool-tagged: web-search responses carry a
// "results" list, calculator responses carry a "result" string, never both.
// Error responses always have the shape {error, code, timestamp}.
package api
