package config

import "strings"

// GetHost returns the interface the HTTP server binds to
func GetHost() string {
	return GetEnv("HOST", "0.0.0.0")
}

// GetAPIPrefix returns the path prefix all API routes are mounted under.
// Empty by default; set API_PREFIX (e.g. "/api") when running behind a
// shared reverse proxy.
func GetAPIPrefix() string {
	prefix := GetEnv("API_PREFIX", "")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return strings.TrimSuffix(prefix, "/")
}

// GetFrontendURL returns the origin allowed for CORS requests
func GetFrontendURL() string {
	return GetEnv("FRONTEND_URL", "http://localhost:3000")
}

// GetOpenAPIServers returns the server URLs advertised in the generated
// OpenAPI document. Comma-separated in OPENAPI_SERVERS; falls back to
// the local bind address.
func GetOpenAPIServers() []string {
	raw := GetEnv("OPENAPI_SERVERS", "")
	if raw == "" {
		return nil
	}

	var servers []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}
