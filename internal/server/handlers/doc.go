// Package handlers contains HTTP handlers for the docserve servers.
//
// This package provides handlers for:
//   - Manual page serving: route parsing, redirects, conditional requests
//   - Status and health endpoints (monitoring)
//   - Cache inspection and invalidation
//   - Shared response helper functions
//
// All handlers follow a consistent pattern for error handling and response formatting,
// using the foundation/errors package for structured error handling and the
// server/responses package for standardized HTTP responses.
package handlers
