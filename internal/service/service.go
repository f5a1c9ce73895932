// Package service contains the business rules of the CalorieSnap server.
//
// THE THREE LAYERS:
//
//	Handler (HTTP)     → parses requests, writes JSON and status codes
//	Service (rules)    → validates, enforces ownership, orchestrates
//	Repository (data)  → reads/writes SQLite or PostgreSQL
//
// Services take the repository interfaces, never *sqlite.DB or *postgres.DB,
// so tests hand them in-memory fakes and main.go picks the backend.
//
// OWNERSHIP:
// Every method receives the caller's user ID (from the JWT) explicitly. A
// request for someone else's profile is Forbidden; log queries are always
// scoped by the caller, so another user's log ID simply matches nothing.
//
// Services return apperror values; handlers translate them to HTTP.
package service
