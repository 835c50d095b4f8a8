// Package auth authenticates tourists and guides and manages their login
// sessions. Passwords are hashed with bcrypt; a session is a persisted record
// whose id travels to the browser inside an HMAC-signed JWT cookie value.
package auth
