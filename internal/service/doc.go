// Package service groups the application use cases. Each subpackage owns one
// of them and depends only on domain entities and the store interfaces:
//
//   - auth: login, session tokens, logout and the expired-session janitor
//   - registration: account creation with optional certificate upload
//   - matching: finding guides for a tourist
//
// Services receive their dependencies through constructor injection and
// return sentinel errors that the API layer maps to responses.
package service
