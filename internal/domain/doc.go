// Package domain contains the core business entities of the application:
// tourist and guide accounts, their language preferences, and the session
// identity issued at login. It is independent of any storage or delivery
// mechanism.
package domain
