// Package api serves the guidematch web interface: the login, register and
// profile pages and the JSON profile endpoint. Handlers translate form
// submissions into calls on the auth, registration and matching services
// and turn their errors into status codes and user-safe messages.
package api
