// Package api exposes the task and user services over HTTP. Handlers pass
// the caller's identity from the request context to the services, and
// errors.go turns domain error kinds into status codes with client-safe
// messages. Routing lives in cmd/server.
package api
