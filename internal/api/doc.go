// Package api is the HTTP boundary of the service. Handlers decode and
// validate JSON payloads, resolve catalog styles, call the carousel service
// and encode results, base64-encoding image bytes. Errors are mapped to
// status codes and safe messages in errors.go; raw errors only reach the
// logs, redacted.
package api
