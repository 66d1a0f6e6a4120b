package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/carousel-api/internal/api/shared"
	"github.com/phrazzld/carousel-api/internal/domain"
	"github.com/phrazzld/carousel-api/internal/generation"
	"github.com/phrazzld/carousel-api/internal/service/auth"
	"github.com/phrazzld/carousel-api/internal/store"
	"github.com/phrazzld/carousel-api/internal/style"
)

// StatusClientClosedRequest is logged when the client went away mid-request.
const StatusClientClosedRequest = 499

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Checked first: upstream adapters wrap cancellation in ErrGenerationFailed.
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest

	// Upstream model service
	case errors.Is(err, generation.ErrUpstreamUnavailable),
		errors.Is(err, generation.ErrInvalidConfig):
		return http.StatusServiceUnavailable
	case errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusInternalServerError

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, style.ErrStyleNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidElementID),
		errors.Is(err, domain.ErrInvalidElementKind),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "Request canceled"

	case errors.Is(err, generation.ErrUpstreamUnavailable),
		errors.Is(err, generation.ErrInvalidConfig):
		return "AI service unavailable"
	case errors.Is(err, generation.ErrContentBlocked):
		return "Content generation error: blocked by safety filters"
	case errors.Is(err, generation.ErrGenerationFailed):
		return "Content generation error"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, style.ErrStyleNotFound):
		return "Style not found"
	case errors.Is(err, store.ErrRunNotFound):
		return "Run not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, domain.ErrInvalidElementID):
		return "Invalid element id: must be a non-empty token without colons, line breaks or surrounding whitespace"
	case errors.Is(err, domain.ErrInvalidElementKind):
		return "Invalid element type: must be text or image"
	case errors.Is(err, domain.ErrValidation):
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return verr.Error()
		}
		return "Validation error"
	case errors.Is(err, shared.ErrBodyTooLarge):
		return "Request body too large"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted error. An empty fallback keeps the mapped message; otherwise the
// fallback replaces the generic message for unmapped errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if fallback != "" && status == http.StatusInternalServerError && message == "An unexpected error occurred" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns validator errors into a client-facing message
// naming the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	first := verrs[0]
	field := validationFieldPath(first.Namespace())
	return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(first.Tag(), first.Param()))
}

// validationFieldPath strips the root struct name from a validator namespace,
// e.g. "CarouselRequest.slides[0].elements[1].id" -> "slides[0].elements[1].id".
func validationFieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short or too few (min " + param + ")"
	case "max":
		return "too long or too many (max " + param + ")"
	case "oneof":
		return "must be one of: " + param
	case "elementid":
		return "must be a non-empty token without colons, line breaks or surrounding whitespace"
	default:
		return "validation failed"
	}
}
