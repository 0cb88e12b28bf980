package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/dinartr/storefront/internal/blob"
	"github.com/dinartr/storefront/internal/catalog"
	"github.com/dinartr/storefront/internal/datastore"
	"github.com/dinartr/storefront/internal/order"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("handler: failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, datastore.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, datastore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrSlugExists),
		errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, datastore.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrUnknownCategory),
		errors.Is(err, datastore.ErrInvalidReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, blob.ErrInvalidFolder),
		errors.Is(err, blob.ErrEmptyFile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeAndValidate reads a JSON body into dst and runs the struct
// validator. It writes the error response itself and reports false on
// failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("handler: failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	if n, ok := dst.(interface{ normalize() }); ok {
		n.normalize()
	}
	return validateStruct(w, validate, dst)
}

func validateStruct(w http.ResponseWriter, validate *validator.Validate, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: formatValidationErrors(validationErrors),
		})
		return false
	}

	log.Error().Err(err).Type("validation_error_type", err).Msg("handler: unexpected error type during validation")
	respondWithError(w, http.StatusInternalServerError, "Internal validation error")
	return false
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			details[fe.Field()] = "is required"
		case "email":
			details[fe.Field()] = "must be a valid email address"
		case "oneof":
			details[fe.Field()] = "must be one of: " + fe.Param()
		case "uuid4", "uuid":
			details[fe.Field()] = "must be a valid UUID"
		default:
			details[fe.Field()] = "failed on the '" + fe.Tag() + "' rule"
		}
	}
	return details
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)
	return validate
}

// jsonFieldName reports validation errors under the JSON field names.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
