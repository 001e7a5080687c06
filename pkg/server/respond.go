package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matzehuels/figstyle/pkg/cache"
	ferrors "github.com/matzehuels/figstyle/pkg/errors"
	"github.com/matzehuels/figstyle/pkg/store"
)

type errorBody struct {
	Code    ferrors.Code `json:"code"`
	Message string       `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := ferrors.GetCode(err)
	if code == "" {
		switch {
		case errors.Is(err, store.ErrNotFound):
			code = ferrors.ErrCodeTemplateNotFound
		case errors.Is(err, cache.ErrNetwork):
			code = ferrors.ErrCodeUnavailable
		default:
			code = ferrors.ErrCodeInternal
		}
	}
	writeJSON(w, statusFor(code), errorBody{Code: code, Message: ferrors.UserMessage(err)})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code ferrors.Code) int {
	switch code {
	case ferrors.ErrCodeInvalidInput, ferrors.ErrCodeInvalidFormat, ferrors.ErrCodeInvalidFigure,
		ferrors.ErrCodeInvalidTemplate, ferrors.ErrCodeInvalidSchema, ferrors.ErrCodeInvalidName,
		ferrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ferrors.ErrCodeNotFound, ferrors.ErrCodeFileNotFound, ferrors.ErrCodeTemplateNotFound:
		return http.StatusNotFound
	case ferrors.ErrCodeUnavailable, ferrors.ErrCodeNetwork:
		return http.StatusServiceUnavailable
	case ferrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ferrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func errNotFound(format string, args ...any) error {
	return ferrors.New(ferrors.ErrCodeNotFound, format, args...)
}
