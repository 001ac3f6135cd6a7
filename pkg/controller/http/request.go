package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/usecase"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type askRequest struct {
	Question string `json:"question" validate:"required"`
}

type teachRequest struct {
	Question string  `json:"question" validate:"required"`
	Answer   string  `json:"answer" validate:"required"`
	Topic    *string `json:"topic"`
}

type importRequest struct {
	DeviceID string          `json:"device_id"`
	Packets  json.RawMessage `json:"packets"`
}

func readBody(r *http.Request, w http.ResponseWriter) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, goerr.Wrap(usecase.ErrValidation, "request body too large", goerr.V("limit", maxErr.Limit))
		}
		return nil, goerr.Wrap(err, "failed to read request body")
	}
	return data, nil
}

// decodeLenientJSON is decodeJSON for peers: an empty body or one that is
// not JSON at all leaves v at its zero value. Valid JSON of the wrong shape
// is still rejected.
func decodeLenientJSON(r *http.Request, w http.ResponseWriter, v any) error {
	data, err := readBody(r, w)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 || !json.Valid(data) {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return goerr.Wrap(usecase.ErrValidation, "request body must be a JSON object", goerr.V("error", err.Error()))
	}
	return nil
}

// decodeJSON reads a JSON object from the request body into v and validates it
func decodeJSON(r *http.Request, w http.ResponseWriter, v any) error {
	data, err := readBody(r, w)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return goerr.Wrap(usecase.ErrValidation, "request body must be a JSON object", goerr.V("error", err.Error()))
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return goerr.Wrap(usecase.ErrValidation, fmt.Sprintf("missing '%s'", strings.Join(fields, "', '")))
		}
		return goerr.Wrap(err, "failed to validate request")
	}

	return nil
}
