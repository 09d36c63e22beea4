package httpjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/magheya/lds-backend/internal/apperr"
)

// MaxBodyBytes caps non-multipart request bodies.
const MaxBodyBytes = 1 << 20

// multipartMemory is kept in memory before spilling file parts to disk.
const multipartMemory = 32 << 20

// jsonEncodedFields may arrive as JSON text inside form fields.
var jsonEncodedFields = []string{"sizes", "items"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ReadBody reads the request body into a generic map. JSON objects are
// tried first; anything else is parsed as a form. Multipart bodies are
// read from the parsed multipart form.
func ReadBody(r *http.Request) (map[string]any, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if r.MultipartForm == nil {
			if err := r.ParseMultipartForm(multipartMemory); err != nil {
				return nil, fmt.Errorf("%w: invalid multipart body: %w", apperr.ErrSerialization, err)
			}
		}
		return fromValues(r.MultipartForm.Value), nil
	}

	if r.Body == nil {
		return map[string]any{}, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", apperr.ErrSerialization, err)
	}
	if len(raw) > MaxBodyBytes {
		return nil, fmt.Errorf("%w: body too large", apperr.ErrSerialization)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	if json.Valid(raw) {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("%w: JSON body must be an object", apperr.ErrSerialization)
		}
		return obj, nil
	}

	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: body is neither JSON nor form data", apperr.ErrSerialization)
	}
	return fromValues(values), nil
}

// fromValues flattens form values. Keys written as "name[]" keep every
// value, other keys keep the first. JSON text in the fields listed in
// jsonEncodedFields is decoded.
func fromValues(values map[string][]string) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if name, ok := strings.CutSuffix(key, "[]"); ok {
			list := make([]any, len(vals))
			for i, v := range vals {
				list[i] = v
			}
			out[name] = list
			continue
		}
		out[key] = vals[0]
	}
	for _, key := range jsonEncodedFields {
		s, ok := out[key].(string)
		if !ok {
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			out[key] = decoded
		}
	}
	return out
}

// Decode copies the generic body into out, converting form strings into
// the numeric and boolean field types.
func Decode(body map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       wholeNumberHook,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(body); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrSerialization, err)
	}
	return nil
}

// wholeNumberHook refuses JSON numbers with a fraction for integer fields,
// which mapstructure would otherwise truncate.
func wholeNumberHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	f, ok := data.(float64)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("%v is not a whole number", f)
		}
	}
	return data, nil
}

// Validate runs the struct validation tags of v.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", apperr.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s is too short (min %s)", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// Bind reads, decodes and validates the request body into out.
func Bind(r *http.Request, out any) error {
	body, err := ReadBody(r)
	if err != nil {
		return err
	}
	return BindMap(body, out)
}

// BindMap decodes and validates an already read body.
func BindMap(body map[string]any, out any) error {
	if err := Decode(body, out); err != nil {
		return err
	}
	return Validate(out)
}
