package httpjson

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/magheya/lds-backend/internal/apperr"
)

// IDParam parses the named chi URL parameter as a positive row id.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", apperr.ErrValidation, name, raw)
	}
	return id, nil
}
