package upload

import (
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/magheya/lds-backend/internal/httpjson"
)

// Handler serves stored files. It expects to be mounted on
// PublicPrefix + "*".
func Handler(up Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		rc, contentType, err := up.Open(r.Context(), key)
		if err != nil {
			httpjson.Error(w, r, err)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", servedType(contentType))
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if rs, ok := rc.(io.ReadSeeker); ok {
			http.ServeContent(w, r, key, time.Time{}, rs)
			return
		}
		_, _ = io.Copy(w, rc)
	}
}

// servedType keeps raster image types and downgrades anything else,
// SVG included, to a download.
func servedType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") || mediaType == "image/svg+xml" {
		return "application/octet-stream"
	}
	return mediaType
}
