// Package upload stores files attached to multipart requests and serves
// them back under /assets/uploads/.
package upload

import (
	"context"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL path under which stored files are served.
const PublicPrefix = "/assets/uploads/"

// Uploader stores files and reads them back by key.
type Uploader interface {
	// Save stores the content and returns its public path.
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	// Open returns the stored content and its content type.
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, key string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectKey derives a unique storage key from the client file name.
func objectKey(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "-"), "-.")
	if base == "" {
		base = "file"
	}
	return uuid.NewString() + "-" + base
}

// KeyFromPath returns the storage key of a public path, or false when p
// was not produced by an Uploader.
func KeyFromPath(p string) (string, bool) {
	key, ok := strings.CutPrefix(p, PublicPrefix)
	if !ok || !validKey(key) {
		return "", false
	}
	return key, true
}

func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.ContainsAny(key, `/\`)
}
