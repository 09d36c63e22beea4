package upload

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/magheya/lds-backend/internal/httpjson"
)

const multipartMemory = 32 << 20

// FromRequest returns the file sent in field of a multipart request. A
// non-multipart request or an absent field yields (nil, nil).
func FromRequest(r *http.Request, field string, maxBytes int64) (*multipart.FileHeader, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return nil, nil
	}
	if r.MultipartForm == nil {
		if maxBytes > 0 {
			// Leave room for the other form fields.
			r.Body = http.MaxBytesReader(nil, r.Body, maxBytes+multipartMemory)
		}
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, classify(err)
		}
	}

	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	if fh.Filename == "" || fh.Size == 0 {
		return nil, &Error{Reason: ReasonNoFile}
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, &Error{Reason: ReasonTooLarge}
	}
	return fh, nil
}

// Receive stores the file of field with up and returns its public path,
// or "" when the request carries no file.
func Receive(ctx context.Context, up Uploader, r *http.Request, field string, maxBytes int64) (string, error) {
	fh, err := FromRequest(r, field, maxBytes)
	if err != nil || fh == nil {
		return "", err
	}

	f, err := fh.Open()
	if err != nil {
		return "", &Error{Reason: ReasonPartial, Err: err}
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	p, err := up.Save(ctx, fh.Filename, f, fh.Size, contentType)
	if err != nil {
		return "", &Error{Reason: ReasonCantWrite, Err: err}
	}
	return p, nil
}

func classify(err error) error {
	var maxErr *http.MaxBytesError
	var pathErr *fs.PathError
	switch {
	case errors.As(err, &maxErr), errors.Is(err, multipart.ErrMessageTooLarge):
		return &Error{Reason: ReasonTooLarge, Err: err}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &Error{Reason: ReasonPartial, Err: err}
	case errors.As(err, &pathErr):
		return &Error{Reason: ReasonNoTmpDir, Err: err}
	default:
		return &Error{Reason: ReasonUnknown, Err: err}
	}
}

// BodyWithFile stores the file of field, then reads the request body and
// sets field to the stored public path. The path is "" when no file was
// sent.
func BodyWithFile(ctx context.Context, up Uploader, r *http.Request, field string, maxBytes int64) (map[string]any, string, error) {
	p, err := Receive(ctx, up, r, field, maxBytes)
	if err != nil {
		return nil, "", err
	}
	body, err := httpjson.ReadBody(r)
	if err != nil {
		Discard(ctx, up, p)
		return nil, "", err
	}
	if p != "" {
		body[field] = p
	}
	return body, p, nil
}

// Discard removes a stored file whose row was never written.
func Discard(ctx context.Context, up Uploader, publicPath string) {
	key, ok := KeyFromPath(publicPath)
	if !ok {
		return
	}
	if err := up.Remove(ctx, key); err != nil {
		slog.WarnContext(ctx, "remove orphan upload", "key", key, "error", err)
	}
}
