package form

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

const defaultContentType = "application/octet-stream"

// FilesFromMultipart wraps uploaded parts. Headers with no filename are skipped.
func FilesFromMultipart(headers []*multipart.FileHeader) []File {
	out := make([]File, 0, len(headers))
	for _, header := range headers {
		if header == nil || strings.TrimSpace(header.Filename) == "" {
			continue
		}
		h := header
		contentType := h.Header.Get("Content-Type")
		if contentType == "" {
			contentType = defaultContentType
		}
		out = append(out, File{
			Name:        filepath.Base(h.Filename),
			ContentType: contentType,
			Size:        h.Size,
			Open: func() (io.ReadCloser, error) {
				return h.Open()
			},
		})
	}
	return out
}

// FileFromPath describes a file on disk. The file is opened lazily.
func FileFromPath(path string) (File, error) {
	path = strings.TrimSpace(path)
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("form: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("form: %s is a directory", path)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = defaultContentType
	}
	return File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}
