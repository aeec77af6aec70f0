// Package filex holds small file helpers for the client.
package filex

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

var ErrTooLarge = errors.New("file too large")

// File is a local file read for upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return nil
}

// DescribeImage names data after the base of path and sniffs its type.
func DescribeImage(path string, data []byte) File {
	return File{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}
}

// ReadImage loads path for upload, refusing files over maxBytes.
func ReadImage(path string, maxBytes int64) (File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if fi.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > maxBytes {
		return File{}, fmt.Errorf("%s: %w (%d bytes, limit %d)", path, ErrTooLarge, fi.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return DescribeImage(path, data), nil
}
