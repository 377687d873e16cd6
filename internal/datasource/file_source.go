package datasource

import (
	"context"
	"fmt"
	"os"
)

// FileSource reads draws from a local CSV file
type FileSource struct {
	name    string
	path    string
	enabled bool
}

// NewFileSource creates a file-backed draw source
func NewFileSource(name, path string, enabled bool) *FileSource {
	return &FileSource{name: name, path: path, enabled: enabled}
}

// FetchDraws parses the whole file
func (s *FileSource) FetchDraws(ctx context.Context) (*FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewDataSourceError(s.name, ErrCodeNotFound, fmt.Sprintf("dataset %s not found", s.path), ErrNotFound)
		}
		return nil, NewDataSourceError(s.name, ErrCodeInvalidData, "failed to open dataset", err)
	}
	defer f.Close()

	return NewDrawCSVParser(s.name).Parse(f)
}

// Name returns the source name
func (s *FileSource) Name() string {
	return s.name
}

// IsEnabled returns whether the source is enabled
func (s *FileSource) IsEnabled() bool {
	return s.enabled
}

// Path returns the dataset location
func (s *FileSource) Path() string {
	return s.path
}
