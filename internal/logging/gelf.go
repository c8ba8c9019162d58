package logging

import (
	"fmt"
	"io"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGraylogWriter connects a GELF UDP writer for shipping logs to Graylog.
// The returned writer is handed to Setup as the Graylog option, where it
// receives JSON-encoded records.
func NewGraylogWriter(addr string) (io.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect gelf writer: %w", err)
	}
	return w, nil
}
