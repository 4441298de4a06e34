package app

import (
	"context"
	"os"
	"time"

	loggingSinks "newomega/server/logging/sinks"
)

var timeNow = time.Now

// fileSink closes the underlying file after the JSON sink flushes.
type fileSink struct {
	*loggingSinks.JSON
	file *os.File
}

func (s *fileSink) Close(ctx context.Context) error {
	if err := s.JSON.Close(ctx); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
