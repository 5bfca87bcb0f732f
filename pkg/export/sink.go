package export

import (
	"io"
	"os"
	"path/filepath"

	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// Sink receives the finished script text.
type Sink interface {
	// Write stores data at the destination in one step.
	Write(data []byte) error

	// String names the destination for logs and manifests.
	String() string
}

// FileSink writes to a file through a temporary file in the same directory
// that is renamed into place, so readers never observe a partial script.
type FileSink struct {
	Path string

	// Perm is the mode of the final file. Default: 0644.
	Perm os.FileMode
}

// NewFileSink returns a FileSink for path with the default mode.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path, Perm: 0o644}
}

// Write implements Sink. The temporary file is closed and removed on every
// failure path.
func (s *FileSink) Write(data []byte) (err error) {
	if s.Path == "" {
		return werrors.ExportErrorf(werrors.ErrExportInvalidPath, "no output file set")
	}
	perm := s.Perm
	if perm == 0 {
		perm = 0o644
	}

	f, err := os.CreateTemp(filepath.Dir(s.Path), "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return werrors.WrapIO(err, werrors.ErrIOWriteFailed, "failed to create temporary file").
			WithContext("path", s.Path)
	}
	tmp := f.Name()
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			f.Close()
		}
		os.Remove(tmp)
	}()

	if _, err = f.Write(data); err != nil {
		return werrors.WrapIO(err, werrors.ErrIOWriteFailed, "failed to write script").
			WithContext("path", s.Path)
	}
	if err = f.Chmod(perm); err != nil {
		return werrors.WrapIO(err, werrors.ErrIOWriteFailed, "failed to set file mode").
			WithContext("path", s.Path)
	}
	closed = true
	if err = f.Close(); err != nil {
		return werrors.WrapIO(err, werrors.ErrIOWriteFailed, "failed to close script").
			WithContext("path", s.Path)
	}
	if err = os.Rename(tmp, s.Path); err != nil {
		return werrors.WrapIO(err, werrors.ErrIOWriteFailed, "failed to move script into place").
			WithContext("path", s.Path)
	}
	return nil
}

func (s *FileSink) String() string {
	return s.Path
}

// WriterSink writes to an io.Writer such as stdout or an HTTP response.
type WriterSink struct {
	W    io.Writer
	Name string
}

// Write implements Sink.
func (s *WriterSink) Write(data []byte) error {
	if _, err := s.W.Write(data); err != nil {
		return werrors.WrapIO(err, werrors.ErrIOWriteFailed, "failed to write script").
			WithContext("destination", s.String())
	}
	return nil
}

func (s *WriterSink) String() string {
	if s.Name == "" {
		return "writer"
	}
	return s.Name
}
