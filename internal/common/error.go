package common

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIndex = fmt.Errorf("wrong index number")
	ErrNotFound     = fmt.Errorf("domain not found")
	ErrEmptyDomain  = fmt.Errorf("empty domain")
	ErrBadDomain    = fmt.Errorf("domain contains the list delimiter")
	ErrMalformedURL = fmt.Errorf("malformed url")
	ErrQueueFull    = fmt.Errorf("message queue is full")
	ErrUsage        = fmt.Errorf("bad command usage")
)

const (
	KindHTTP       = "http"
	KindTransport  = "transport"
	KindFilesystem = "filesystem"
	KindMalformed  = "malformed"
	KindUnknown    = "unknown"
)

// HTTPError is returned when the remote side answered with a non-2xx status.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("cannot download %s: status %d", e.URL, e.Status)
}

// TransportError covers name resolution, connection and read failures.
type TransportError struct {
	URL    string
	Reason string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cannot open %s: %s", e.URL, e.Reason)
}

type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("cannot %s %s: %s", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// ErrorKind maps a download error to a short label used in logs and metrics.
func ErrorKind(err error) string {
	var (
		httpErr      *HTTPError
		transportErr *TransportError
		fsErr        *FilesystemError
	)

	switch {
	case errors.As(err, &httpErr):
		return KindHTTP
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &fsErr):
		return KindFilesystem
	case errors.Is(err, ErrMalformedURL):
		return KindMalformed
	}

	return KindUnknown
}
