// Package errclass classifies low-level socket errors into the small set
// of categories the reactor and service façade need to decide what to do
// next: retry once the descriptor is ready again, treat as a clean close,
// report a timeout, or surface as a fatal error.
//
// Adapted from bassosimone/nop's ErrClassifier/errclass split (a single
// Classify entry point backed by OS-specific errno tables in unix.go and
// windows.go), repointed from DNS/HTTP dial-error labels to the narrower
// question this module's reactor actually asks: would this operation block?
package errclass

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// Class is the outcome of classifying a socket-level I/O error.
type Class int

const (
	// None means err was nil; the operation succeeded.
	None Class = iota
	// Retry means the operation would block and should be retried once the
	// descriptor becomes ready again (EAGAIN/EWOULDBLOCK/EINPROGRESS/EINTR).
	Retry
	// Closed means the peer closed the connection in an orderly way (EOF,
	// ECONNRESET, EPIPE, ENOTCONN, ECONNABORTED all collapse to this).
	Closed
	// Timeout means a configured deadline elapsed.
	Timeout
	// Fatal means none of the above; the caller should surface the error.
	Fatal
)

// Classifier classifies raw errors bubbling up from non-blocking socket
// I/O. The zero value of [Default] is ready to use.
type Classifier interface {
	Classify(err error) Class
}

// ClassifierFunc adapts a function to the [Classifier] interface.
type ClassifierFunc func(error) Class

// Classify implements [Classifier].
func (f ClassifierFunc) Classify(err error) Class { return f(err) }

// Default is the classifier used when a socket is not configured with one
// explicitly; it understands the errno families defined per-OS in unix.go
// and windows.go.
var Default Classifier = ClassifierFunc(classify)

func classify(err error) Class {
	if err == nil {
		return None
	}
	if errors.Is(err, io.EOF) {
		return Closed
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch {
		case errno == errEAGAIN || errno == errEWOULDBLOCK || errno == errEINPROGRESS || errno == errEINTR:
			return Retry
		case errno == errECONNRESET || errno == errEPIPE || errno == errENOTCONN || errno == errECONNABORTED:
			return Closed
		case errno == errETIMEDOUT:
			return Timeout
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}

	return Fatal
}
