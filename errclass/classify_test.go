package errclass

import (
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyNil(t *testing.T) {
	require.Equal(t, None, Default.Classify(nil))
}

func TestClassifyEOF(t *testing.T) {
	require.Equal(t, Closed, Default.Classify(io.EOF))
}

func TestClassifyRetry(t *testing.T) {
	require.Equal(t, Retry, Default.Classify(errEAGAIN))
}

func TestClassifyTimeout(t *testing.T) {
	require.Equal(t, Timeout, Default.Classify(errETIMEDOUT))

	var netErr net.Error = &net.OpError{Err: timeoutErr{}}
	require.Equal(t, Timeout, Default.Classify(netErr))
}

func TestClassifyFatal(t *testing.T) {
	require.Equal(t, Fatal, Default.Classify(errors.New("boom")))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }
