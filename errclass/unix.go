//go:build unix

//
// Adapted from bassosimone/nop's errclass/unix.go, itself adapted from
// https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/unix.go
//

package errclass

import "golang.org/x/sys/unix"

const (
	errEAGAIN      = unix.EAGAIN
	errEWOULDBLOCK = unix.EWOULDBLOCK
	errEINPROGRESS = unix.EINPROGRESS
	errEINTR       = unix.EINTR
	errECONNRESET  = unix.ECONNRESET
	errEPIPE       = unix.EPIPE
	errETIMEDOUT   = unix.ETIMEDOUT
	errECONNABORTED = unix.ECONNABORTED
	errENOTCONN    = unix.ENOTCONN
)
