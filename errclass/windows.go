//go:build windows

//
// Adapted from bassosimone/nop's errclass/windows.go, itself adapted from
// https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/windows.go
//

package errclass

import "golang.org/x/sys/windows"

const (
	errEAGAIN       = windows.WSAEWOULDBLOCK
	errEWOULDBLOCK  = windows.WSAEWOULDBLOCK
	errEINPROGRESS  = windows.WSAEINPROGRESS
	errEINTR        = windows.WSAEINTR
	errECONNRESET   = windows.WSAECONNRESET
	errEPIPE        = windows.WSAESHUTDOWN
	errETIMEDOUT    = windows.WSAETIMEDOUT
	errECONNABORTED = windows.WSAECONNABORTED
	errENOTCONN     = windows.WSAENOTCONN
)
