package regnode

import (
	"fmt"
)

type ErrorCode string

const (
	BadRequest   ErrorCode = "bad-request"
	NotAvailable ErrorCode = "not-available"
	NotFound     ErrorCode = "not-found"
	Unauthorized ErrorCode = "unauthorized"
	Timeout      ErrorCode = "timeout"
	RPCError     ErrorCode = "rpc-error"
	BadBlock     ErrorCode = "bad-block"
	BadTxn       ErrorCode = "bad-txn"
	WalletError  ErrorCode = "wallet-error"
	UnknownError ErrorCode = "unknown-error"
)

type ErrorInfo struct {
	Code    ErrorCode // machine-readble ErrorCode enumeration
	Message string    // human-readable debug message (in production, logged on the server only)
}

func (e *ErrorInfo) Error() string {
	return string(e.Message)
}

func NewErr(code ErrorCode, format string, args ...any) error {
	return &ErrorInfo{Code: code, Message: fmt.Sprintf(format, args...)}
}

func IsNotFoundError(err error) bool {
	return IsError(err, NotFound)
}

// IsTimeoutError reports whether err is a receive timeout, which the
// functional tests report distinctly from assertion mismatches.
func IsTimeoutError(err error) bool {
	return IsError(err, Timeout)
}

func IsError(err error, ofType ErrorCode) bool {
	if e, ok := err.(*ErrorInfo); ok {
		return e.Code == ofType
	}
	return false
}
