package fdw

import (
	"errors"
	"sync"

	"github.com/jackc/pgconn"
)

// ErrCode is the SQLSTATE reported to the host.
type ErrCode string

const (
	// ErrCodeFDW is a generic query or statement failure.
	ErrCodeFDW ErrCode = "HV000"
	// ErrCodeInvalidDataType is a value or column outside the type mapping.
	ErrCodeInvalidDataType ErrCode = "HV004"
	// ErrCodeOptionMissing is a required option that was not given.
	ErrCodeOptionMissing ErrCode = "HV00D"
	// ErrCodeConnection is a failure to establish the remote session.
	ErrCodeConnection ErrCode = "HV00N"
)

var (
	ErrUnsupportedType = errors.New("unsupported data type")
)

type (
	Error struct {
		Code ErrCode
		Msg  string
		Err  error
	}

	// Reporter receives errors destined for the host. Report must not panic
	// and does not unwind the caller.
	Reporter interface {
		Report(err *Error)
	}

	// LogReporter writes reports to the package logger.
	LogReporter struct{}

	// CollectReporter keeps every report so the caller can return them.
	CollectReporter struct {
		mu     sync.Mutex
		errors []*Error
	}
)

func NewError(code ErrCode, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PgError converts the report into the error shape a Postgres host raises.
func (e *Error) PgError() *pgconn.PgError {
	return &pgconn.PgError{
		Severity: "ERROR",
		Code:     string(e.Code),
		Message:  e.Error(),
	}
}

// Report sends err to r, or to the package logger when r is nil.
func Report(r Reporter, err *Error) {
	if r == nil {
		r = LogReporter{}
	}
	r.Report(err)
}

func (LogReporter) Report(err *Error) {
	logger.Error().CallerSkipFrame(2).Str("code", string(err.Code)).Err(err.Err).Msg(err.Msg)
}

func (c *CollectReporter) Report(err *Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, err)
}

func (c *CollectReporter) Errors() []*Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Error(nil), c.errors...)
}

// HasCode reports whether any collected error carries code.
func (c *CollectReporter) HasCode(code ErrCode) bool {
	for _, err := range c.Errors() {
		if err.Code == code {
			return true
		}
	}
	return false
}
