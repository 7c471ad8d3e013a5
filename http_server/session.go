package http_server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/danthegoodman1/chfdw/metastore"
	"github.com/labstack/echo/v4"
)

type (
	// session is one wrapper instance scoped to a request
	session struct {
		Table    *metastore.ForeignTable
		Opts     fdw.Options
		Wrapper  Wrapper
		Reporter *fdw.CollectReporter
	}

	ErrorBody struct {
		Code    string
		Message string
	}
)

// openSession loads the table named in the path and opens a wrapper for it.
// The caller must close the session.
func (s *HTTPServer) openSession(ctx context.Context, name string) (*session, error) {
	ft, err := s.MetaStore.GetForeignTable(ctx, name)
	if errors.Is(err, metastore.ErrTableNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return nil, fmt.Errorf("error in GetForeignTable: %w", err)
	}

	sess := &session{
		Table:    ft,
		Opts:     ft.Options(),
		Reporter: &fdw.CollectReporter{},
	}
	sess.Wrapper = s.NewWrapper(ctx, sess.Opts, sess.Reporter)
	if sess.Reporter.HasCode(fdw.ErrCodeConnection) {
		sess.Close()
		return nil, echo.NewHTTPError(http.StatusBadGateway, sess.Reporter.Errors()[0].Error())
	}
	return sess, nil
}

func (sess *session) Close() {
	if err := sess.Wrapper.Close(); err != nil {
		logger.Warn().Err(err).Str("table", sess.Table.Name).Msg("error closing wrapper session")
	}
}

// errorCount lets a handler tell whether a single call reported anything
func (sess *session) errorCount() int {
	return len(sess.Reporter.Errors())
}

// Errors returns the reports as response bodies and the status they map to.
func (sess *session) Errors() ([]ErrorBody, int) {
	errs := sess.Reporter.Errors()
	if len(errs) == 0 {
		return nil, http.StatusOK
	}
	bodies := make([]ErrorBody, len(errs))
	for i, e := range errs {
		bodies[i] = ErrorBody{Code: string(e.Code), Message: e.Error()}
	}
	switch errs[0].Code {
	case fdw.ErrCodeOptionMissing:
		return bodies, http.StatusBadRequest
	case fdw.ErrCodeInvalidDataType:
		return bodies, http.StatusUnprocessableEntity
	default:
		return bodies, http.StatusBadGateway
	}
}
