package http_server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/danthegoodman1/gojsonutils"
)

type (
	InsertReqBody struct {
		// Line-delimited JSON (NDJSON)
		RowsString *string
		// Array of JSON
		Rows []map[string]any
	}

	UpdateReqBody struct {
		RowID any
		Row   map[string]any `validate:"required"`
	}

	DeleteReqBody struct {
		RowIDs []any `validate:"required,min=1"`
	}

	ModifyResBody struct {
		// NumRows counts the rows that went through without a report
		NumRows int64
		TimeMS  int64
		Errors  []ErrorBody `json:",omitempty"`
	}
)

var (
	ErrNotFlatMap = errors.New("not a flat map")
	ErrNoRowID    = errors.New("missing RowID")
)

// flatRow flattens nested JSON objects into dotted column names.
func flatRow(jsonMap map[string]any) (*cell.Row, error) {
	flat, err := gojsonutils.Flatten(jsonMap, nil)
	if err != nil {
		return nil, fmt.Errorf("error in gojsonutils.Flatten: %w", err)
	}
	flatMap, ok := flat.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %+v", ErrNotFlatMap, flat)
	}
	return cell.RowFromJSON(flatMap)
}

func (body InsertReqBody) rows() ([]*cell.Row, error) {
	var rows []*cell.Row
	if body.RowsString != nil {
		ndJSONScanner := bufio.NewScanner(strings.NewReader(*body.RowsString))
		for ndJSONScanner.Scan() {
			line := strings.TrimSpace(ndJSONScanner.Text())
			if line == "" {
				continue
			}
			jsonMap, err := cell.DecodeObject([]byte(line))
			if err != nil {
				return nil, fmt.Errorf("line was not a JSON object: %w", err)
			}
			row, err := flatRow(jsonMap)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		if err := ndJSONScanner.Err(); err != nil {
			return nil, fmt.Errorf("error reading rows: %w", err)
		}
	}
	for _, jsonMap := range body.Rows {
		row, err := flatRow(jsonMap)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *HTTPServer) InsertHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*60)
	defer cancel()
	start := time.Now()

	var reqBody InsertReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.HTTPError(err, "error validating request")
	}
	rows, err := reqBody.rows()
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	if len(rows) == 0 {
		return c.String(http.StatusBadRequest, "no rows found")
	}

	sess, err := s.openSession(ctx, c.Param("name"))
	if err != nil {
		return c.HTTPError(err, "error opening session")
	}
	defer sess.Close()

	var res ModifyResBody
	sess.Wrapper.BeginModify(ctx, sess.Opts)
	if sess.errorCount() > 0 {
		return s.modifyResponse(c, sess, res, start)
	}
	for _, row := range rows {
		before := sess.errorCount()
		sess.Wrapper.Insert(ctx, row)
		if sess.errorCount() == before {
			res.NumRows++
		}
	}
	sess.Wrapper.EndModify(ctx)

	return s.modifyResponse(c, sess, res, start)
}

func (s *HTTPServer) UpdateHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*60)
	defer cancel()
	start := time.Now()

	var reqBody UpdateReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.HTTPError(err, "error validating request")
	}
	if reqBody.RowID == nil {
		return c.String(http.StatusBadRequest, ErrNoRowID.Error())
	}
	rowID, err := cell.FromJSON(reqBody.RowID)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	row, err := flatRow(reqBody.Row)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	sess, err := s.openSession(ctx, c.Param("name"))
	if err != nil {
		return c.HTTPError(err, "error opening session")
	}
	defer sess.Close()

	var res ModifyResBody
	sess.Wrapper.BeginModify(ctx, sess.Opts)
	if sess.errorCount() > 0 {
		return s.modifyResponse(c, sess, res, start)
	}
	sess.Wrapper.Update(ctx, rowID, row)
	if sess.errorCount() == 0 {
		res.NumRows++
	}
	sess.Wrapper.EndModify(ctx)

	return s.modifyResponse(c, sess, res, start)
}

func (s *HTTPServer) DeleteHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*60)
	defer cancel()
	start := time.Now()

	var reqBody DeleteReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.HTTPError(err, "error validating request")
	}
	rowIDs := make([]*cell.Cell, len(reqBody.RowIDs))
	for i, v := range reqBody.RowIDs {
		rowID, err := cell.FromJSON(v)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		rowIDs[i] = rowID
	}

	sess, err := s.openSession(ctx, c.Param("name"))
	if err != nil {
		return c.HTTPError(err, "error opening session")
	}
	defer sess.Close()

	var res ModifyResBody
	sess.Wrapper.BeginModify(ctx, sess.Opts)
	if sess.errorCount() > 0 {
		return s.modifyResponse(c, sess, res, start)
	}
	for _, rowID := range rowIDs {
		before := sess.errorCount()
		sess.Wrapper.Delete(ctx, rowID)
		if sess.errorCount() == before {
			res.NumRows++
		}
	}
	sess.Wrapper.EndModify(ctx)

	return s.modifyResponse(c, sess, res, start)
}

func (s *HTTPServer) modifyResponse(c *CustomContext, sess *session, res ModifyResBody, start time.Time) error {
	res.TimeMS = time.Since(start).Milliseconds()
	var status int
	res.Errors, status = sess.Errors()
	if status == http.StatusOK {
		status = http.StatusAccepted
	}
	return c.JSON(status, res)
}
