package http_server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/danthegoodman1/chfdw/export"
	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/danthegoodman1/chfdw/partitioner"
	"github.com/danthegoodman1/chfdw/utils"
	"github.com/labstack/echo/v4"
)

type (
	QualBody struct {
		Field    string `validate:"required"`
		Operator string `validate:"required"`
		Value    any
		// Array makes this an `op any(...)` or `op all(...)` qual
		Array []any
		UseOr bool
	}

	ScanReqBody struct {
		Columns []string
		Quals   []QualBody `validate:"dive"`
		// Limit stops reading after that many rows, the remote query is not limited
		Limit *int64 `validate:"omitempty,min=0"`
	}

	EstimateResBody struct {
		EstimatedRows int64
		Width         int32
		Errors        []ErrorBody `json:",omitempty"`
	}

	ScanResBody struct {
		EstimatedRows int64
		Width         int32
		Rows          []*cell.Row
		Errors        []ErrorBody `json:",omitempty"`
	}

	ExportReqBody struct {
		Columns     []string
		Quals       []QualBody                  `validate:"dive"`
		Partitioner []partitioner.PartitionPlan `validate:"dive"`
	}

	ExportResBody struct {
		export.Stats
		Errors []ErrorBody `json:",omitempty"`
	}
)

// ToQual converts the JSON form of a qual.
func (q QualBody) ToQual() (fdw.Qual, error) {
	qual := fdw.Qual{Field: q.Field, Operator: q.Operator, UseOr: q.UseOr}
	if q.Array != nil {
		qual.Array = make([]*cell.Cell, len(q.Array))
		for i, v := range q.Array {
			c, err := cell.FromJSON(v)
			if err != nil {
				return fdw.Qual{}, fmt.Errorf("error in cell.FromJSON for %s[%d]: %w", q.Field, i, err)
			}
			qual.Array[i] = c
		}
		return qual, nil
	}
	c, err := cell.FromJSON(q.Value)
	if err != nil {
		return fdw.Qual{}, fmt.Errorf("error in cell.FromJSON for %s: %w", q.Field, err)
	}
	qual.Value = c
	return qual, nil
}

func toQuals(bodies []QualBody) ([]fdw.Qual, error) {
	quals := make([]fdw.Qual, 0, len(bodies))
	for _, b := range bodies {
		q, err := b.ToQual()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		quals = append(quals, q)
	}
	return quals, nil
}

func (s *HTTPServer) EstimateHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*60)
	defer cancel()

	var reqBody ScanReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.HTTPError(err, "error validating request")
	}
	quals, err := toQuals(reqBody.Quals)
	if err != nil {
		return c.HTTPError(err, "error converting quals")
	}

	sess, err := s.openSession(ctx, c.Param("name"))
	if err != nil {
		return c.HTTPError(err, "error opening session")
	}
	defer sess.Close()

	var res EstimateResBody
	res.EstimatedRows, res.Width = sess.Wrapper.GetRelSize(ctx, quals, reqBody.Columns, nil, nil, sess.Opts)

	var status int
	res.Errors, status = sess.Errors()
	return c.JSON(status, res)
}

func (s *HTTPServer) ScanHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*60)
	defer cancel()

	var reqBody ScanReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.HTTPError(err, "error validating request")
	}
	quals, err := toQuals(reqBody.Quals)
	if err != nil {
		return c.HTTPError(err, "error converting quals")
	}

	sess, err := s.openSession(ctx, c.Param("name"))
	if err != nil {
		return c.HTTPError(err, "error opening session")
	}
	defer sess.Close()

	var limit *fdw.Limit
	if reqBody.Limit != nil {
		limit = &fdw.Limit{Count: *reqBody.Limit}
	}

	res := ScanResBody{Rows: []*cell.Row{}}
	w := sess.Wrapper
	res.EstimatedRows, res.Width = w.GetRelSize(ctx, quals, reqBody.Columns, nil, limit, sess.Opts)
	w.BeginScan(ctx, quals, reqBody.Columns, nil, limit, sess.Opts)
	for row := w.IterScan(ctx); row != nil; row = w.IterScan(ctx) {
		if limit != nil && int64(len(res.Rows)) >= limit.Count {
			break
		}
		res.Rows = append(res.Rows, row)
	}
	w.EndScan(ctx)

	var status int
	res.Errors, status = sess.Errors()
	return c.JSON(status, res)
}

func (s *HTTPServer) ExportHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Minute*5)
	defer cancel()

	if s.ExportWriter == nil {
		return c.String(http.StatusNotImplemented, "exports are not configured")
	}

	var reqBody ExportReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.HTTPError(err, "error validating request")
	}
	quals, err := toQuals(reqBody.Quals)
	if err != nil {
		return c.HTTPError(err, "error converting quals")
	}

	sess, err := s.openSession(ctx, c.Param("name"))
	if err != nil {
		return c.HTTPError(err, "error opening session")
	}
	defer sess.Close()

	stats, err := export.Export(ctx, sess.Wrapper, sess.Opts, export.Request{
		Columns:     reqBody.Columns,
		Quals:       quals,
		Partitioner: reqBody.Partitioner,
	}, utils.EXPORT_PREFIX, sess.Table.Name, s.ExportWriter)
	if err != nil {
		return c.InternalError(err, "error exporting table")
	}

	res := ExportResBody{Stats: *stats}
	var status int
	res.Errors, status = sess.Errors()
	if status == http.StatusOK {
		status = http.StatusAccepted
	}
	return c.JSON(status, res)
}
