package http_server

import (
	"errors"
	"net/http"

	"github.com/danthegoodman1/chfdw/metastore"
)

type (
	CreateTableReqBody struct {
		Name string `validate:"required"`
		// Empty serves the table without a remote session
		ConnString  string
		Table       string `validate:"required"`
		RowIDColumn string `validate:"required"`
	}
)

func (s *HTTPServer) CreateTable(c *CustomContext) error {
	var reqBody CreateTableReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.HTTPError(err, "error validating request")
	}

	ft := metastore.ForeignTable{
		Name:        reqBody.Name,
		ConnString:  reqBody.ConnString,
		Table:       reqBody.Table,
		RowIDColumn: reqBody.RowIDColumn,
	}
	err := s.MetaStore.CreateForeignTable(c.Request().Context(), ft)
	if errors.Is(err, metastore.ErrTableExists) {
		return c.String(http.StatusConflict, err.Error())
	}
	if err != nil {
		return c.InternalError(err, "error creating foreign table")
	}
	return c.NoContent(http.StatusCreated)
}

func (s *HTTPServer) ListTables(c *CustomContext) error {
	tables, err := s.MetaStore.ListForeignTables(c.Request().Context())
	if err != nil {
		return c.InternalError(err, "error listing foreign tables")
	}
	if tables == nil {
		tables = []metastore.ForeignTable{}
	}
	return c.JSON(http.StatusOK, tables)
}

func (s *HTTPServer) GetTable(c *CustomContext) error {
	ft, err := s.MetaStore.GetForeignTable(c.Request().Context(), c.Param("name"))
	if errors.Is(err, metastore.ErrTableNotFound) {
		return c.String(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return c.InternalError(err, "error getting foreign table")
	}
	return c.JSON(http.StatusOK, ft)
}

func (s *HTTPServer) DropTable(c *CustomContext) error {
	err := s.MetaStore.DropForeignTable(c.Request().Context(), c.Param("name"))
	if errors.Is(err, metastore.ErrTableNotFound) {
		return c.String(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return c.InternalError(err, "error dropping foreign table")
	}
	return c.NoContent(http.StatusNoContent)
}
