package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/danthegoodman1/chfdw/clickhouse"
	"github.com/danthegoodman1/chfdw/export"
	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/danthegoodman1/chfdw/gologger"
	"github.com/danthegoodman1/chfdw/metastore"
	"github.com/danthegoodman1/chfdw/utils"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

var logger = gologger.NewLogger()

type (
	HTTPServer struct {
		Echo      *echo.Echo
		MetaStore metastore.MetaStore
		// ExportWriter is nil when no bucket is configured, which disables exports
		ExportWriter export.Writer
		NewWrapper   WrapperFactory
	}

	// Wrapper is the foreign table session a single request drives.
	Wrapper interface {
		fdw.ForeignDataWrapper
		Close() error
	}

	WrapperFactory func(ctx context.Context, opts fdw.Options, r fdw.Reporter) Wrapper

	CustomValidator struct {
		validator *validator.Validate
	}
)

// ClickHouseWrapper opens a ClickHouse session from the table options.
func ClickHouseWrapper(ctx context.Context, opts fdw.Options, r fdw.Reporter) Wrapper {
	return clickhouse.NewClickHouseFdw(ctx, opts, r)
}

// NewHTTPServer builds the server and its routes without listening.
func NewHTTPServer(ms metastore.MetaStore, exportWriter export.Writer, newWrapper WrapperFactory) *HTTPServer {
	s := &HTTPServer{
		Echo:         echo.New(),
		MetaStore:    ms,
		ExportWriter: exportWriter,
		NewWrapper:   newWrapper,
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.JSONSerializer = &utils.NoEscapeJSONSerializer{}

	s.Echo.Use(CreateReqContext)
	s.Echo.Use(LoggerMiddleware)
	s.Echo.Use(middleware.CORS())
	s.Echo.Validator = &CustomValidator{validator: validator.New()}

	// technical - no auth
	s.Echo.GET("/hc", s.HealthCheck)

	tablesGroup := s.Echo.Group("/tables")
	tablesGroup.POST("", ccHandler(s.CreateTable))
	tablesGroup.GET("", ccHandler(s.ListTables))
	tablesGroup.GET("/:name", ccHandler(s.GetTable))
	tablesGroup.DELETE("/:name", ccHandler(s.DropTable))
	tablesGroup.POST("/:name/estimate", ccHandler(s.EstimateHandler))
	tablesGroup.POST("/:name/scan", ccHandler(s.ScanHandler))
	tablesGroup.POST("/:name/insert", ccHandler(s.InsertHandler))
	tablesGroup.POST("/:name/update", ccHandler(s.UpdateHandler))
	tablesGroup.POST("/:name/delete", ccHandler(s.DeleteHandler))
	tablesGroup.POST("/:name/export", ccHandler(s.ExportHandler))

	return s
}

func StartHTTPServer(ms metastore.MetaStore, exportWriter export.Writer) *HTTPServer {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", utils.GetEnvOrDefault("HTTP_PORT", "8080")))
	if err != nil {
		logger.Error().Err(err).Msg("error creating tcp listener, exiting")
		os.Exit(1)
	}
	s := NewHTTPServer(ms, exportWriter, ClickHouseWrapper)

	s.Echo.Listener = listener
	go func() {
		logger.Info().Msg("starting h2c server on " + listener.Addr().String())
		err := s.Echo.StartH2CServer("", &http2.Server{})
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to start h2c server, exiting")
			os.Exit(1)
		}
	}()

	return s
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ValidateRequest(c echo.Context, s interface{}) error {
	if err := c.Bind(s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(s); err != nil {
		return err
	}
	return nil
}

func (*HTTPServer) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	return err
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			// default handler
			c.Error(err)
		}
		stop := time.Since(start)
		logger := zerolog.Ctx(c.Request().Context())
		req := c.Request()
		res := c.Response()

		p := req.URL.Path
		if p == "" {
			p = "/"
		}

		cl := req.Header.Get(echo.HeaderContentLength)
		if cl == "" {
			cl = "0"
		}
		logger.Debug().Str("method", req.Method).Str("remote_ip", c.RealIP()).Str("req_uri", req.RequestURI).Str("handler_path", c.Path()).Str("path", p).Int("status", res.Status).Int64("latency_ns", int64(stop)).Str("protocol", req.Proto).Str("bytes_in", cl).Int64("bytes_out", res.Size).Msg("req recived")
		return nil
	}
}
