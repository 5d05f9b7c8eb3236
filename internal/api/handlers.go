package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"salesreport/internal/engine"
	"salesreport/internal/models"

	"github.com/labstack/echo/v4"
)

// ArrowStreamMIME is the media type of an Arrow IPC stream.
const ArrowStreamMIME = "application/vnd.apache.arrow.stream"

// Handler regenerates the report on every request from the configured source;
// nothing is shared between requests.
type Handler struct {
	defaults engine.Options
	logger   *slog.Logger
}

func NewHandler(defaults engine.Options, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	defaults.Logger = logger
	return &Handler{defaults: defaults, logger: logger}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/report", h.GetReport)
	api.GET("/records", h.GetRecords)
	api.GET("/records.arrow", h.GetRecordsArrow)
	api.GET("/summary", h.GetSummary)
	api.GET("/sales/monthly", h.GetMonthlySales)
	api.GET("/sales/categories", h.GetCategorySales)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// --- HELPERS ---

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// generate runs one report for this request, honouring ?cutoff= or ?quarter=.
func (h *Handler) generate(c echo.Context) (*engine.Result, error) {
	opts := h.defaults
	cutoff, quarter := c.QueryParam("cutoff"), c.QueryParam("quarter")
	if cutoff != "" || quarter != "" {
		t, err := engine.ResolveCutoff(cutoff, quarter)
		if err != nil {
			return nil, &echo.HTTPError{Code: http.StatusBadRequest, Message: err.Error(), Internal: err}
		}
		opts.Cutoff = t
	}
	return engine.Run(c.Request().Context(), opts)
}

// fail maps pipeline errors to status codes. The dashboard shows the message
// in place of the report.
func (h *Handler) fail(c echo.Context, err error) error {
	var httpErr *echo.HTTPError
	switch {
	case errors.Is(err, engine.ErrSourceNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Error: "source_not_found", Message: err.Error()})
	case errors.Is(err, engine.ErrParse):
		return c.JSON(http.StatusUnprocessableEntity, errorBody{Error: "parse_failure", Message: err.Error()})
	case errors.As(err, &httpErr) && httpErr.Code == http.StatusBadRequest:
		return c.JSON(http.StatusBadRequest, errorBody{Error: "bad_request", Message: fmt.Sprint(httpErr.Message)})
	}
	h.logger.ErrorContext(c.Request().Context(), "report failed", "error", err)
	return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal", Message: "report generation failed"})
}

// --- HANDLERS ---

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetReport(c echo.Context) error {
	res, err := h.generate(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res.Report)
}

// cleaned records, paginated
func (h *Handler) GetRecords(c echo.Context) error {
	res, err := h.generate(c)
	if err != nil {
		return h.fail(c, err)
	}
	records := res.Records
	total := len(records)
	limit, offset := getPaginationParams(c, total)

	page := []models.SalesRecord{}
	if offset < total {
		end := offset + min(limit, total-offset)
		page = records[offset:end]
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   page,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetRecordsArrow(c echo.Context) error {
	res, err := h.generate(c)
	if err != nil {
		return h.fail(c, err)
	}
	store := engine.NewColumnStore(res.Records)
	defer store.Release()

	c.Response().Header().Set(echo.HeaderContentType, ArrowStreamMIME)
	c.Response().WriteHeader(http.StatusOK)
	return store.WriteIPC(c.Response())
}

func (h *Handler) GetSummary(c echo.Context) error {
	res, err := h.generate(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res.Report.Summary)
}

// monthly sales
func (h *Handler) GetMonthlySales(c echo.Context) error {
	res, err := h.generate(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res.Report.Monthly)
}

func (h *Handler) GetCategorySales(c echo.Context) error {
	res, err := h.generate(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res.Report.ByCategory)
}
