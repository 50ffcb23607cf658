package http

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/sst-prescription/internal/adapter/interp"
	"go.ngs.io/sst-prescription/internal/adapter/render"
	"go.ngs.io/sst-prescription/internal/domain"
	"go.ngs.io/sst-prescription/internal/usecase"
)

// Handler handles HTTP requests for SST previews.
type Handler struct {
	preview *usecase.PreviewService
}

// NewHandler creates a new HTTP handler.
func NewHandler(preview *usecase.PreviewService) *Handler {
	return &Handler{
		preview: preview,
	}
}

// StatsResponse mirrors domain.GridStats with undefined values as null.
type StatsResponse struct {
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Mean    *float64 `json:"mean"`
	StdDev  *float64 `json:"std_dev"`
	Valid   int      `json:"valid"`
	Missing int      `json:"missing"`
}

// FilledResponse is the response for GET /v1/sst/filled.
type FilledResponse struct {
	Dataset string        `json:"dataset"`
	Time    string        `json:"time"`
	Method  string        `json:"method"`
	Lat     []float64     `json:"lat"`
	Lon     []float64     `json:"lon"`
	Values  [][]*float64  `json:"values"` // Kelvin; null where no value could be derived.
	Filled  int           `json:"filled"`
	Missing int           `json:"missing"`
	Stats   StatsResponse `json:"stats"`
}

// PointResponse is the response for GET /v1/sst/point.
type PointResponse struct {
	Dataset string   `json:"dataset"`
	Time    string   `json:"time"`
	Method  string   `json:"method"`
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
	SSTK    *float64 `json:"sst_k"`
}

// GetFilled handles GET /v1/sst/filled.
func (h *Handler) GetFilled(c *gin.Context) {
	dataset, t, ok := datasetAndTime(c)
	if !ok {
		return
	}
	method, err := interp.ParseMethod(c.DefaultQuery("method", string(interp.Nearest)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.preview.Filled(c.Request.Context(), dataset, t, method)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	values := make([][]*float64, len(res.Grid.Values))
	for i, row := range res.Grid.Values {
		values[i] = make([]*float64, len(row))
		for j, v := range row {
			values[i][j] = nullable(v)
		}
	}
	c.JSON(http.StatusOK, FilledResponse{
		Dataset: res.Dataset,
		Time:    res.Time.UTC().Format(time.RFC3339),
		Method:  string(res.Method),
		Lat:     res.Grid.Lat,
		Lon:     res.Grid.Lon,
		Values:  values,
		Filled:  res.Filled,
		Missing: res.Stats.Missing,
		Stats:   statsResponse(res.Stats),
	})
}

// GetPoint handles GET /v1/sst/point.
func (h *Handler) GetPoint(c *gin.Context) {
	dataset, t, ok := datasetAndTime(c)
	if !ok {
		return
	}
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return
	}
	method, err := interp.ParseMethod(c.DefaultQuery("method", string(interp.Nearest)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.preview.Sample(c.Request.Context(), dataset, t, method, lat, lon)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, PointResponse{
		Dataset: p.Dataset,
		Time:    p.Time.UTC().Format(time.RFC3339),
		Method:  string(p.Method),
		Lat:     p.Lat,
		Lon:     p.Lon,
		SSTK:    nullable(p.Value),
	})
}

// GetMap handles GET /v1/sst/map.
func (h *Handler) GetMap(c *gin.Context) {
	dataset, t, ok := datasetAndTime(c)
	if !ok {
		return
	}
	field, err := render.ParseField(c.DefaultQuery("field", string(render.FieldSST)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := h.preview.RenderMap(c.Request.Context(), dataset, t, field, &buf); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// GetDatasets handles GET /v1/datasets.
func (h *Handler) GetDatasets(c *gin.Context) {
	datasets := h.preview.Datasets()
	c.JSON(http.StatusOK, gin.H{
		"datasets": datasets,
		"count":    len(datasets),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// datasetAndTime parses the parameters shared by every SST endpoint and
// writes a 400 response when they are invalid.
func datasetAndTime(c *gin.Context) (string, time.Time, bool) {
	dataset := c.Query("dataset")
	if dataset == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dataset parameter is required"})
		return "", time.Time{}, false
	}
	timeStr := c.Query("time")
	if timeStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time parameter is required"})
		return "", time.Time{}, false
	}
	t, err := domain.ParseTime(timeStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", time.Time{}, false
	}
	return dataset, t, true
}

// statusFor maps use-case errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrUnknownDataset), errors.Is(err, interp.ErrOutsideGrid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingFile), errors.Is(err, usecase.ErrNoField):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func statsResponse(s domain.GridStats) StatsResponse {
	return StatsResponse{
		Min:     nullable(s.Min),
		Max:     nullable(s.Max),
		Mean:    nullable(s.Mean),
		StdDev:  nullable(s.StdDev),
		Valid:   s.Valid,
		Missing: s.Missing,
	}
}
