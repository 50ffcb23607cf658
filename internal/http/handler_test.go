package http

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/sst-prescription/internal/adapter/render"
	"go.ngs.io/sst-prescription/internal/adapter/store"
	"go.ngs.io/sst-prescription/internal/domain"
	"go.ngs.io/sst-prescription/internal/usecase"
)

// stubLoader returns a fixed snapshot or error.
type stubLoader struct {
	snap *domain.Snapshot
	err  error
}

func (s stubLoader) Load(t time.Time) (*domain.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	snap := *s.snap
	snap.Time = t
	return &snap, nil
}

type pngStub struct{}

func (pngStub) Render(w io.Writer, _ render.Field, _ *domain.Snapshot) error {
	_, err := w.Write([]byte("\x89PNG\r\n\x1a\n"))
	return err
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	nan := math.NaN()

	loaders := map[string]store.SnapshotLoader{
		"OISST": stubLoader{snap: &domain.Snapshot{
			Dataset: "OISST",
			SST: &domain.Grid{
				Lat:    []float64{30, 31},
				Lon:    []float64{120, 121, 122},
				Values: [][]float64{{290, nan, 292}, {289, 290, nan}},
			},
			Err: &domain.Grid{
				Lat:    []float64{30, 31},
				Lon:    []float64{120, 121, 122},
				Values: [][]float64{{0.2, 0.3, 0.2}, {0.2, 0.3, 0.4}},
			},
		}},
		"OSTIAdiu": stubLoader{snap: &domain.Snapshot{
			Dataset: "OSTIAdiu",
			SST: &domain.Grid{
				Lat:    []float64{30, 31},
				Lon:    []float64{120, 121, 122},
				Values: [][]float64{{nan, 290, nan}, {nan, nan, nan}},
			},
		}},
		"OSTIA": stubLoader{snap: &domain.Snapshot{
			Dataset: "OSTIA",
			SST: &domain.Grid{
				Lat:    []float64{30, 31},
				Lon:    []float64{120, 121},
				Values: [][]float64{{nan, nan}, {nan, nan}},
			},
		}},
		"GHRSST_NCEI": stubLoader{err: &domain.MissingFileError{Dataset: "GHRSST_NCEI", Pattern: "GHRSST/*"}},
	}
	open := func(dataset string) (store.SnapshotLoader, error) {
		if l, ok := loaders[dataset]; ok {
			return l, nil
		}
		return stubLoader{err: &domain.MissingFileError{Dataset: dataset}}, nil
	}
	return SetupRouter(usecase.NewPreviewService(open, pngStub{}))
}

func get(t *testing.T, router *gin.Engine, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := get(t, setupTestRouter(), "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestGetDatasets(t *testing.T) {
	w := get(t, setupTestRouter(), "/v1/datasets")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Datasets []usecase.DatasetInfo `json:"datasets"`
		Count    int                   `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 7 || len(body.Datasets) != 7 {
		t.Errorf("expected 7 datasets, got %d", body.Count)
	}
}

func TestGetFilled(t *testing.T) {
	w := get(t, setupTestRouter(), "/v1/sst/filled?dataset=OISST&time=2021-09-07%2018:00")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var body FilledResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Time != "2021-09-07T18:00:00Z" || body.Method != "nearest" {
		t.Errorf("unexpected header %+v", body)
	}
	if body.Filled != 2 || body.Missing != 0 {
		t.Errorf("filled = %d, missing = %d", body.Filled, body.Missing)
	}
	for i, row := range body.Values {
		for j, v := range row {
			if v == nil {
				t.Errorf("value[%d][%d] is null after nearest fill", i, j)
			}
		}
	}
	if body.Stats.Min == nil || *body.Stats.Min != 289 {
		t.Errorf("stats = %+v", body.Stats)
	}
}

func TestGetFilled_LinearEmitsNull(t *testing.T) {
	w := get(t, setupTestRouter(), "/v1/sst/filled?dataset=OISST&time=2021-09-07T18:00:00Z&method=linear")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var body FilledResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// (1, 2) lies outside the hull of the valid cells.
	if body.Values[1][2] != nil {
		t.Errorf("expected null outside the hull, got %v", *body.Values[1][2])
	}
	if body.Missing != 1 {
		t.Errorf("missing = %d, want 1", body.Missing)
	}
}

func TestGetPoint(t *testing.T) {
	w := get(t, setupTestRouter(), "/v1/sst/point?dataset=OISST&time=2021-09-07%2018:00&lat=30&lon=120.5")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var body PointResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// (0, 1) takes 290 from (0, 0) under the lowest-row, lowest-column tie-break.
	if body.SSTK == nil || math.Abs(*body.SSTK-290) > 1e-12 {
		t.Errorf("sst_k = %v", body.SSTK)
	}
}

func TestGetMap(t *testing.T) {
	w := get(t, setupTestRouter(), "/v1/sst/map?dataset=OISST&time=2021-09-07%2018:00&field=err")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"missing dataset", "/v1/sst/filled?time=2021-09-07%2018:00", http.StatusBadRequest},
		{"missing time", "/v1/sst/filled?dataset=OISST", http.StatusBadRequest},
		{"bad time", "/v1/sst/filled?dataset=OISST&time=tomorrow", http.StatusBadRequest},
		{"bad method", "/v1/sst/filled?dataset=OISST&time=2021-09-07%2018:00&method=cubic", http.StatusBadRequest},
		{"unknown dataset", "/v1/sst/filled?dataset=HadISST&time=2021-09-07%2018:00", http.StatusBadRequest},
		{"bad field", "/v1/sst/map?dataset=OISST&time=2021-09-07%2018:00&field=wind", http.StatusBadRequest},
		{"bad latitude", "/v1/sst/point?dataset=OISST&time=2021-09-07%2018:00&lat=north&lon=120", http.StatusBadRequest},
		{"point outside grid", "/v1/sst/point?dataset=OISST&time=2021-09-07%2018:00&lat=10&lon=120", http.StatusBadRequest},
		{"missing file", "/v1/sst/filled?dataset=GHRSST_NCEI&time=2021-09-07%2018:00", http.StatusNotFound},
		{"no error field", "/v1/sst/map?dataset=OSTIAdiu&time=2021-09-07%2018:00&field=err", http.StatusNotFound},
		{"all missing", "/v1/sst/filled?dataset=OSTIA&time=2021-09-07%2018:00", http.StatusUnprocessableEntity},
	}
	router := setupTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, router, tt.url)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
