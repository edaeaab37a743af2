package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/analyzer"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/config"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/model"
)

type stubInventory struct{}

func (stubInventory) FileSystems(ctx context.Context, fsid string) ([]model.FileSystemDescriptor, error) {
	return nil, nil
}
func (stubInventory) Volumes(ctx context.Context, fsid string) ([]model.VolumeDescriptor, error) {
	return nil, nil
}
func (stubInventory) StorageVirtualMachines(ctx context.Context, fsid string) ([]model.StorageVirtualMachine, error) {
	return nil, nil
}

type stubMetrics struct{}

func (stubMetrics) ByteSumSeries(ctx context.Context, metric, fsid, volid string) ([]float64, error) {
	return nil, nil
}
func (stubMetrics) LongTermSeries(ctx context.Context, fsid, volid string) (*model.LongTermSeries, error) {
	return nil, nil
}

type stubPricing struct{}

func (stubPricing) UnitPriceGiB(ctx context.Context, region string) float64 { return 0.145 }

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	engine := analyzer.NewEngine(config.Default(), stubInventory{}, stubMetrics{}, stubPricing{}, logrus.NewEntry(log))
	return New(engine, logrus.NewEntry(log)).Router()
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	testRouter(t).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestReportEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
	testRouter(t).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}

	var report model.AnalysisReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	// An empty fleet still yields the placeholder result.
	if len(report.Results) != 1 || report.Results[0].FSID != "N/A" {
		t.Errorf("Results = %+v, want empty-fleet placeholder", report.Results)
	}
	if report.Timestamp == "" {
		t.Error("missing timestamp")
	}
}

func TestCORSPreflight(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/report", nil)
	testRouter(t).ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET,OPTIONS,POST" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
}
