package common

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string
	Slots   uint32
	Metrics struct {
		Port uint16
	}
}

func writeFile(t *testing.T, path, contents string) {
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "name: base\nslots: 10\nmetrics:\n  port: 9000\n")
	override := filepath.Join(dir, "override.yaml")
	writeFile(t, override, "slots: 20\n")

	var config testConfig
	require.NoError(t, LoadConfig(&config, dir, []string{override}))
	assert.Equal(t, "base", config.Name)
	assert.Equal(t, uint32(20), config.Slots)
	assert.Equal(t, uint16(9000), config.Metrics.Port)
}

func TestLoadConfig_Environment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "name: base\nslots: 10\nmetrics:\n  port: 9000\n")
	t.Setenv("FAIRSHARE_SLOTS", "30")
	t.Setenv("FAIRSHARE_METRICS_PORT", "9100")

	var config testConfig
	require.NoError(t, LoadConfig(&config, dir, nil))
	assert.Equal(t, uint32(30), config.Slots)
	assert.Equal(t, uint16(9100), config.Metrics.Port)
}

func TestLoadConfig_MissingBase(t *testing.T) {
	dir := t.TempDir()
	var config testConfig
	assert.Error(t, LoadConfig(&config, dir, nil))

	override := filepath.Join(dir, "override.yaml")
	writeFile(t, override, "name: override\n")
	require.NoError(t, LoadConfig(&config, filepath.Join(dir, "missing"), []string{override}))
	assert.Equal(t, "override", config.Name)
}

func TestLoadConfig_MissingOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "name: base\n")
	var config testConfig
	assert.Error(t, LoadConfig(&config, dir, []string{filepath.Join(dir, "missing.yaml")}))
}

func TestMetricsHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Inc()

	recorder := httptest.NewRecorder()
	MetricsHandler(registry).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "test_total 1")
}

func TestNewHttpServer(t *testing.T) {
	server := NewHttpServer(8080, http.NotFoundHandler())
	assert.Equal(t, ":8080", server.Addr)
}
