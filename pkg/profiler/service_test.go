package profiler_test

import (
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/seedcheck/pkg/profiler"
)

func TestProfilerService(t *testing.T) {
	t.Run("invalid_opts", func(t *testing.T) {
		tests := []struct {
			name string
			opts profiler.ServiceOpts
		}{
			{"missing_datadir", profiler.ServiceOpts{Port: 18201, StatsInterval: time.Second}},
			{"invalid_port", profiler.ServiceOpts{Port: 80, StatsInterval: time.Second, Datadir: t.TempDir()}},
			{"missing_interval", profiler.ServiceOpts{Port: 18201, Datadir: t.TempDir()}},
		}
		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				svc, err := profiler.NewService(tt.opts)
				require.Error(t, err)
				require.Nil(t, svc)
			})
		}
	})

	t.Run("serve_and_dump_metrics", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		counter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "profiler_test_total",
			Help: "Test counter.",
		})
		registry.MustRegister(counter)
		counter.Inc()

		datadir := t.TempDir()
		svc, err := profiler.NewService(profiler.ServiceOpts{
			Port:          18201,
			StatsInterval: time.Minute,
			Datadir:       datadir,
			Gatherer:      registry,
		})
		require.NoError(t, err)
		require.NoError(t, svc.Start())

		var body string
		require.Eventually(t, func() bool {
			res, err := http.Get("http://localhost:18201/metrics")
			if err != nil {
				return false
			}
			defer res.Body.Close()
			buf, err := io.ReadAll(res.Body)
			if err != nil {
				return false
			}
			body = string(buf)
			return res.StatusCode == http.StatusOK
		}, 2*time.Second, 50*time.Millisecond)
		require.True(t, strings.Contains(body, "profiler_test_total 1"))

		svc.Stop()
		svc.Stop()

		files, err := os.ReadDir(datadir)
		require.NoError(t, err)
		require.Len(t, files, 1)
	})
}
