package metrics

import (
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes mounts the scrape endpoint and the pprof handlers.
func Routes(r chi.Router, m Manager, registry *prometheus.Registry) {
	r.With(systemMetricsMiddleware(m)).
		Get("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", pprof.Index)
		r.Get("/cmdline", pprof.Cmdline)
		r.Get("/profile", pprof.Profile)
		r.Get("/symbol", pprof.Symbol)
		r.Get("/trace", pprof.Trace)
		r.Get("/allocs", pprof.Handler("allocs").ServeHTTP)
		r.Get("/block", pprof.Handler("block").ServeHTTP)
		r.Get("/goroutine", pprof.Handler("goroutine").ServeHTTP)
		r.Get("/heap", pprof.Handler("heap").ServeHTTP)
		r.Get("/mutex", pprof.Handler("mutex").ServeHTTP)
		r.Get("/threadcreate", pprof.Handler("threadcreate").ServeHTTP)
	})
}

func systemMetricsMiddleware(m Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var stats runtime.MemStats
			runtime.ReadMemStats(&stats)

			m.SetGauge(GoRoutines, float64(runtime.NumGoroutine()))
			m.SetGauge(SysMemoryAlloc, float64(stats.Alloc))
			m.SetGauge(SysTotalAlloc, float64(stats.TotalAlloc))
			m.SetGauge(GoNumGC, float64(stats.NumGC))
			m.SetGauge(GoSys, float64(stats.Sys))

			next.ServeHTTP(w, r)
		})
	}
}
