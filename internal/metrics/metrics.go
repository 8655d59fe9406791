package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StageDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planet_stage_duration_ms",
		Help:    "Generation stage duration in milliseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 20000},
	}, []string{"stage"})
	Points = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planet_points",
		Help: "Number of sampled points of the last generated or loaded world",
	})
	GenerationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planet_generations_total",
		Help: "Total planet generations by status",
	}, []string{"status"})
	DescribeTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planet_describe_total",
		Help: "Total describe queries",
	})
	ReachableTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planet_reachable_total",
		Help: "Total reachable queries",
	})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planet_cache_hits_total",
		Help: "Describe cache hits by layer",
	}, []string{"layer"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planet_cache_misses_total",
		Help: "Describe cache misses by layer",
	}, []string{"layer"})
)

func init() {
	prometheus.MustRegister(StageDurationMs)
	prometheus.MustRegister(Points)
	prometheus.MustRegister(GenerationsTotal)
	prometheus.MustRegister(DescribeTotal)
	prometheus.MustRegister(ReachableTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
}

// ObserveStage：记录阶段耗时
func ObserveStage(stage string, d time.Duration) {
	StageDurationMs.WithLabelValues(stage).Observe(float64(d.Milliseconds()))
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
