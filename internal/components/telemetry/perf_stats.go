package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	perfMeter           = otel.Meter("go.perf_stats")
	cpuGauge, _         = perfMeter.Float64Gauge("cpu_usage", metric.WithUnit("%"))
	memoryGauge, _      = perfMeter.Int64Gauge("allocated_mb", metric.WithUnit("MB"))
	liveObjectsGauge, _ = perfMeter.Int64Gauge("live_objects")
	goroutineGauge, _   = perfMeter.Int64Gauge("goroutine_count")
)

// PerfSample is one reading of the process' resource usage.
type PerfSample struct {
	CpuPercent  float64
	AllocatedMb int64
	LiveObjects int64
	Goroutines  int64
}

// SamplePerf reads the current resource usage. The cpu percentage is
// measured since the previous call, the first call reports 0.
func SamplePerf(ctx context.Context) PerfSample {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	sample := PerfSample{
		AllocatedMb: int64(memStats.Alloc / 1_000_000),
		LiveObjects: int64(memStats.Mallocs) - int64(memStats.Frees),
		Goroutines:  int64(runtime.NumGoroutine()),
	}
	usage, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		slog.Debug("failed to read cpu usage", "err", err)
	} else if len(usage) > 0 {
		sample.CpuPercent = usage[0]
	}
	return sample
}

// InstrumentPerfStats records the perf gauges every interval until ctx is
// done.
func InstrumentPerfStats(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sample := SamplePerf(ctx)
				cpuGauge.Record(ctx, sample.CpuPercent)
				memoryGauge.Record(ctx, sample.AllocatedMb)
				liveObjectsGauge.Record(ctx, sample.LiveObjects)
				goroutineGauge.Record(ctx, sample.Goroutines)
			case <-ctx.Done():
				return
			}
		}
	}()
}
