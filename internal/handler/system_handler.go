package handler

import (
	"context"
	"encoding/json"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/readtrack/readtrack-backend/internal/config"
	"github.com/readtrack/readtrack-backend/internal/repository"
)

const metricsInterval = 7 * time.Second

// SystemHandler streams host, runtime, and sync pipeline metrics via SSE.
type SystemHandler struct {
	rdb       *redis.Client
	queueRepo *repository.QueueRepository
	probe     *hostProbe
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(rdb *redis.Client, queueRepo *repository.QueueRepository, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		rdb:       rdb,
		queueRepo: queueRepo,
		probe:     newHostProbe(),
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	// Host
	CPUPercent     float64 `json:"cpu_percent"`
	MemUsedBytes   uint64  `json:"mem_used_bytes"`
	MemTotalBytes  uint64  `json:"mem_total_bytes"`
	MemPercent     float64 `json:"mem_percent"`
	DiskUsedBytes  uint64  `json:"disk_used_bytes"`
	DiskTotalBytes uint64  `json:"disk_total_bytes"`
	DiskPercent    float64 `json:"disk_percent"`
	LoadAvg1       float64 `json:"load_avg_1"`
	LoadAvg5       float64 `json:"load_avg_5"`
	LoadAvg15      float64 `json:"load_avg_15"`

	// Go runtime
	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc"`
	HeapSys     uint64 `json:"heap_sys"`
	StackInuse  uint64 `json:"stack_inuse"`
	NumGC       uint32 `json:"num_gc"`
	AppRSSBytes uint64 `json:"app_rss_bytes"`
	GoVersion   string `json:"go_version"`
	NumCPU      int    `json:"num_cpu"`
	CPUModel    string `json:"cpu_model"`

	// Sync pipeline
	QueuePending     int  `json:"queue_pending"`
	QueueProcessed   int  `json:"queue_processed"`
	SyncLeaseHeld    bool `json:"sync_lease_held"`
	RebuildLeaseHeld bool `json:"rebuild_lease_held"`
}

// StreamMetrics godoc
// GET /api/v1/admin/system/metrics
func (h *SystemHandler) StreamMetrics(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")

	h.log.Info().Msg("operator connected to metrics stream")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	// First frame right away, then one per tick.
	h.push(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("operator disconnected from metrics stream")
			return
		case <-ticker.C:
			h.push(c)
		}
	}
}

func (h *SystemHandler) push(c *gin.Context) {
	frame, err := json.Marshal(h.collect())
	if err != nil {
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(frame)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *SystemHandler) collect() systemMetrics {
	m := systemMetrics{
		Timestamp:  time.Now().Unix(),
		Uptime:     uptimeString(time.Since(h.startTime)),
		CPUPercent: h.probe.cpuPercent(),
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
		CPUModel:   h.probe.model,
	}

	if used, total := memUsage(); total > 0 {
		m.MemUsedBytes = used
		m.MemTotalBytes = total
		m.MemPercent = float64(used) / float64(total) * 100
	}

	if used, total := fsUsage("/"); total > 0 {
		m.DiskUsedBytes = used
		m.DiskTotalBytes = total
		m.DiskPercent = float64(used) / float64(total) * 100
	}

	m.LoadAvg1, m.LoadAvg5, m.LoadAvg15 = loadAverages()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.Goroutines = runtime.NumGoroutine()
	m.HeapAlloc = ms.HeapAlloc
	m.HeapSys = ms.Sys
	m.StackInuse = ms.StackInuse
	m.NumGC = ms.NumGC
	m.AppRSSBytes = processRSS()

	ctx := context.Background()
	if stats, err := h.queueRepo.Stats(ctx); err == nil {
		m.QueuePending = stats.Pending
		m.QueueProcessed = stats.Processed
	}

	pipe := h.rdb.Pipeline()
	syncCmd := pipe.Exists(ctx, config.CacheKey.SyncLeaseKey())
	rebuildCmd := pipe.Exists(ctx, config.CacheKey.RebuildLeaseKey())
	if _, err := pipe.Exec(ctx); err == nil {
		m.SyncLeaseHeld = syncCmd.Val() > 0
		m.RebuildLeaseHeld = rebuildCmd.Val() > 0
	}

	return m
}
