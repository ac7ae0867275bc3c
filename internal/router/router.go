package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/readtrack/readtrack-backend/internal/config"
	"github.com/readtrack/readtrack-backend/internal/handler"
	"github.com/readtrack/readtrack-backend/internal/middleware"
	"github.com/readtrack/readtrack-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Checkin   *handler.CheckinHandler
	Student   *handler.StudentHandler
	Group     *handler.GroupHandler
	Benchmark *handler.BenchmarkHandler
	Admin     *handler.AdminHandler
	WS        *handler.WSHandler
	System    *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestID())

	// Compress everything except the workbook export, which is already a
	// zip container.
	router.Use(middleware.BrotliWith(middleware.BrotliOptions{
		Skip: func(c *gin.Context) bool {
			return strings.HasSuffix(c.Request.URL.Path, "/groupview/workbook")
		},
	}))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for check-in submissions (per IP).
	checkinLimiter := middleware.NewRateLimiter(cfg.CheckinRatePerMin, time.Minute)

	// ─── 1. Progress API (No Auth) ─────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.POST("/checkins", checkinLimiter.Middleware(), handlers.Checkin.SubmitCheckin)
		api.GET("/checkins", handlers.Checkin.ListCheckins)
		api.GET("/checkins/recent", handlers.Checkin.RecentCheckins)

		api.POST("/students", handlers.Student.EnrollStudent)
		api.GET("/students", handlers.Student.ListStudents)
		api.GET("/students/:id", handlers.Student.GetStudent)
		api.GET("/students/:id/progress", handlers.Student.GetStudentProgress)
		api.PUT("/students/:id", handlers.Student.UpdateStudent)
		api.POST("/students/:id/reactivate", handlers.Student.ReactivateStudent)

		api.GET("/unenrollments", handlers.Student.ListUnenrollments)
		api.POST("/unenrollments/:id/confirm", handlers.Student.ConfirmUnenrollment)
		api.POST("/unenrollments/:id/resolve", handlers.Student.ResolveUnenrollment)

		api.GET("/groups", handlers.Group.ListGroups)
		api.GET("/groups/:name/view", handlers.Group.GetGroupView)
		api.GET("/groups/:name/pacing", handlers.Group.GetGroupPacing)
		api.GET("/pacing", handlers.Group.ListPacing)

		api.GET("/benchmarks", handlers.Benchmark.ListBenchmarks)
		api.GET("/benchmarks/groups", handlers.Benchmark.GroupBenchmarks)
		api.GET("/benchmarks/grades", handlers.Benchmark.GradeBenchmarks)

		// The workbook rerenders on every fold; a short client cache is enough.
		api.GET("/groupview/workbook", middleware.CacheControl(time.Minute), handlers.Group.DownloadWorkbook)
	}

	// ─── 2. Operator Group ─────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	{
		adminAPI.POST("/queue/process", handlers.Admin.ProcessQueue)
		adminAPI.GET("/queue", handlers.Admin.QueueStats)
		adminAPI.POST("/rebuild", handlers.Admin.Rebuild)
		adminAPI.POST("/recompute", handlers.Admin.Recompute)
		adminAPI.POST("/import", handlers.Admin.Import)
		adminAPI.POST("/import/validate", handlers.Admin.ValidateImport)
		adminAPI.POST("/import/workbook", handlers.Admin.ImportWorkbook)

		// System Monitoring
		adminAPI.GET("/system/metrics", handlers.System.StreamMetrics)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/sync/stream", handlers.WS.SyncStream)
	}

	return router
}
