package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/logistics_backend/config"
	"bitbucket.org/mmdatafocus/logistics_backend/models"
	"bitbucket.org/mmdatafocus/logistics_backend/models/reports"
	"bitbucket.org/mmdatafocus/logistics_backend/utils"
	"github.com/bsm/redislock"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultPort = "8080"

var tracer trace.Tracer = otel.Tracer("logistics-backend")

var (
	datasetStore = models.NewDatasetStore()
	viewState    = &models.ViewState{}
)

// Define a struct to represent the rate limiter.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

type uploadResponse struct {
	Total         int    `json:"total"`
	Open          int    `json:"open"`
	SkippedRows   int    `json:"skipped_rows"`
	CorrelationId string `json:"correlation_id"`
}

// uploadCasesHandler rebuilds the session dataset from one sheet.
// The previous dataset stays readable until the new one is complete;
// the swap itself is atomic.
func uploadCasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		ctx, span := tracer.Start(c.Request.Context(), "ingest-sheet")
		defer span.End()

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		defer file.Close()

		// Best-effort: serialize concurrent uploads via redis. If the
		// lock cannot be obtained the swap is still safe; we proceed.
		var lock *redislock.Lock
		if redisLock := config.GetRedisLock(); redisLock != nil {
			lock, err = redisLock.Obtain(ctx, "lock:ingest", 30*time.Second, nil)
			if err != nil {
				if err != redislock.ErrNotObtained {
					logger.WithFields(logrus.Fields{
						"field": "uploadCasesHandler",
					}).Warn("error obtaining redis lock; proceeding without it: " + err.Error())
				}
				lock = nil
			}
		}
		defer func() {
			if lock == nil {
				return
			}
			if releaseErr := lock.Release(ctx); releaseErr != nil {
				logger.WithFields(logrus.Fields{
					"field": "uploadCasesHandler",
				}).Warn("failed to release redis lock: " + releaseErr.Error())
			}
		}()

		started := time.Now()
		var rows [][]models.Cell
		switch ext := strings.ToLower(filepath.Ext(header.Filename)); ext {
		case ".xlsx":
			rows, err = models.DecodeWorkbook(file)
		case ".csv":
			rows, err = models.DecodeCSV(file)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file type %q (want .xlsx or .csv)", ext)})
			return
		}
		if err != nil {
			// Structurally unreadable input; nothing to recover row by row.
			config.LogError(logger, "server.go", "uploadCasesHandler", "decode "+header.Filename, nil, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		records, skipped := models.ProcessRows(rows, models.BuildOptions{Now: time.Now()})
		dataset := &models.Dataset{
			Records:     records,
			Source:      header.Filename,
			SkippedRows: skipped,
			LoadedAt:    time.Now(),
		}
		datasetStore.Replace(dataset)
		viewState.Reset()

		summary := models.Summarize(records)
		cid, _ := utils.GetCorrelationIdFromContext(ctx)

		if config.IngestionAuditEnabled() {
			if auditErr := models.RecordIngestion(ctx, &models.IngestionLog{
				FileName:      header.Filename,
				TotalRecords:  summary.Total,
				OpenRecords:   summary.Open,
				SkippedRows:   skipped,
				DurationMs:    time.Since(started).Milliseconds(),
				CorrelationId: cid,
			}); auditErr != nil {
				// Audit failure never fails the upload.
				config.LogError(logger, "server.go", "uploadCasesHandler", "audit "+header.Filename, nil, auditErr)
			}
		}

		logger.WithFields(logrus.Fields{
			"field":          "uploadCasesHandler",
			"file_name":      header.Filename,
			"total":          summary.Total,
			"open":           summary.Open,
			"skipped_rows":   skipped,
			"correlation_id": cid,
		}).Info("dataset rebuilt")

		c.JSON(http.StatusOK, uploadResponse{
			Total:         summary.Total,
			Open:          summary.Open,
			SkippedRows:   skipped,
			CorrelationId: cid,
		})
	}
}

func resetCasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		datasetStore.Reset()
		viewState.Reset()
		c.Status(http.StatusNoContent)
	}
}

type casesQuery struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	SortField string `form:"sort_field"`
	SortDir   string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=500"`
}

func (q casesQuery) viewConfig() models.ViewConfig {
	cfg := models.ViewConfig{
		SortField: q.SortField,
		SortDesc:  q.SortDir == "desc",
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
	if t := parseDateParam(q.StartDate); t != nil {
		cfg.StartDate = t
	}
	if t := parseDateParam(q.EndDate); t != nil {
		cfg.EndDate = t
	}
	return cfg
}

func parseDateParam(s string) *time.Time {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func listCasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		dataset, err := datasetStore.Current()
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		var query casesQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}

		// Any filter or sort change sends the reader back to page 1.
		cfg := viewState.Normalize(query.viewConfig())
		c.JSON(http.StatusOK, models.ApplyView(dataset.Records, cfg))
	}
}

func summaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		dataset, err := datasetStore.Current()
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, models.Summarize(dataset.Records))
	}
}

func pendencyHistogramHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		dataset, err := datasetStore.Current()
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"buckets": models.PendencyHistogram(dataset.Records)})
	}
}

func topIssuesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		dataset, err := datasetStore.Current()
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"issues": models.TopIssues(dataset.Records, models.TopIssueLimit)})
	}
}

func exportCasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		dataset, err := datasetStore.Current()
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		open := models.OpenCasesByPendency(dataset.Records)
		if err := reports.WriteOpenCasesExcel(c.Writer, open); err != nil {
			config.LogError(config.GetLogger(), "server.go", "exportCasesHandler", "write workbook", nil, err)
		}
	}
}

func analystReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.AnalystReportEnabled() {
			c.JSON(http.StatusNotFound, gin.H{"error": "analyst report is not enabled"})
			return
		}
		dataset, err := datasetStore.Current()
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
		defer cancel()
		report, err := reports.GenerateAnalystReport(ctx, dataset.Records)
		if err != nil {
			config.LogError(config.GetLogger(), "server.go", "analystReportHandler", "generate", nil, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"report": report})
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Shutdown coordination: handle SIGTERM for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	r := gin.New()
	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// Production-safe CORS:
	// - In production, require explicit allowlist via CORS_ALLOWED_ORIGINS (comma-separated).
	// - In non-production, allow all (developer convenience).
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "x-correlation-id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	r.Use(cors.New(corsConfig))

	// Optional rate limiting.
	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		config.ConnectRedis()
		if client := config.GetRedisDB(); client != nil {
			limit := int64(600)
			if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
					limit = n
				}
			}
			windowSec := int64(60)
			if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
					windowSec = n
				}
			}
			r.Use(NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second).RateLimitMiddleware)
		}
	}

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.POST("/cases/upload", uploadCasesHandler())
	r.POST("/cases/reset", resetCasesHandler())
	r.GET("/cases", listCasesHandler())
	r.GET("/cases/summary", summaryHandler())
	r.GET("/cases/pendency-histogram", pendencyHistogramHandler())
	r.GET("/cases/top-issues", topIssuesHandler())
	r.GET("/cases/export", exportCasesHandler())
	r.POST("/cases/report", analystReportHandler())
	r.NoRoute(customNotFoundHandler)

	// Start listening immediately; dependencies connect afterwards.
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Optional dependencies: audit DB and redis (upload lock).
	config.ConnectDatabaseWithRetry()
	if config.GetRedisDB() == nil {
		config.ConnectRedis()
	}
	if config.GetDB() != nil {
		models.MigrateTable()
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Drain HTTP requests.
	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	// Close Redis (best-effort).
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
	if db := config.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil && sqlDB != nil {
			_ = sqlDB.Close()
		}
	}
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only log when there are errors
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

// Initialize a new RateLimiter instance.
func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Middleware function to check rate limits.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	// Get the IP address or user identifier from the request.
	key := c.ClientIP()

	// Check if the key exists in Redis.
	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	// If the key doesn't exist, create it and set expiry.
	if exists == 0 {
		err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err()
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	// If the key exists, get the current count.
	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	// If the count exceeds the limit, return an error response.
	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
