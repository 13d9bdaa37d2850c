package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/image-descriptor-go/internal/config"
	apperrors "github.com/anime-shed/image-descriptor-go/internal/errors"
	"github.com/anime-shed/image-descriptor-go/internal/logger"
	"github.com/anime-shed/image-descriptor-go/internal/observer"
	"github.com/anime-shed/image-descriptor-go/internal/service"
	"github.com/anime-shed/image-descriptor-go/pkg/models"
)

// StatsProvider exposes aggregated request counters
type StatsProvider interface {
	GetMetrics() observer.Metrics
}

func NewHandler(svc service.DescriptorService, stats StatsProvider, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/stats", statsHandler(stats))
	r.POST("/descriptor", computeDescriptor(svc, cfg))

	return r
}

func computeDescriptor(svc service.DescriptorService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing descriptor request")

		var req models.DescriptorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			code := http.StatusBadRequest
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				code = http.StatusRequestEntityTooLarge
			}
			respondError(c, code, "invalid request format", err)
			return
		}

		resp, err := svc.ComputeDescriptor(ctx, req.URL)
		if err != nil {
			respondError(c, determineStatusCode(err), "descriptor request failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"url":                req.URL,
			"request_id":         resp.ID,
			"width":              resp.Width,
			"height":             resp.Height,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Descriptor computed successfully")

		c.JSON(http.StatusOK, resp)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "available",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func statsHandler(stats StatsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if stats == nil {
			respondError(c, http.StatusNotFound, "stats unavailable", errors.New("no metrics observer"))
			return
		}
		m := stats.GetMetrics()
		c.JSON(http.StatusOK, gin.H{
			"total_requests":         m.TotalRequests,
			"successful_requests":    m.SuccessfulRequests,
			"failed_requests":        m.FailedRequests,
			"fetch_failures":         m.FetchFailures,
			"pixels_processed":       m.PixelsProcessed,
			"avg_processing_time_ms": float64(m.AvgProcessingTime) / float64(time.Millisecond),
		})
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	resp := models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Details = string(appErr.Type)
	}
	c.AbortWithStatusJSON(code, resp)
}
