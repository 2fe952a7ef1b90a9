// Package server exposes the frame extraction pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/liqwen/framegrab/internal/core/acquire"
	"github.com/liqwen/framegrab/internal/core/analytics"
	"github.com/liqwen/framegrab/internal/core/config"
	"github.com/liqwen/framegrab/internal/core/fetch"
	"github.com/liqwen/framegrab/internal/core/frames"
	"github.com/liqwen/framegrab/internal/core/media/ffmpeg"
	"github.com/liqwen/framegrab/internal/core/platform"
	"github.com/liqwen/framegrab/internal/core/scratch"
	"github.com/liqwen/framegrab/internal/core/shorts"
	"github.com/liqwen/framegrab/internal/core/timestamp"
	"github.com/liqwen/framegrab/internal/core/version"
)

// Response is the standard API response structure
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// ExtractRequest is the request body for POST /api/extract-frames
type ExtractRequest struct {
	URL        string   `json:"url" binding:"required"`
	Timestamps []string `json:"timestamps" binding:"required"`
}

// ValidateRequest is the request body for POST /api/validate-url
type ValidateRequest struct {
	URL string `json:"url" binding:"required"`
}

// ShortRequest is the request body for POST /api/shorts
type ShortRequest struct {
	URL         string  `json:"url" binding:"required"`
	Start       float64 `json:"start"`
	Duration    float64 `json:"duration" binding:"required"`
	Quality     string  `json:"quality,omitempty"`
	Verticalize bool    `json:"verticalize,omitempty"`

	OverlayText     string `json:"overlay_text,omitempty"`
	OverlayPosition string `json:"overlay_position,omitempty"`
	OverlayFontSize int    `json:"overlay_font_size,omitempty"`
	OverlayColor    string `json:"overlay_color,omitempty"`
}

// Server is the HTTP server for framegrab
type Server struct {
	cfg       *config.Config
	engine    *acquire.Engine
	extractor *frames.Extractor
	renderer  *shorts.Renderer
	janitor   *scratch.Janitor
	store     *analytics.Store
	parser    timestamp.Parser

	// slots throttles the heavy pipeline endpoints.
	slots chan struct{}

	httpServer *http.Server
	router     *gin.Engine
}

// NewServer wires the pipeline from config. The analytics store is optional:
// a nil store disables history recording.
func NewServer(cfg *config.Config, store *analytics.Store) *Server {
	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)

	maxConcurrent := cfg.Server.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	return &Server{
		cfg: cfg,
		engine: &acquire.Engine{
			Fetcher:        fetch.NewYTDLP(cfg.YTDLPPath),
			DownloadDir:    cfg.DownloadDir,
			CookieFile:     cfg.CookieFile,
			CookieBrowsers: cfg.CookieBrowsers,
		},
		extractor: &frames.Extractor{Video: video, Dir: cfg.FramesDir},
		renderer:  &shorts.Renderer{Video: video, Dir: cfg.ShortsDir},
		janitor: &scratch.Janitor{
			Dirs:   []string{cfg.DownloadDir, cfg.FramesDir, cfg.ShortsDir},
			MaxAge: time.Duration(cfg.CleanupAgeHours) * time.Hour,
		},
		store:  store,
		parser: timestamp.Parser{
			MaxDuration: float64(cfg.MaxVideoDuration),
			MaxBatch:    cfg.MaxTimestamps,
		},
		slots:  make(chan struct{}, maxConcurrent),
	}
}

// Start runs the HTTP server until it fails or Stop is called.
func (s *Server) Start() error {
	if err := s.cfg.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create working directories: %w", err)
	}

	s.setupRouter()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // pipeline requests run long
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting framegrab server on port %d", s.cfg.Server.Port)
	log.Printf("Download directory: %s", s.cfg.DownloadDir)

	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	api := s.router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/validate-url", s.handleValidateURL)
	api.GET("/video-info", s.handleVideoInfo)
	api.POST("/extract-frames", s.handleExtractFrames)
	api.POST("/shorts", s.handleShorts)
	api.POST("/cleanup", s.handleCleanup)
	api.GET("/stats", s.handleStats)

	s.router.GET("/frames/:name", s.handleServeFile(s.cfg.FramesDir))
	s.router.GET("/shorts/:name", s.handleServeFile(s.cfg.ShortsDir))
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s %s", c.Request.Method, c.Request.URL.Path, time.Since(start))
	}
}

// acquireSlot blocks until a pipeline slot frees up or the client goes away.
func (s *Server) acquireSlot(c *gin.Context) bool {
	select {
	case s.slots <- struct{}{}:
		return true
	case <-c.Request.Context().Done():
		c.JSON(http.StatusServiceUnavailable, Response{
			Code:    503,
			Data:    nil,
			Message: "request cancelled while waiting for a free slot",
		})
		return false
	}
}

func (s *Server) releaseSlot() { <-s.slots }

// Handlers

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"status":  "ok",
			"version": version.Version,
		},
		Message: "everything is good",
	})
}

func (s *Server) handleValidateURL(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Data:    nil,
			Message: "invalid request body: url is required",
		})
		return
	}

	id := platform.Detect(req.URL)
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"platform":  id.String(),
			"supported": id != platform.Unknown,
		},
		Message: id.Title(),
	})
}

func (s *Server) handleVideoInfo(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Data:    nil,
			Message: "url query parameter is required",
		})
		return
	}

	md, id, err := s.engine.Probe(c.Request.Context(), url)
	if err != nil {
		c.JSON(statusFor(err), Response{
			Code:    statusFor(err),
			Data:    nil,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"platform":    id.String(),
			"title":       md.Title,
			"uploader":    md.Uploader,
			"duration":    md.Duration,
			"upload_date": md.UploadDate,
			"view_count":  md.ViewCount,
			"thumbnail":   md.Thumbnail,
		},
		Message: "ok",
	})
}

func (s *Server) handleExtractFrames(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Data:    nil,
			Message: "invalid request body: url and timestamps are required",
		})
		return
	}

	stamps, parseErrs := s.parser.ParseBatch(req.Timestamps)
	if len(stamps) == 0 {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Data:    gin.H{"errors": errorStrings(parseErrs)},
			Message: "no valid timestamps",
		})
		return
	}

	if !s.acquireSlot(c) {
		return
	}
	defer s.releaseSlot()

	ctx := c.Request.Context()

	media, err := s.engine.Acquire(ctx, req.URL)
	if err != nil {
		s.recordRequest(req.URL, "", "", 0, err.Error())
		c.JSON(statusFor(err), Response{
			Code:    statusFor(err),
			Data:    nil,
			Message: err.Error(),
		})
		return
	}
	defer media.Cleanup()

	extracted, extractErrs := s.extractor.Extract(ctx, media.Path, media.Token(), stamps)

	requestID := s.recordRequest(req.URL, media.Platform.String(), media.Title, 0, "")

	frameList := make([]gin.H, len(extracted))
	for i, f := range extracted {
		frameList[i] = gin.H{
			"timestamp": f.Spec,
			"seconds":   f.Seconds,
			"url":       "/frames/" + filepath.Base(f.Path),
		}
		s.recordFrame(requestID, f)
	}

	allErrs := append(errorStrings(parseErrs), errorStrings(extractErrs)...)
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"title":    media.Title,
			"platform": media.Platform.String(),
			"frames":   frameList,
			"errors":   allErrs,
		},
		Message: fmt.Sprintf("%d frames extracted", len(extracted)),
	})
}

func (s *Server) handleShorts(c *gin.Context) {
	var req ShortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Data:    nil,
			Message: "invalid request body: url and duration are required",
		})
		return
	}

	if !s.acquireSlot(c) {
		return
	}
	defer s.releaseSlot()

	ctx := c.Request.Context()

	media, err := s.engine.Acquire(ctx, req.URL)
	if err != nil {
		s.recordRequest(req.URL, "", "", 0, err.Error())
		c.JSON(statusFor(err), Response{
			Code:    statusFor(err),
			Data:    nil,
			Message: err.Error(),
		})
		return
	}
	defer media.Cleanup()

	spec := shorts.ClipSpec{
		Start:       req.Start,
		Duration:    req.Duration,
		Quality:     req.Quality,
		Verticalize: req.Verticalize,
	}
	if req.OverlayText != "" {
		spec.Overlay = &ffmpeg.TextOverlay{
			Text:     req.OverlayText,
			Position: req.OverlayPosition,
			FontSize: req.OverlayFontSize,
			Color:    req.OverlayColor,
		}
	}

	out, err := s.renderer.Render(ctx, media.Path, media.Title, media.Token(), spec)
	if err != nil {
		s.recordRequest(req.URL, media.Platform.String(), media.Title, 0, err.Error())
		c.JSON(statusFor(err), Response{
			Code:    statusFor(err),
			Data:    nil,
			Message: err.Error(),
		})
		return
	}

	s.recordRequest(req.URL, media.Platform.String(), media.Title, req.Duration, "")

	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"title": media.Title,
			"url":   "/shorts/" + filepath.Base(out),
		},
		Message: "clip rendered",
	})
}

func (s *Server) handleCleanup(c *gin.Context) {
	removed, errs := s.janitor.Sweep()
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"removed": removed,
			"errors":  errorStrings(errs),
		},
		Message: fmt.Sprintf("%d files removed", removed),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, Response{
			Code:    404,
			Data:    nil,
			Message: "analytics disabled",
		})
		return
	}

	stats, err := s.store.PlatformStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:    500,
			Data:    nil,
			Message: err.Error(),
		})
		return
	}
	recent, err := s.store.RecentErrors(c.Request.Context(), 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:    500,
			Data:    nil,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"platforms":     stats,
			"recent_errors": recent,
		},
		Message: "ok",
	})
}

// handleServeFile serves a single file out of dir by base name. Names with
// path separators are rejected so clients cannot walk out of the directory.
func (s *Server) handleServeFile(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
			c.JSON(http.StatusBadRequest, Response{
				Code:    400,
				Data:    nil,
				Message: "invalid file name",
			})
			return
		}

		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			c.JSON(http.StatusNotFound, Response{
				Code:    404,
				Data:    nil,
				Message: "file not found",
			})
			return
		}
		c.File(path)
	}
}

// recordRequest logs to analytics when a store is configured. History is
// best effort and never fails a request.
func (s *Server) recordRequest(url, platformID, title string, duration float64, errMsg string) int64 {
	if s.store == nil {
		return 0
	}
	id, err := s.store.RecordRequest(context.Background(), url, platformID, title, duration, errMsg)
	if err != nil {
		log.Printf("[server] record request: %v", err)
	}
	return id
}

func (s *Server) recordFrame(requestID int64, f frames.Frame) {
	if s.store == nil || requestID == 0 {
		return
	}
	if err := s.store.RecordFrame(context.Background(), requestID, f.Spec, f.Seconds, f.Path); err != nil {
		log.Printf("[server] record frame: %v", err)
	}
}

// statusFor maps pipeline errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case isAny(err, acquire.ErrUnsupportedPlatform):
		return http.StatusBadRequest
	case isAny(err, acquire.ErrMetadataUnavailable, acquire.ErrFileMissing):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}
