// Package server 提供本地 HTTP 接口，一次只运行一个批次
package server

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/generator"
	"github.com/allanpk716/evrak_generator/internal/store"
)

// Server HTTP 服务器
type Server struct {
	router *gin.Engine
	gen    *generator.Generator
	store  *store.Store
	logger *zap.Logger

	mu     sync.Mutex
	active *activeRun
}

// activeRun 正在后台执行的批次
type activeRun struct {
	ID    string
	Total int
	Done  int
	done  chan struct{}
}

// New 创建服务器，st 为 nil 时历史接口不可用
func New(gen *generator.Generator, st *store.Store, logger *zap.Logger, devMode bool) *Server {
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router: gin.New(),
		gen:    gen,
		store:  st,
		logger: logger,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/status", s.GetStatus)
		api.GET("/documents", s.ListDocuments)
		api.POST("/runs", s.StartRun)
		api.GET("/runs", s.ListRuns)
		api.GET("/runs/:id", s.GetRun)
	}
}

// requestLogger 用 zap 记录请求
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("HTTP 请求",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()))
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	s.logger.Info("HTTP 服务已启动", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Wait 等待当前批次结束
func (s *Server) Wait(ctx context.Context) error {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active == nil {
		return nil
	}
	select {
	case <-active.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
