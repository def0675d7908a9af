package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/generator"
	"github.com/allanpk716/evrak_generator/internal/report"
	"github.com/allanpk716/evrak_generator/internal/store"
)

// StatusResponse 服务状态
type StatusResponse struct {
	Busy  bool   `json:"busy"`
	RunID string `json:"run_id,omitempty"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
}

// RunRequest 启动批次的请求
type RunRequest struct {
	Documents []string `json:"documents"`
	Method    string   `json:"method"`
	PDF       bool     `json:"pdf"`
}

// GetStatus 当前批次进度
// GET /api/status
func (s *Server) GetStatus(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{}
	if s.active != nil {
		resp = StatusResponse{Busy: true, RunID: s.active.ID, Done: s.active.Done, Total: s.active.Total}
	}
	c.JSON(http.StatusOK, resp)
}

// ListDocuments 可生成的文档
// GET /api/documents?method=
func (s *Server) ListDocuments(c *gin.Context) {
	method, ok := parseMethod(c.Query("method"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid method"})
		return
	}
	if method == "" {
		method = s.gen.DefaultMethod()
	}
	docs, err := s.gen.Documents(method)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if docs == nil {
		docs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"method": method, "documents": docs})
}

// StartRun 在后台启动一个批次，已有批次运行时返回 409
// POST /api/runs
func (s *Server) StartRun(c *gin.Context) {
	var req RunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	method, ok := parseMethod(req.Method)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid method"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "another run is in progress", "run_id": s.active.ID})
		return
	}

	run, values, err := s.gen.Prepare(generator.RunOptions{Method: method, GeneratePDF: req.PDF})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	names, err := s.gen.Select(req.Documents, run.RiskMethod)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	active := &activeRun{ID: run.RunID.String(), Total: len(names), done: make(chan struct{})}
	s.active = active
	result := s.gen.RunAsync(context.Background(), names, values, run, func(done, _ int) {
		s.mu.Lock()
		active.Done = done
		s.mu.Unlock()
	})
	go s.await(active, result)

	c.JSON(http.StatusAccepted, gin.H{"run_id": active.ID, "total": active.Total})
}

// await 批次结束后释放运行槽位
func (s *Server) await(active *activeRun, result <-chan *report.Report) {
	rep := <-result
	if rep != nil {
		s.logger.Info("后台批次完成", zap.String("run", active.ID), zap.String("summary", rep.Summary()))
	}
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
	close(active.done)
}

// ListRuns 最近的运行
// GET /api/runs?limit=
func (s *Server) ListRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := s.store.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"items": runs, "total": len(runs)})
}

// GetRun 单次运行的详情，正在运行的批次返回进度
// GET /api/runs/:id
func (s *Server) GetRun(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	if s.active != nil && s.active.ID == id {
		resp := StatusResponse{Busy: true, RunID: id, Done: s.active.Done, Total: s.active.Total}
		s.mu.Unlock()
		c.JSON(http.StatusOK, resp)
		return
	}
	s.mu.Unlock()

	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history disabled"})
		return
	}
	detail, err := s.store.GetRun(id)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// parseMethod 空值表示使用替换表或配置中的方法
func parseMethod(value string) (domain.RiskMethod, bool) {
	if value == "" {
		return "", true
	}
	return domain.ParseRiskMethod(value)
}
