package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allanpk716/evrak_generator/internal/config"
	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/generator"
	"github.com/allanpk716/evrak_generator/internal/store"
	"github.com/allanpk716/evrak_generator/internal/testutil"
)

// gatedProcessor 在 release 关闭前阻塞，用来保持批次处于运行状态
type gatedProcessor struct {
	release chan struct{}
}

func (p *gatedProcessor) Fill(_ context.Context, _, outputPath string, _ domain.ReplacementMap, _ domain.RiskMethod) (*domain.FillResult, error) {
	<-p.release
	return &domain.FillResult{Stats: map[string]int{}}, os.WriteFile(outputPath, []byte("x"), 0644)
}

func (p *gatedProcessor) FillDocument(ctx context.Context, templatePath, outputPath string, r domain.ReplacementMap, m domain.RiskMethod) bool {
	_, err := p.Fill(ctx, templatePath, outputPath, r, m)
	return err == nil
}

func newTestServer(t *testing.T) (*Server, *gatedProcessor) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()

	testutil.WriteRows(t, filepath.Join(root, "veri.xlsx"), [][]interface{}{
		{"Anahtar", "Karşılık"},
		{domain.TokenProjectName, "Deneme"},
	})
	testutil.WriteWorkbook(t, filepath.Join(root, "Evraklar", "ACİL DURUM PLANI.xlsx"), []string{"Plan"}, nil)
	testutil.WriteWorkbook(t, filepath.Join(root, "Evraklar", "RİSK DEĞERLENDİRME FINE KINNEY.xlsx"), []string{"Plan"}, nil)

	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.DefaultConfig()
	cfg.Paths.OutputRoot = filepath.Join(root, "out")
	cfg.Paths.BackupRoot = filepath.Join(root, "yedek")
	proc := &gatedProcessor{release: make(chan struct{})}
	gen := generator.New(&config.RuntimeEnvironment{Config: cfg, WorkDir: root}, generator.Deps{Processor: proc, History: st})

	return New(gen, st, nil, true), proc
}

func do(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestListDocuments(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name     string
		query    string
		status   int
		expected []string
	}{
		{"default method", "", http.StatusOK, []string{"ACİL DURUM PLANI.xlsx"}},
		{"fine kinney", "?method=Fine%20Kinney", http.StatusOK, []string{"ACİL DURUM PLANI.xlsx", "RİSK DEĞERLENDİRME FINE KINNEY.xlsx"}},
		{"invalid", "?method=xyz", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, http.MethodGet, "/api/documents"+tt.query, nil)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.expected == nil {
				return
			}
			var resp struct {
				Documents []string `json:"documents"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expected, resp.Documents)
		})
	}
}

func TestStartRun_OneAtATime(t *testing.T) {
	s, proc := newTestServer(t)

	w := do(s, http.MethodPost, "/api/runs", RunRequest{Documents: []string{"ACİL DURUM PLANI.xlsx"}})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var started struct {
		RunID string `json:"run_id"`
		Total int    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	assert.Equal(t, 1, started.Total)

	w = do(s, http.MethodPost, "/api/runs", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(s, http.MethodGet, "/api/runs/"+started.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var progress StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progress))
	assert.True(t, progress.Busy)

	close(proc.release)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))

	w = do(s, http.MethodGet, "/api/status", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progress))
	assert.False(t, progress.Busy)

	w = do(s, http.MethodGet, "/api/runs/"+started.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var detail store.RunDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Deneme", detail.Project)
	assert.Equal(t, "1/1", detail.Summary())
	require.Len(t, detail.Documents, 1)
	assert.Equal(t, "ACİL DURUM PLANI.xlsx", detail.Documents[0].Name)

	w = do(s, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	w = do(s, http.MethodPost, "/api/runs", RunRequest{Documents: []string{"ACİL DURUM PLANI.xlsx"}})
	assert.Equal(t, http.StatusAccepted, w.Code, "slot released after the batch")
	require.NoError(t, s.Wait(ctx))
}

func TestStartRun_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodPost, "/api/runs", RunRequest{Method: "xyz"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(s, http.MethodGet, "/api/runs/yok", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
