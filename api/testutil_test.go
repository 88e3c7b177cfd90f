package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fyerfyer/legal-summary/api/handler"
	"github.com/fyerfyer/legal-summary/internal/cache"
	"github.com/fyerfyer/legal-summary/internal/database"
	"github.com/fyerfyer/legal-summary/internal/entity"
	"github.com/fyerfyer/legal-summary/internal/evaluation"
	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/fyerfyer/legal-summary/internal/repository"
	"github.com/fyerfyer/legal-summary/internal/services"
	"github.com/fyerfyer/legal-summary/internal/summarizer"
	"github.com/fyerfyer/legal-summary/pkg/storage"
	"github.com/fyerfyer/legal-summary/pkg/taskqueue"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const judgmentText = "IN THE SUPREME COURT OF INDIA. The appellant was convicted under Section 302 of the Indian Penal Code. " +
	"The trial court relied on the confession recorded by the police. " +
	"Justice Ramanna observed that the confession was not voluntary. " +
	"The High Court affirmed the conviction without examining the confession. " +
	"We find that the prosecution failed to prove the chain of circumstances beyond reasonable doubt. " +
	"Reliance was placed on AIR 1975 SC 123 and the Evidence Act, 1872. " +
	"The appeal is allowed and the appellant is acquitted."

const shortText = "The appeal is dismissed. No order as to costs."

// testEnv 测试用的完整服务栈
type testEnv struct {
	Router  *gin.Engine
	Storage storage.Storage
	Queue   *taskqueue.RedisQueue
}

// envOption 调整测试环境
type envOption func(*envConfig)

type envConfig struct {
	async bool
}

// withAsync 使用miniredis启用任务队列
func withAsync() envOption {
	return func(c *envConfig) { c.async = true }
}

func writeCaseFile(t *testing.T, base, rel, content string) {
	t.Helper()
	p := filepath.Join(base, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

func setupTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	dataDir := t.TempDir()
	writeCaseFile(t, dataDir, "metadata/metadata1.txt", "Case 1: State v. Ram")
	writeCaseFile(t, dataDir, "Semantic/Semantic-Chunker-1.txt", judgmentText+"\n---\n"+shortText)
	writeCaseFile(t, dataDir, "TokenWise/Token-Chunker-1.txt", judgmentText+"\n---\n"+shortText)
	writeCaseFile(t, dataDir, "Recursive/Recursive-Chunker-1.txt", judgmentText)
	writeCaseFile(t, dataDir, "TokenWise/Token-Chunker-2.txt", shortText)
	writeCaseFile(t, dataDir, "Semantic/Semantic-Chunker-3.txt", "A writ petition challenged the jurisdiction of the tribunal. The petition was dismissed.")

	l, err := loader.New(dataDir)
	require.NoError(t, err)

	dsn := fmt.Sprintf("file:api_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	fileStorage, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	cacheService, err := cache.NewCache(cache.Config{
		Type:            "memory",
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Minute,
	})
	require.NoError(t, err)

	sum := summarizer.New()
	extractor := entity.NewExtractor()
	evaluator := evaluation.NewEvaluator(evaluation.WithMode(evaluation.ModeApprox))

	comparison := services.NewComparisonService(l, sum, evaluator, services.WithComparisonCache(cacheService))
	analysis := services.NewAnalysisService(l, sum, extractor, comparison, services.WithAnalysisStorage(fileStorage))
	summary := services.NewSummaryService(sum, extractor,
		services.WithSummaryStorage(fileStorage),
		services.WithSummaryRepository(repository.NewSummaryRepository(db)),
		services.WithSummaryCache(cacheService, time.Hour),
	)

	evalOpts := []services.EvaluationOption{
		services.WithEvaluationRepository(repository.NewEvaluationRepository(db)),
	}
	env := &testEnv{Storage: fileStorage}
	if cfg.async {
		mr := miniredis.RunT(t)
		q, err := taskqueue.NewRedisQueue(&taskqueue.Config{
			RedisAddr:  mr.Addr(),
			RetryLimit: 1,
			RetryDelay: time.Second,
		})
		require.NoError(t, err)
		t.Cleanup(func() { q.Close() })
		env.Queue = q
		evalOpts = append(evalOpts, services.WithEvaluationQueue(q))
	}
	evalService := services.NewEvaluationService(comparison, evalOpts...)

	env.Router = SetupRouter(Handlers{
		Health:     handler.NewHealthHandler(analysis, comparison, evalService),
		Summary:    handler.NewSummaryHandler(summary),
		Case:       handler.NewCaseHandler(analysis, comparison),
		Evaluation: handler.NewEvaluationHandler(evalService),
	})
	return env
}

// apiResponse 通用响应的解码结构
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	TraceID string          `json:"trace_id"`
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return e.do(t, method, path, body, "application/json")
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data interface{}) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if data != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

