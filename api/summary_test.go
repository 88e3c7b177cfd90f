package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/fyerfyer/legal-summary/api/model"
	"github.com/fyerfyer/legal-summary/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadBody 构造multipart上传请求体
func uploadBody(t *testing.T, filename, content, email string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	if email != "" {
		require.NoError(t, writer.WriteField("user_email", email))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/health", nil, "")
	requireStatus(t, w, http.StatusOK)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	var health model.HealthResponse
	decodeResponse(t, w, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "approx", health.EvalMode)
	assert.False(t, health.AsyncEnabled)
	assert.Equal(t, 3, health.Cases)
}

func TestSummarizeText(t *testing.T) {
	env := setupTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/summarize/text", map[string]string{"text": judgmentText})
	requireStatus(t, w, http.StatusOK)

	var result services.TextSummary
	resp := decodeResponse(t, w, &result)
	assert.Equal(t, 0, resp.Code)
	assert.NotEmpty(t, result.Summary.Overview)
	assert.Equal(t, []string{"Justice Ramanna"}, result.Entities.Judges)

	t.Run("缺少文本", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/api/summarize/text", map[string]string{})
		requireStatus(t, w, http.StatusBadRequest)
		resp := decodeResponse(t, w, nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.NotEmpty(t, resp.TraceID)
	})

	t.Run("只有空白", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/api/summarize/text", map[string]string{"text": "   "})
		requireStatus(t, w, http.StatusBadRequest)
	})

	t.Run("沿用请求中的追踪ID", func(t *testing.T) {
		req := strings.NewReader(`{"text":""}`)
		w := env.do(t, http.MethodPost, "/api/summarize/text", req, "application/json")
		requireStatus(t, w, http.StatusBadRequest)
		assert.NotEmpty(t, decodeResponse(t, w, nil).TraceID)
	})
}

func TestSummaryLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	body, ct := uploadBody(t, "state_v_ram.txt", judgmentText, "clerk@example.com")
	w := env.do(t, http.MethodPost, "/api/summarize/pdf", body, ct)
	requireStatus(t, w, http.StatusOK)

	var uploaded services.UploadSummary
	decodeResponse(t, w, &uploaded)
	require.NotEmpty(t, uploaded.ID)
	assert.Equal(t, "state_v_ram.txt", uploaded.CaseName)
	assert.Contains(t, uploaded.Citations, "AIR 1975 SC 123")

	// 列表
	w = env.do(t, http.MethodGet, "/api/summaries?page=1&page_size=5&user_email=clerk@example.com", nil, "")
	requireStatus(t, w, http.StatusOK)
	var list model.SummaryListResponse
	decodeResponse(t, w, &list)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 5, list.PageSize)
	require.Len(t, list.Summaries, 1)
	assert.Equal(t, uploaded.ID, list.Summaries[0].ID)

	// 详情
	w = env.do(t, http.MethodGet, "/api/summaries/"+uploaded.ID, nil, "")
	requireStatus(t, w, http.StatusOK)

	// 下载摘要文件
	w = env.do(t, http.MethodGet, "/api/summaries/"+uploaded.ID+"/download", nil, "")
	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "state_v_ram.txt_summary.json")
	var stored services.UploadSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, uploaded.Summary, stored.Summary)

	// 删除
	w = env.do(t, http.MethodDelete, "/api/summaries/"+uploaded.ID, nil, "")
	requireStatus(t, w, http.StatusOK)
	var deleted model.DeleteResponse
	decodeResponse(t, w, &deleted)
	assert.True(t, deleted.Success)

	w = env.do(t, http.MethodGet, "/api/summaries/"+uploaded.ID, nil, "")
	requireStatus(t, w, http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, decodeResponse(t, w, nil).Code)
}

func TestSummarizeUpload_Invalid(t *testing.T) {
	env := setupTestEnv(t)

	body, ct := uploadBody(t, "judgment.docx", "content", "")
	w := env.do(t, http.MethodPost, "/api/summarize/pdf", body, ct)
	requireStatus(t, w, http.StatusBadRequest)

	body, ct = uploadBody(t, "judgment.txt", judgmentText, "not-an-email")
	w = env.do(t, http.MethodPost, "/api/summarize/pdf", body, ct)
	requireStatus(t, w, http.StatusBadRequest)

	// 没有文件
	w = env.do(t, http.MethodPost, "/api/summarize/pdf", strings.NewReader(""), "multipart/form-data; boundary=x")
	requireStatus(t, w, http.StatusBadRequest)

	body, ct = uploadBody(t, "blank.txt", "   ", "")
	w = env.do(t, http.MethodPost, "/api/summarize/pdf", body, ct)
	requireStatus(t, w, http.StatusBadRequest)
}
