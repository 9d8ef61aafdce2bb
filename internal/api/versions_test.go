package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowledger/internal/repository"
	"flowledger/internal/services"
	"flowledger/pkg/models"
)

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...interface{}) {}
func (noopLogger) Info(msg string, args ...interface{})  {}
func (noopLogger) Error(msg string, args ...interface{}) {}

func newTestAPI() *echo.Echo {
	store := repository.NewMemoryVersionStore()
	svc := services.NewVersioningService(store, noopLogger{})
	e := echo.New()
	NewServer(svc).Register(e.Group("/api/v1"))
	return e
}

func createVersionPayload(description string, changeType models.ChangeType) string {
	payload := map[string]interface{}{
		"change_type": changeType,
		"description": "test change",
		"definition": map[string]interface{}{
			"id":          "wf-1",
			"document_id": "doc-1",
			"name":        "Triage",
			"description": description,
			"steps": []map[string]interface{}{
				{"id": "step-1", "name": "Classify", "type": "agent", "agent": "classifier"},
			},
			"metadata": map[string]interface{}{},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetCurrentVersion(t *testing.T) {
	e := newTestAPI()

	rec := doJSON(e, http.MethodPost, "/api/v1/workflows/wf-1/versions", createVersionPayload("v1", models.ChangeTypeMajor))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.WorkflowVersion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "1.0.0", created.Version)
	assert.True(t, created.IsActive)

	rec = doJSON(e, http.MethodGet, "/api/v1/workflows/wf-1/version", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var current models.CurrentVersion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, "1.0.0", current.Version)
	assert.Equal(t, "Triage", current.Definition.Name)
}

func TestGetCurrentVersionNotFound(t *testing.T) {
	e := newTestAPI()
	rec := doJSON(e, http.MethodGet, "/api/v1/workflows/missing/version", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "problem+json")
}

func TestVersionHistoryAndExport(t *testing.T) {
	e := newTestAPI()

	require.Equal(t, http.StatusCreated,
		doJSON(e, http.MethodPost, "/api/v1/workflows/wf-1/versions", createVersionPayload("v1", models.ChangeTypeMajor)).Code)
	require.Equal(t, http.StatusCreated,
		doJSON(e, http.MethodPost, "/api/v1/workflows/wf-1/versions", createVersionPayload("v2", models.ChangeTypeMinor)).Code)

	rec := doJSON(e, http.MethodGet, "/api/v1/workflows/wf-1/versions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var history []models.WorkflowVersion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.Equal(t, "1.1.0", history[0].Version)
	assert.Equal(t, "1.0.0", history[1].Version)

	rec = doJSON(e, http.MethodGet, "/api/v1/workflows/wf-1/versions/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var exported []models.WorkflowVersion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exported))
	assert.Len(t, exported, 2)
}

func TestCompareVersionsEndpoint(t *testing.T) {
	e := newTestAPI()

	require.Equal(t, http.StatusCreated,
		doJSON(e, http.MethodPost, "/api/v1/workflows/wf-1/versions", createVersionPayload("v1", models.ChangeTypeMajor)).Code)
	require.Equal(t, http.StatusCreated,
		doJSON(e, http.MethodPost, "/api/v1/workflows/wf-1/versions", createVersionPayload("v2", models.ChangeTypeMinor)).Code)

	rec := doJSON(e, http.MethodGet, "/api/v1/workflows/wf-1/versions/compare?from=1.0.0&to=1.1.0", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ComparisonResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "description", result.Changes[0].Path)
	assert.Equal(t, models.CompatibilityWarning, result.Compatibility)

	// Unknown version -> 404
	rec = doJSON(e, http.MethodGet, "/api/v1/workflows/wf-1/versions/compare?from=1.0.0&to=9.9.9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Missing params -> 400
	rec = doJSON(e, http.MethodGet, "/api/v1/workflows/wf-1/versions/compare", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRollbackEndpoint(t *testing.T) {
	e := newTestAPI()

	require.Equal(t, http.StatusCreated,
		doJSON(e, http.MethodPost, "/api/v1/workflows/wf-1/versions", createVersionPayload("v1", models.ChangeTypeMajor)).Code)
	require.Equal(t, http.StatusCreated,
		doJSON(e, http.MethodPost, "/api/v1/workflows/wf-1/versions", createVersionPayload("v2", models.ChangeTypeMinor)).Code)

	body := `{"target_version": "1.0.0", "reason": "regression"}`
	rec := doJSON(e, http.MethodPost, "/api/v1/workflows/wf-1/rollback", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var def models.WorkflowDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &def))
	assert.Equal(t, "v1", def.Description)

	rec = doJSON(e, http.MethodGet, "/api/v1/workflows/wf-1/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var current models.CurrentVersion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, "1.1.1", current.Version)

	// Unknown target -> 404
	rec = doJSON(e, http.MethodPost, "/api/v1/workflows/wf-1/rollback", `{"target_version": "8.0.0", "reason": "x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateVersionValidation(t *testing.T) {
	e := newTestAPI()

	// Missing change_type.
	payload := `{"definition": {"id": "wf-1", "name": "Triage", "steps": [], "metadata": {}}}`
	rec := doJSON(e, http.MethodPost, "/api/v1/workflows/wf-1/versions", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Path and body disagree on the workflow id.
	mismatched := strings.Replace(createVersionPayload("v1", models.ChangeTypeMajor), `"id":"wf-1"`, `"id":"wf-2"`, 1)
	rec = doJSON(e, http.MethodPost, "/api/v1/workflows/wf-1/versions", mismatched)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestHandleHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	HandleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "flowledger", status.Service)
}
