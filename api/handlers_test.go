/*
handlers_test.go - HTTP tests for the session and calculator endpoints

Tests run the full router (middleware included) against the in-memory
session store.
*/
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pay-structure/engine"
	"github.com/warp/pay-structure/factory"
	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/metrics"
	"github.com/warp/pay-structure/point"
	"github.com/warp/pay-structure/store"
	"go.uber.org/zap"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	h := NewHandler(store.NewMemory(zap.NewNop()), engine.DefaultConfig(), metrics.New(), zap.NewNop())
	return &testServer{t: t, router: NewRouter(h, Options{AllowedOrigins: []string{"http://localhost:5173"}})}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type sessionBody struct {
	ID       string            `json:"id"`
	Method   grading.Method    `json:"method"`
	Template string            `json:"template"`
	Config   engine.Config     `json:"config"`
	Factors  point.FactorMap   `json:"factors"`
	Jobs     []grading.Job     `json:"jobs"`
	Grades   []grading.Grade   `json:"grades"`
	Warnings []grading.Warning `json:"warnings"`
}

func (s *testServer) createSession(body any) sessionBody {
	s.t.Helper()
	rec := s.do("POST", "/api/sessions", body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[sessionBody](s.t, rec)
}

// =============================================================================
// CALCULATORS
// =============================================================================

func TestCalcRange(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do("POST", "/api/calc/range", RangeRequest{Mid: 10_000_000, Spread: 50})

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[grading.Range](t, rec)
	assert.Equal(t, grading.Range{Min: 8_000_000, Max: 12_000_000}, got)
}

func TestCalcRange_Validation(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do("POST", "/api/calc/range", RangeRequest{Mid: 10_000_000, Spread: 150})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", resp.Code)
	assert.Equal(t, map[string]any{"spread": "lte"}, resp.Details)
}

func TestCalcRange_BadJSON(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do("POST", "/api/calc/range", `{"mid":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", decodeBody[ErrorResponse](t, rec).Code)
}

func TestCalcScore(t *testing.T) {
	srv := newTestServer(t)

	// GIVEN: S1 education and 3-5 years experience plus an unknown factor
	rec := srv.do("POST", "/api/calc/score", map[string]any{
		"factors": map[string]int{"education": 3, "experience": 3, "languages": 2},
	})

	// THEN: 150 + 100, and the unknown key is reported
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[ScoreResponse](t, rec)
	assert.Equal(t, 250, got.Score)
	assert.Equal(t, []string{"languages"}, got.Unmatched)
}

func TestCalcScore_InvalidFactorMap(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do("POST", "/api/calc/score", map[string]any{
		"factors":    map[string]int{"education": 1},
		"factor_map": map[string]any{"version": 1, "factors": map[string]any{"education": map[string]any{"id": "schooling"}}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalcGenerateAndPreview(t *testing.T) {
	srv := newTestServer(t)
	jobs := []grading.Job{
		{ID: 1, Title: "Head", Score: 1},
		{ID: 2, Title: "Lead", Score: 2},
		{ID: 3, Title: "Staff", Score: 3},
		{ID: 4, Title: "Junior", Score: 4},
	}
	req := PartitionRequest{Method: "ranking", Param: 2, Jobs: jobs}

	// WHEN: Previewing and generating the same request
	preview := srv.do("POST", "/api/calc/preview", req)
	generate := srv.do("POST", "/api/calc/generate", req)

	// THEN: Both group the jobs the same way
	require.Equal(t, http.StatusOK, preview.Code)
	require.Equal(t, http.StatusOK, generate.Code)
	rows := decodeBody[PreviewResponse](t, preview).Rows
	grades := decodeBody[StructureResponse](t, generate).Grades
	require.Len(t, rows, 2)
	require.Len(t, grades, 2)
	assert.Equal(t, []string{"Junior", "Staff"}, grades[0].JobTitles)
	assert.Equal(t, rows[1].MemberTitles, grades[1].JobTitles)
}

func TestCalcGenerate_Rejects(t *testing.T) {
	srv := newTestServer(t)
	jobs := []grading.Job{{ID: 1, Title: "Solo", Score: 1}}

	rec := srv.do("POST", "/api/calc/generate", PartitionRequest{Method: "hay", Param: 2, Jobs: jobs})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do("POST", "/api/calc/generate", PartitionRequest{Method: "point", Param: 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalcRecompute(t *testing.T) {
	srv := newTestServer(t)
	grades := []GradeInput{
		{ID: 2, Mid: 11_000_000, Spread: 50},
		{ID: 1, Name: "Entry", Mid: 10_000_000, Spread: 50},
	}

	rec := srv.do("POST", "/api/calc/recompute", RecomputeRequest{Grades: grades})

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[StructureResponse](t, rec).Grades
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID, "grades come back in ID order")
	assert.Equal(t, "Entry", got[0].Name)
	assert.Equal(t, "Grade 2", got[1].Name)
	assert.Equal(t, int64(8_000_000), got[0].Min)
	assert.Equal(t, int64(12_000_000), got[0].Max)
	assert.True(t, got[0].Overlap.IsZero())
	assert.True(t, got[1].Overlap.IsPositive())
}

func TestCalcRecompute_Rejects(t *testing.T) {
	srv := newTestServer(t)

	// Negative spread would put min above mid.
	rec := srv.do("POST", "/api/calc/recompute", RecomputeRequest{Grades: []GradeInput{
		{ID: 1, Mid: 10_000_000, Spread: 50},
		{ID: 2, Mid: 11_000_000, Spread: -20},
	}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", resp.Code)
	assert.Equal(t, map[string]any{"grades[1].spread": "gte"}, resp.Details)

	rec = srv.do("POST", "/api/calc/recompute", RecomputeRequest{Grades: []GradeInput{{ID: 1, Mid: 0, Spread: 50}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A gap in the IDs leaves overlap without a neighbour.
	rec = srv.do("POST", "/api/calc/recompute", RecomputeRequest{Grades: []GradeInput{
		{ID: 1, Mid: 10_000_000, Spread: 50},
		{ID: 3, Mid: 11_000_000, Spread: 50},
	}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeBody[ErrorResponse](t, rec).Code)
}

// =============================================================================
// TEMPLATES AND METHODS
// =============================================================================

func TestListTemplates(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do("GET", "/api/templates", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[[]TemplateDTO](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "startup", got[0].ID)
	assert.Equal(t, 7, got[0].JobCount)
	assert.Equal(t, grading.MethodPoint, got[1].Method)
	assert.Equal(t, 18, got[1].JobCount)
}

func TestListMethods(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do("GET", "/api/methods", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []grading.Method{grading.MethodPoint, grading.MethodRanking}, decodeBody[[]grading.Method](t, rec))
}

// =============================================================================
// SESSIONS
// =============================================================================

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// GIVEN: A session created from the corporate template
	sess := srv.createSession(CreateSessionRequest{TemplateID: "corporate", CompanyName: "PT Contoh"})
	require.NotEmpty(t, sess.ID)
	assert.Len(t, sess.Jobs, 18)
	assert.Equal(t, grading.MethodPoint, sess.Method)
	assert.Equal(t, "PT Contoh", sess.Config.CompanyName)
	base := "/api/sessions/" + sess.ID

	// WHEN: Generating at interval 100
	rec := srv.do("POST", base+"/grades/generate", GenerateRequest{Param: 100})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	structure := decodeBody[StructureResponse](t, rec)
	require.Len(t, structure.Grades, 10)
	assert.Equal(t, "101 - 200", structure.Grades[0].RangeLabel)

	// AND: Editing the lowest midpoint
	rec = srv.do("PATCH", base+"/grades/1", map[string]any{"mid": 7_000_000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edited := decodeBody[StructureResponse](t, rec)
	assert.Equal(t, int64(7_000_000), edited.Grades[0].Mid)

	// THEN: The edit is persisted
	rec = srv.do("GET", base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7_000_000), decodeBody[sessionBody](t, rec).Grades[0].Mid)

	// AND: The session is listed
	rec = srv.do("GET", "/api/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summaries := decodeBody[[]engine.Summary](t, rec)
	require.Len(t, summaries, 1)
	assert.Equal(t, 10, summaries[0].GradeCount)

	// AND: Deleting it makes it unreachable
	rec = srv.do("DELETE", base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do("GET", base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[ErrorResponse](t, rec).Code)
}

func TestCreateSession_Defaults(t *testing.T) {
	srv := newTestServer(t)

	sess := srv.createSession(nil)

	assert.Equal(t, grading.MethodPoint, sess.Method)
	assert.Empty(t, sess.Jobs)
	assert.Equal(t, engine.DefaultBaseWage, sess.Config.BaseWage)
	assert.Equal(t, 1, sess.Factors.Version)
}

func TestCreateSession_Rejects(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do("POST", "/api/sessions", CreateSessionRequest{TemplateID: "government"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do("POST", "/api/sessions", CreateSessionRequest{Method: "hay"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", decodeBody[ErrorResponse](t, rec).Code)
}

func TestEditGrade_Errors(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.createSession(CreateSessionRequest{TemplateID: "startup"})
	base := "/api/sessions/" + sess.ID
	require.Equal(t, http.StatusOK, srv.do("POST", base+"/grades/generate", GenerateRequest{Param: 3}).Code)

	assert.Equal(t, http.StatusNotFound, srv.do("PATCH", base+"/grades/99", map[string]any{"spread": 40}).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do("PATCH", base+"/grades/one", map[string]any{"spread": 40}).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do("PATCH", base+"/grades/1", map[string]any{"mid": -5}).Code)
}

func TestGenerate_NoJobs(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.createSession(nil)

	rec := srv.do("POST", "/api/sessions/"+sess.ID+"/grades/generate", GenerateRequest{Param: 3})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeBody[ErrorResponse](t, rec).Code)
}

func TestUpdateConfig(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.createSession(nil)
	path := "/api/sessions/" + sess.ID + "/config"

	rec := srv.do("PUT", path, ConfigRequest{BaseWage: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do("PUT", path, ConfigRequest{
		CompanyName: "PT Maju",
		BaseWage:    6_000_000,
		Anchors:     AnchorsDTO{MinMidpoint: 7_000_000, MaxMidpoint: 50_000_000},
		Approver:    SignatoryDTO{Name: "Budi", Title: "CEO"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[sessionBody](t, rec)
	assert.Equal(t, int64(6_000_000), got.Config.BaseWage)
	assert.Equal(t, "Budi", got.Config.Approver.Name)
}

func TestTemplateResetAndMethod(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.createSession(nil)
	base := "/api/sessions/" + sess.ID

	// GIVEN: The corporate template loaded into an empty session
	rec := srv.do("POST", base+"/template", TemplateRequest{TemplateID: "corporate"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[sessionBody](t, rec).Jobs, 18)

	// WHEN: Switching to ranking
	rec = srv.do("PUT", base+"/method", MethodRequest{Method: "ranking"})
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN: The highest scored job becomes rank 1
	got := decodeBody[sessionBody](t, rec)
	assert.Equal(t, grading.MethodRanking, got.Method)
	assert.Equal(t, 1, got.Jobs[0].Score)

	// AND: Reset empties the session
	rec = srv.do("POST", base+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[sessionBody](t, rec).Jobs)

	assert.Equal(t, http.StatusBadRequest, srv.do("POST", base+"/template", TemplateRequest{TemplateID: "nope"}).Code)
	assert.Equal(t, http.StatusNotFound, srv.do("POST", "/api/sessions/missing/reset", nil).Code)
}

// =============================================================================
// JOBS
// =============================================================================

func TestJobEndpoints(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.createSession(CreateSessionRequest{TemplateID: "startup"})
	base := "/api/sessions/" + sess.ID

	// WHEN: Adding a job without a rank
	rec := srv.do("POST", base+"/jobs", JobRequest{Title: "Intern"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	job := decodeBody[grading.Job](t, rec)

	// THEN: It gets the next free ID and rank
	assert.Equal(t, 8, job.ID)
	assert.Equal(t, 8, job.Score)

	// AND: It can be renamed and removed
	rec = srv.do("PATCH", base+"/jobs/8", map[string]any{"title": "Trainee"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Trainee", decodeBody[grading.Job](t, rec).Title)

	assert.Equal(t, http.StatusBadRequest, srv.do("PATCH", base+"/jobs/8", map[string]any{"rank": 0}).Code)
	assert.Equal(t, http.StatusNotFound, srv.do("PATCH", base+"/jobs/99", map[string]any{"title": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do("DELETE", base+"/jobs/abc", nil).Code)

	assert.Equal(t, http.StatusNoContent, srv.do("DELETE", base+"/jobs/8", nil).Code)
	assert.Equal(t, http.StatusNotFound, srv.do("DELETE", base+"/jobs/8", nil).Code)
}

func TestAddJob_PointScore(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.createSession(nil)

	rec := srv.do("POST", "/api/sessions/"+sess.ID+"/jobs", JobRequest{
		Title:   "Analyst",
		Factors: map[string]int{"education": 3, "experience": 3, "complexity": 1, "responsibility": 1},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 350, decodeBody[grading.Job](t, rec).Score)
}

// =============================================================================
// FACTORS
// =============================================================================

const skillFactorsYAML = `
factors:
  - id: skill
    label: Skill
    options:
      - {value: 1, label: Basic, score: 10}
      - {value: 2, label: Expert, score: 40}
`

func TestFactorEndpoints(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.createSession(CreateSessionRequest{TemplateID: "corporate"})
	base := "/api/sessions/" + sess.ID

	// GIVEN: The default factor file
	rec := srv.do("GET", base+"/factors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	file := decodeBody[factory.FactorFile](t, rec)
	assert.Equal(t, 1, file.Version)
	require.Len(t, file.Factors, 4)
	assert.Equal(t, "education", file.Factors[0].ID)

	rec = srv.do("GET", base+"/factors?format=yaml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "id: education")

	// WHEN: Uploading a YAML factor file
	req := httptest.NewRequest("PUT", base+"/factors", strings.NewReader(skillFactorsYAML))
	req.Header.Set("Content-Type", "application/yaml")
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	// THEN: The version is bumped and old selections no longer score
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[sessionBody](t, rec)
	assert.Equal(t, 2, got.Factors.Version)
	assert.Equal(t, 0, got.Jobs[0].Score)

	// AND: Both versions are in the history
	rec = srv.do("GET", base+"/factors/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decodeBody[[]point.FactorMap](t, rec)
	require.Len(t, history, 2)
	assert.Equal(t, []string{"skill"}, history[1].Keys())
}

func TestFactorEditEndpoints(t *testing.T) {
	// GIVEN: the corporate structure at interval 100
	srv := newTestServer(t)
	sess := srv.createSession(CreateSessionRequest{TemplateID: "corporate"})
	base := "/api/sessions/" + sess.ID
	require.Equal(t, http.StatusOK, srv.do("POST", base+"/grades/generate", GenerateRequest{Param: 100}).Code)

	// WHEN: a factor is added
	rec := srv.do("PUT", base+"/factors/risk", FactorRequest{Label: "Risk"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[sessionBody](t, rec)
	assert.Equal(t, 2, got.Factors.Version)
	require.Len(t, got.Factors.Factors["risk"].Options, 1)

	// AND: a level is added to it
	rec = srv.do("POST", base+"/factors/risk/options", OptionRequest{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	opt, ok := decodeBody[sessionBody](t, rec).Factors.Factors["risk"].Option(2)
	require.True(t, ok)
	assert.Equal(t, point.DefaultOptionLabel, opt.Label)

	// AND: the first education level is worth more
	rec = srv.do("PATCH", base+"/factors/education/options/1", map[string]any{"score": 80})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got = decodeBody[sessionBody](t, rec)

	// THEN: the driver is rescored and the structure rebuilt
	assert.Equal(t, 200, got.Jobs[17].Score)
	require.Len(t, got.Grades, 10)
	assert.Contains(t, got.Grades[0].JobTitles, "Driver / Messenger")

	// WHEN: the level, then the factor is removed, with a rename in between
	require.Equal(t, http.StatusOK, srv.do("DELETE", base+"/factors/risk/options/1", nil).Code)
	rec = srv.do("PUT", base+"/factors/risk", FactorRequest{Label: "Operational risk"})
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeBody[sessionBody](t, rec)
	assert.Equal(t, "Operational risk", got.Factors.Factors["risk"].Label)
	assert.Len(t, got.Factors.Factors["risk"].Options, 1)
	require.Equal(t, http.StatusOK, srv.do("DELETE", base+"/factors/risk", nil).Code)

	// THEN: every edit is a version in the history
	rec = srv.do("GET", base+"/factors/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decodeBody[[]point.FactorMap](t, rec)
	require.Len(t, history, 7)
	assert.NotContains(t, history[6].Factors, "risk")
}

func TestFactorEditEndpoints_Rejects(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.createSession(nil)
	base := "/api/sessions/" + sess.ID + "/factors"

	assert.Equal(t, http.StatusNotFound, srv.do("PATCH", base+"/nope/options/1", map[string]any{"score": 1}).Code)
	assert.Equal(t, http.StatusNotFound, srv.do("PATCH", base+"/education/options/9", map[string]any{"score": 1}).Code)
	assert.Equal(t, http.StatusNotFound, srv.do("DELETE", base+"/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, srv.do("POST", base+"/nope/options", OptionRequest{}).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do("PATCH", base+"/education/options/one", map[string]any{"score": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do("PATCH", base+"/education/options/1", map[string]any{"score": -1}).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do("PUT", base+"/risk", FactorRequest{}).Code)

	// Nothing was stored.
	rec := srv.do("GET", "/api/sessions/"+sess.ID+"/factors/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]point.FactorMap](t, rec), 1)
}

func TestUpdateFactors_Rejects(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.createSession(nil)
	path := "/api/sessions/" + sess.ID + "/factors"

	rec := srv.do("PUT", path, `{"factors": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do("PUT", path, `{"factors": [{"id": "skill"}, {"id": "skill"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The stored map is untouched.
	rec = srv.do("GET", path, nil)
	assert.Equal(t, 1, decodeBody[factory.FactorFile](t, rec).Version)
}

// =============================================================================
// STRUCTURE VIEWS
// =============================================================================

func TestPreviewAndSuggestion(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.createSession(CreateSessionRequest{TemplateID: "corporate"})
	base := "/api/sessions/" + sess.ID

	rec := srv.do("GET", base+"/suggestion", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	suggestion := decodeBody[engine.Suggestion](t, rec)
	assert.Equal(t, 100, suggestion.Param)

	// Without a parameter the suggestion is used.
	rec = srv.do("GET", base+"/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	preview := decodeBody[PreviewResponse](t, rec)
	assert.Equal(t, 100, preview.Param)
	assert.Len(t, preview.Rows, 10)

	rec = srv.do("GET", base+"/preview?param=50", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, decodeBody[PreviewResponse](t, rec).Param)

	assert.Equal(t, http.StatusBadRequest, srv.do("GET", base+"/preview?param=wide", nil).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do("GET", base+"/preview?param=0", nil).Code)
}

func TestDiagnosticsAndExport(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.createSession(CreateSessionRequest{TemplateID: "corporate"})
	base := "/api/sessions/" + sess.ID

	rec := srv.do("GET", base+"/diagnostics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	require.Equal(t, http.StatusOK, srv.do("POST", base+"/grades/generate", GenerateRequest{Param: 100}).Code)

	rec = srv.do("GET", base+"/diagnostics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody[[]grading.Warning](t, rec))

	rec = srv.do("GET", base+"/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), sess.ID)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

// =============================================================================
// AMBIENT ROUTES
// =============================================================================

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.createSession(CreateSessionRequest{TemplateID: "startup"})
	require.Equal(t, http.StatusOK, srv.do("POST", "/api/sessions/"+sess.ID+"/grades/generate", GenerateRequest{Param: 4}).Code)

	rec := srv.do("GET", "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `paystructure_structures_generated_total{method="ranking"} 1`)
	assert.Contains(t, body, `route="/api/sessions/{id}/grades/generate"`)
}

func TestHealthAndCORS(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
