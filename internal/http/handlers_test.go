package http

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/LiangquanLi930/weeklybot/internal/chain"
    "github.com/LiangquanLi930/weeklybot/internal/config"
    "github.com/LiangquanLi930/weeklybot/internal/domain"
    "github.com/LiangquanLi930/weeklybot/internal/repo"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

type stubService struct {
    report    domain.Report
    reportErr error
    qa        chain.QAOutput
    qaErr     error
    lastRun   *repo.LastRun
}

func (s *stubService) GenerateReport(context.Context) (domain.Report, error) {
    return s.report, s.reportErr
}

func (s *stubService) Ask(context.Context, string) (chain.QAOutput, error) {
    return s.qa, s.qaErr
}

func (s *stubService) GetLastRun(context.Context) (*repo.LastRun, error) {
    if s.lastRun == nil { return nil, errors.New("no runs") }
    return s.lastRun, nil
}

func testRouter(svc service, initErr error) http.Handler {
    return NewRouter(config.Config{AppEnv: "test"}, zerolog.Nop(), svc, initErr)
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
    t.Helper()
    var rd *strings.Reader
    if body == "" { rd = strings.NewReader("") } else { rd = strings.NewReader(body) }
    req := httptest.NewRequest(method, path, rd)
    if body != "" { req.Header.Set("Content-Type", "application/json") }
    w := httptest.NewRecorder()
    h.ServeHTTP(w, req)
    return w
}

func TestHealthz(t *testing.T) {
    w := doRequest(t, testRouter(&stubService{}, nil), http.MethodGet, "/healthz", "")
    assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateReportOK(t *testing.T) {
    svc := &stubService{report: domain.Report{
        ID:          "abc",
        GeneratedAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
        Summary:     domain.Summary{TotalGitHubActivities: 1, TotalActivities: 1},
        Activities:  []domain.Activity{{Source: domain.SourceGitHub, Content: "commit: r - fix bug"}},
        AIReport:    "summary text",
    }}
    w := doRequest(t, testRouter(svc, nil), http.MethodGet, "/api/generate-report", "")
    require.Equal(t, http.StatusOK, w.Code)

    var body struct {
        Status   string        `json:"status"`
        Report   domain.Report `json:"report"`
        AIReport string        `json:"ai_report"`
    }
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
    assert.Equal(t, "success", body.Status)
    assert.Equal(t, "abc", body.Report.ID)
    assert.Equal(t, "summary text", body.AIReport)
    assert.Equal(t, 1, body.Report.Summary.TotalActivities)
}

func TestGenerateReportServiceNotInitialized(t *testing.T) {
    h := testRouter(nil, errors.New("missing required configuration: JIRA_SERVER"))
    w := doRequest(t, h, http.MethodGet, "/api/generate-report", "")
    assert.Equal(t, http.StatusServiceUnavailable, w.Code)
    assert.Contains(t, w.Body.String(), "JIRA_SERVER")
}

func TestGenerateReportError(t *testing.T) {
    svc := &stubService{reportErr: errors.New("ai report generation: connection refused")}
    w := doRequest(t, testRouter(svc, nil), http.MethodGet, "/api/generate-report", "")
    assert.Equal(t, http.StatusInternalServerError, w.Code)
    assert.Contains(t, w.Body.String(), "connection refused")
}

func TestAsk(t *testing.T) {
    svc := &stubService{qa: chain.QAOutput{Answer: "yes", Confidence: 0.9}}
    w := doRequest(t, testRouter(svc, nil), http.MethodPost, "/api/ask", `{"question": "did we ship?"}`)
    require.Equal(t, http.StatusOK, w.Code)

    var out chain.QAOutput
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
    assert.Equal(t, "yes", out.Answer)
    assert.Equal(t, 0.9, out.Confidence)
}

func TestAskMissingQuestion(t *testing.T) {
    w := doRequest(t, testRouter(&stubService{}, nil), http.MethodPost, "/api/ask", `{}`)
    assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskStructuredOutputViolation(t *testing.T) {
    svc := &stubService{qaErr: &chain.ParseError{Raw: "not json", Reason: "not a JSON object"}}
    w := doRequest(t, testRouter(svc, nil), http.MethodPost, "/api/ask", `{"question": "q"}`)
    assert.Equal(t, http.StatusInternalServerError, w.Code)
    assert.Contains(t, w.Body.String(), "structured output violation")
}

func TestRunNowQueued(t *testing.T) {
    w := doRequest(t, testRouter(&stubService{}, nil), http.MethodPost, "/admin/run", "")
    assert.Equal(t, http.StatusAccepted, w.Code)
    assert.Contains(t, w.Body.String(), "queued")
}

func TestLastRunNoDatabase(t *testing.T) {
    w := doRequest(t, testRouter(&stubService{}, nil), http.MethodGet, "/admin/last-run", "")
    assert.Equal(t, http.StatusInternalServerError, w.Code)
}
