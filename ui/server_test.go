package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"designspace/adapters/excel"
	"designspace/adapters/markdown"
	"designspace/app"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	svc := app.NewMatrixService(markdown.NewRenderer(), markdown.NewHTMLRenderer(), excel.NewWorkbookRenderer())
	return NewServer(svc, app.DefaultMatrixRequest())
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	rec := get(t, newTestServer(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServer_Grid(t *testing.T) {
	rec := get(t, newTestServer(), "/api/grid")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		NValues []int `json:"n_values"`
		EValues []int `json:"e_values"`
		Cells   [][]struct {
			TotalTrials int `json:"total_trials"`
		} `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []int{20, 40, 60, 80, 100}, body.NValues)
	require.Len(t, body.Cells, 5)
	assert.Equal(t, 300, body.Cells[4][4].TotalTrials)
}

func TestServer_GridOverrides(t *testing.T) {
	rec := get(t, newTestServer(), "/api/grid?n=30,45&e=8&k=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		NValues []int `json:"n_values"`
		Cells   [][]struct {
			TotalTrials int `json:"total_trials"`
		} `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []int{30, 45}, body.NValues)
	assert.Equal(t, 80, body.Cells[0][0].TotalTrials)  // 30*8/3
	assert.Equal(t, 120, body.Cells[1][0].TotalTrials) // 45*8/3
}

func TestServer_BadRequests(t *testing.T) {
	s := newTestServer()
	for _, path := range []string{
		"/api/grid?n=abc",
		"/api/grid?e=0",
		"/api/grid?share=1.5",
		"/api/feasibility?k=x",
		"/api/profile/-3",
		"/?target=0",
	} {
		rec := get(t, s, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"code":"INVALID_INPUT"`, path)
	}
}

func TestServer_RejectsOversizedRequests(t *testing.T) {
	s := newTestServer()
	for _, path := range []string{
		"/api/grid?n=4611686018427387905&e=3",
		"/api/profile/2000000000",
		"/api/summary?e=" + strconv.Itoa(app.MaxExposures+1),
		"/api/grid?n=" + strconv.Itoa(app.MaxPopulation+1),
		"/api/grid?n=" + strings.TrimSuffix(strings.Repeat("20,", app.MaxCandidates+1), ","),
		"/report.md?s=1e300",
	} {
		rec := get(t, s, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"code":"INVALID_INPUT"`, path)
	}

	rec := get(t, s, "/api/profile/"+strconv.Itoa(app.MaxExposures))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Feasibility(t *testing.T) {
	rec := get(t, newTestServer(), "/api/feasibility?n=7,100")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"tier":"UNSATISFIABLE"`)
	assert.Contains(t, body, `"tier":"EXACT"`)
	assert.Contains(t, body, "80/20 split not possible")
}

func TestServer_Profile(t *testing.T) {
	rec := get(t, newTestServer(), "/api/profile/12")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Profile struct {
			Mean float64   `json:"mean"`
			PMF  []float64 `json:"pmf"`
		} `json:"profile"`
		Prob float64 `json:"prob_at_least_one"`
		Tier string  `json:"tier"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 3.0, body.Profile.Mean, 1e-9)
	assert.Len(t, body.Profile.PMF, 13)
	assert.InDelta(t, 0.9683, body.Prob, 1e-4)
	assert.Equal(t, "HIGH", body.Tier)
}

func TestServer_Reports(t *testing.T) {
	s := newTestServer()

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<table>")

	rec = get(t, s, "/report.md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "## Minority feasibility")

	rec = get(t, s, "/report.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PK", rec.Body.String()[:2])
}
