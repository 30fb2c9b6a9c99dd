package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"designspace/app"
	"designspace/domain/design"
	"designspace/internal/errors"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "formats": s.matrix.Formats()})
}

// compute evaluates the base request with any query overrides applied. It writes
// the error response itself and returns nil on failure.
func (s *Server) compute(c *gin.Context) *app.MatrixResult {
	req, err := s.requestFromQuery(c)
	if err == nil {
		var result *app.MatrixResult
		if result, err = s.matrix.Compute(c.Request.Context(), req); err == nil {
			return result
		}
	}
	s.writeError(c, err)
	return nil
}

func (s *Server) handleGrid(c *gin.Context) {
	result := s.compute(c)
	if result == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"manifest":     result.Manifest,
		"constants":    result.Grid.Constants,
		"n_values":     result.Grid.NValues,
		"e_values":     result.Grid.EValues,
		"cells":        result.Grid.Cells,
		"max_duration": result.Grid.MaxDuration(),
		"summary":      result.Summary,
	})
}

func (s *Server) handleFeasibility(c *gin.Context) {
	result := s.compute(c)
	if result == nil {
		return
	}
	rows := make([]gin.H, len(result.Feasibility))
	for i, f := range result.Feasibility {
		rows[i] = gin.H{
			"feasibility": f,
			"tier":        f.Tier(),
			"label":       result.View.Rows[i].SubLabel,
		}
	}
	c.JSON(http.StatusOK, gin.H{"manifest": result.Manifest, "rows": rows})
}

func (s *Server) handleSummary(c *gin.Context) {
	result := s.compute(c)
	if result == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"manifest": result.Manifest, "summary": result.Summary})
}

func (s *Server) handleProfile(c *gin.Context) {
	e, err := strconv.Atoi(c.Param("e"))
	if err != nil || e <= 0 {
		s.writeError(c, errors.InvalidInput(fmt.Sprintf("exposures must be a positive integer, got %q", c.Param("e"))))
		return
	}
	req, err := s.requestFromQuery(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	req.EValues = []int{e}
	result, err := s.matrix.Compute(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	profile := result.Profiles[0]
	c.JSON(http.StatusOK, gin.H{
		"profile":           profile,
		"prob_at_least_one": design.ProbAtLeastOne(e, req.Constants.ItemsPerTrial),
		"tier":              result.View.Columns[0].Tier,
	})
}

func (s *Server) handleReportHTML(c *gin.Context) {
	s.renderReport(c, "html", "text/html; charset=utf-8")
}

func (s *Server) handleReportFile(format, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.renderReport(c, format, contentType)
	}
}

func (s *Server) renderReport(c *gin.Context, format, contentType string) {
	result := s.compute(c)
	if result == nil {
		return
	}
	var buf bytes.Buffer
	if err := s.matrix.Render(c.Request.Context(), result, format, &buf); err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// requestFromQuery applies n, e, k, s, share and target query overrides to the base request
func (s *Server) requestFromQuery(c *gin.Context) (app.MatrixRequest, error) {
	req := s.base
	var err error

	if v := c.Query("n"); v != "" {
		if req.NValues, err = parseIntList("n", v); err != nil {
			return req, err
		}
	}
	if v := c.Query("e"); v != "" {
		if req.EValues, err = parseIntList("e", v); err != nil {
			return req, err
		}
	}
	if v := c.Query("k"); v != "" {
		if req.Constants.ItemsPerTrial, err = strconv.Atoi(v); err != nil {
			return req, errors.InvalidInput(fmt.Sprintf("k must be an integer, got %q", v))
		}
	}
	floats := []struct {
		key string
		dst *float64
	}{
		{"s", &req.Constants.SecondsPerTrial},
		{"share", &req.Constants.MinorityShare},
		{"target", &req.Constants.TargetGoodFraction},
	}
	for _, f := range floats {
		if v := c.Query(f.key); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return req, errors.InvalidInput(fmt.Sprintf("%s must be a number, got %q", f.key, v))
			}
			*f.dst = parsed
		}
	}
	return req, nil
}

func parseIntList(name, raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	if len(parts) > app.MaxCandidates {
		return nil, errors.InvalidInput(fmt.Sprintf("%s has %d values, at most %d allowed", name, len(parts), app.MaxCandidates))
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("%s must be a comma-separated list of integers, got %q", name, raw))
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch code {
	case errors.CodeInvalidInput, errors.CodeConfigInvalid:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
