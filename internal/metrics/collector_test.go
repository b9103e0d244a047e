package metrics

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/parse"
	"github.com/gyeh/noharmcheck/internal/report"
)

func sampleReport() *report.Report {
	parsed := map[model.Category]*parse.ParsedFile{
		model.Sectors: parse.File("setores.csv", []byte("FKHOSPITAL,FKSETOR,NOME\n1,1,UTI\n1,2,Enf\n")),
	}
	results := map[model.Category]*report.FileResult{
		model.Sectors: {Status: report.StatusError, Issues: []string{"a", "b"}, Warnings: []string{"w"}, RecordCount: 2},
	}
	return report.Build("NoHarm", results, parsed)
}

func TestRecordReport(t *testing.T) {
	c := NewCollector()
	c.RecordReport(sampleReport())
	c.ObserveValidation(5 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.fileIssues.WithLabelValues("sectors")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fileWarnings.WithLabelValues("sectors")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.records.WithLabelValues("sectors")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.parseDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(c.validationDuration))
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector()
	c.RecordReport(sampleReport())

	path := filepath.Join(t.TempDir(), "noharm.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `noharm_validator_runs_total{status="error"} 1`)
}

func TestHandler(t *testing.T) {
	c := NewCollector()
	c.RecordReport(sampleReport())

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "noharm_validator_file_issues_total"))
}
