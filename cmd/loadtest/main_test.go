package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(5), percentile(sorted, 50))
	assert.Equal(t, time.Duration(10), percentile(sorted, 99))
	assert.Equal(t, time.Duration(1), percentile(sorted, 0))
	assert.Zero(t, percentile(nil, 50))
}

func TestParseSkillSets(t *testing.T) {
	got := parseSkillSets("python, sql; go ;")
	assert.Equal(t, [][]string{{"python", "sql"}, {"go"}, nil}, got)
}

func TestRecordRequestAndReport(t *testing.T) {
	stats := NewStats()
	stats.RecordRequest(10*time.Millisecond, http.StatusOK, 3, nil)
	stats.RecordRequest(20*time.Millisecond, http.StatusOK, 0, nil)
	stats.RecordRequest(5*time.Millisecond, http.StatusBadRequest, 0, nil)
	stats.RecordRequest(0, 0, 0, errors.New("refused"))

	var buf bytes.Buffer
	ok := printReport(&buf, stats, time.Second)
	require.True(t, ok)

	out := buf.String()
	assert.Contains(t, out, "Total Requests:  4")
	assert.Contains(t, out, "Successful:      2")
	assert.Contains(t, out, "Empty Results:   1")
	assert.Contains(t, out, "Errors:          2")
	assert.Contains(t, out, "  200: 2")
	assert.Contains(t, out, "  400: 1")
}

func TestPrintReportWithoutRequests(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, printReport(&buf, NewStats(), time.Second))
	assert.Contains(t, buf.String(), "WARNING")
}

func TestPredictCountsRecommendedJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"recommended_jobs":[{"_id":"a"},{"_id":"b"}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	status, results, err := predict(t.Context(), srv.Client(), srv.URL, []byte(`{"skills":["go"]}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, results)
}
