package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_AddRows(t *testing.T) {
	r := New()

	r.AddRows("kpi", "art", 10)
	r.AddRows("kpi", "art", 5)
	r.AddRows("kpi", "games", 0)
	r.AddRows("holder", "art", 3)

	assert.Equal(t, 15.0, testutil.ToFloat64(r.rows.WithLabelValues("kpi", "art")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.rows.WithLabelValues("holder", "art")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.rows))
}

func TestRecorder_RunFinished(t *testing.T) {
	r := New()
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	r.RunFinished("warehouse", at, nil)
	r.RunFinished("warehouse", at, errors.New("boom"))
	r.RunFinished("warehouse", at, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues("warehouse", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("warehouse", StatusFailure)))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(r.lastSuccess.WithLabelValues("warehouse")))
}

func TestRecorder_ObserveStep(t *testing.T) {
	r := New()

	r.ObserveStep("timeseries", 2*time.Second)
	r.ObserveStep("timeseries", time.Second)

	count, err := testutil.GatherAndCount(r.Registry(), "ff_warehouse_step_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.AddRows("kpi", "art", 1)
		r.ObserveStep("kpi", time.Second)
		r.RunFinished("warehouse", time.Now(), nil)
	})
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.Push(context.Background(), "http://localhost:9091", "warehouse"))
}

func TestRecorder_Push(t *testing.T) {
	var (
		method string
		path   string
		body   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		method = req.Method
		path = req.URL.Path
		data, _ := io.ReadAll(req.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := New()
	r.AddRows("dedup", "art", 7)

	err := r.Push(context.Background(), server.URL, "warehouse")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/warehouse", path)
	assert.NotEmpty(t, body)
}

func TestRecorder_PushFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := New().Push(context.Background(), server.URL, "warehouse")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to push metrics"))
}
