package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"care-advisor/internal/models"
	"care-advisor/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.txt")
	content := "# regression set\npatients keep missing appointments\n\n  families want updates  \npatients keep missing appointments\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	queries, err := readQueries(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"patients keep missing appointments", "families want updates"}, queries)

	_, err = readQueries(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestBatchState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	state, err := loadBatchState(path)
	require.NoError(t, err)
	assert.Empty(t, state.Processed)

	hash := queryHash("waiting room crowding")
	state.Processed[hash] = processedQuery{Hash: hash, ProcessedAt: time.Now().UTC()}
	require.NoError(t, saveBatchState(path, state))

	reloaded, err := loadBatchState(path)
	require.NoError(t, err)
	assert.Contains(t, reloaded.Processed, hash)

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	_, err = loadBatchState(path)
	assert.Error(t, err)
}

func TestBatchState_NoPath(t *testing.T) {
	state, err := loadBatchState("")
	require.NoError(t, err)
	assert.NotNil(t, state.Processed)
	assert.NoError(t, saveBatchState("", state))
}

func TestQueryHash(t *testing.T) {
	assert.Len(t, queryHash("x"), 64)
	assert.NotEqual(t, queryHash("a"), queryHash("b"))
}

func TestSettled(t *testing.T) {
	tests := []struct {
		name string
		out  service.Outcome
		want bool
	}{
		{"catalog answer", service.Outcome{Status: models.AdvisoryStatusMatrix}, true},
		{"generative answer", service.Outcome{Status: models.AdvisoryStatusGPTFallback}, true},
		{"plain no match", service.Outcome{Status: models.AdvisoryStatusNoMatch}, true},
		{"no match with provider down", service.Outcome{
			Status:   models.AdvisoryStatusNoMatch,
			Decision: service.Decision{Degraded: true},
		}, false},
		{"degraded catalog answer", service.Outcome{
			Status:   models.AdvisoryStatusMatrix,
			Decision: service.Decision{Degraded: true},
		}, false},
		{"error", service.Outcome{Status: models.AdvisoryStatusError}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, settled(tt.out))
		})
	}
}

func TestSaveBatchState_ReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	state := &batchState{Processed: make(map[string]processedQuery)}

	for _, q := range []string{"no show", "waiting room"} {
		hash := queryHash(q)
		state.Processed[hash] = processedQuery{Hash: hash, ProcessedAt: time.Now().UTC()}
		require.NoError(t, saveBatchState(path, state))
	}

	reloaded, err := loadBatchState(path)
	require.NoError(t, err)
	assert.Len(t, reloaded.Processed, 2)
	assert.NoFileExists(t, path+".tmp")
}
