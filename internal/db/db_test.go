package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapscroll/snapscroll/input"
	"github.com/snapscroll/snapscroll/snap"
)

func TestRecordAndSummarize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	decisions := []snap.Decision{
		{At: now, Code: input.RelWheel, Raw: 1, Suppressed: true},
		{At: now, Code: input.RelWheel, Raw: 2, Snapped: 3, Detected: snap.DirectionY, Effective: snap.DirectionY},
		{At: now, Code: input.RelWheel, Raw: 1, Snapped: 0, Detected: snap.DirectionY, Effective: snap.DirectionX, LockActive: true},
	}
	for _, d := range decisions {
		require.NoError(t, db.RecordDecision(d))
	}

	sum, err := db.Summarize()
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Events)
	assert.Equal(t, 1, sum.Suppressed)
	assert.Equal(t, 1, sum.ByDecision["y"])
	assert.Equal(t, 1, sum.ByDecision["x"])
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.RecordDecision(snap.Decision{At: time.Now()}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	sum, err := db.Summarize()
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Events)
}
