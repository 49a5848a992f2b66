package syncx

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/examgrader/internal/db"
)

func TestAppendAndSince(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	repo := NewEventRepo(conn)
	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, repo.AppendJSON(ctx, TypeAnswerGraded, id, AnswerGraded{SubmissionID: id, TestID: "t1", Score: 50}))
	}

	evs, err := repo.Since(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, "s1", evs[0].Key)
	assert.Equal(t, "local", evs[0].SiteID)
	assert.Equal(t, TypeAnswerGraded, evs[0].Type)

	var payload AnswerGraded
	require.NoError(t, json.Unmarshal([]byte(evs[1].DataJSON), &payload))
	assert.Equal(t, "s2", payload.SubmissionID)
	assert.Equal(t, 50, payload.Score)

	rest, err := repo.Since(ctx, evs[1].Seq, 0)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "s3", rest[0].Key)
}
