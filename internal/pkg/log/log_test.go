package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerFallsBackToStandard(t *testing.T) {
	assert.Same(t, stdEntry, GetLogger(context.Background()))
}

func TestWithFieldsMerges(t *testing.T) {
	ctx := WithFields(context.Background(), logrus.Fields{"request_id": "r1"})
	ctx = WithFields(ctx, logrus.Fields{"user_id": "u1"})

	entry := GetLogger(ctx)
	assert.Equal(t, "r1", entry.Data["request_id"])
	assert.Equal(t, "u1", entry.Data["user_id"])
}

func TestContextLoggerWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	ctx := WithLogger(context.Background(), logrus.NewEntry(logger))
	ctx = WithFields(ctx, logrus.Fields{"community_id": "c1"})
	Infof(ctx)("joined %s", "u2")

	assert.Contains(t, buf.String(), `"community_id":"c1"`)
	assert.Contains(t, buf.String(), "joined u2")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	require.Error(t, Init("loud", "text"))
	require.NoError(t, Init("debug", "json"))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	require.NoError(t, Init("info", "text"))
}
