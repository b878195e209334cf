package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("campus-quest", "1.2.3", "json", &buf)

	logger.InfoContext(WithSession(context.Background(), "ab12"), "moved", "to", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "moved", record["msg"])
	assert.Equal(t, "campus-quest", record["service"])
	assert.Equal(t, "1.2.3", record["version"])
	assert.Equal(t, "ab12", record["session_id"])
	assert.EqualValues(t, 3, record["to"])
}

func TestSetupText(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("svc", "dev", "", &buf).With("world", "campus")

	logger.Info("hello")
	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "service=svc")
	assert.Contains(t, out, "world=campus")
	assert.NotContains(t, out, "session_id")
}

func TestWithGroup(t *testing.T) {
	var buf bytes.Buffer
	Setup("svc", "dev", "json", &buf).WithGroup("req").Info("x", "id", 1)
	assert.True(t, strings.Contains(buf.String(), `"req":{`))
}

func TestSessionFrom(t *testing.T) {
	_, ok := SessionFrom(context.Background())
	assert.False(t, ok)

	_, ok = SessionFrom(WithSession(context.Background(), ""))
	assert.False(t, ok)

	id, ok := SessionFrom(WithSession(context.Background(), "beef"))
	assert.True(t, ok)
	assert.Equal(t, "beef", id)
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("svc", "dev", "json", &buf)

	err := oops.Code("SESSION_NOT_FOUND").With("session_id", "ab12").Errorf("no session")
	LogError(context.Background(), logger, "lookup failed", err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "lookup failed", record["msg"])
	assert.Equal(t, "SESSION_NOT_FOUND", record["code"])
	assert.Contains(t, record["error"], "no session")

	buf.Reset()
	LogError(context.Background(), logger, "plain", errors.New("boom"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "boom", record["error"])
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
	assert.Equal(t, "", ErrorCode(oops.Errorf("no code")))
	assert.Equal(t, "X", ErrorCode(oops.Code("X").Errorf("coded")))
	assert.Equal(t, "X", ErrorCode(oops.Wrapf(oops.Code("X").Errorf("inner"), "outer")))
}
