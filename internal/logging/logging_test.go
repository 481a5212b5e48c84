package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "starpath.log")

	log, closer, err := New("info", path)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("node", "health-1").Msg("node mastered")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "health-1", entry["node"])
	assert.Equal(t, "node mastered", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNew_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starpath.log")

	for _, msg := range []string{"first", "second"} {
		log, closer, err := New("info", path)
		require.NoError(t, err)
		log.Info().Msg(msg)
		closer()
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New("loud", "")
	assert.Error(t, err)
}

func TestWithUser(t *testing.T) {
	var buf strings.Builder
	base := zerolog.New(&buf)

	ctx := WithUser(context.Background(), base, "u1")
	assert.Equal(t, "u1", User(ctx))

	Ctx(ctx).Info().Msg("hello")
	assert.Contains(t, buf.String(), `"user":"u1"`)
}

func TestUser_Missing(t *testing.T) {
	assert.Empty(t, User(context.Background()))
	// zerolog.Ctx falls back to a disabled logger.
	Ctx(context.Background()).Info().Msg("dropped")
}
