package run

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhouKai90/runlog/types"
)

func TestKeyBuilder_RunKey(t *testing.T) {
	keys := NewKeyBuilder("runlog")

	key := keys.RunKey("alice", types.ToolCalculator, "12*7")

	parts := strings.Split(key, ":")
	require.Len(t, parts, 4)
	assert.Equal(t, "runlog", parts[0])
	assert.Equal(t, "alice", parts[1])
	assert.Equal(t, "calculator", parts[2])
	assert.Len(t, parts[3], 64, "prompt digest is hex-encoded SHA-256")
}

func TestKeyBuilder_Deterministic(t *testing.T) {
	keys := NewKeyBuilder("runlog")

	a := keys.RunKey("alice", types.ToolWebSearch, "golang generics")
	b := keys.RunKey("alice", types.ToolWebSearch, "golang generics")
	assert.Equal(t, a, b)
}

func TestKeyBuilder_DistinctInputs(t *testing.T) {
	keys := NewKeyBuilder("runlog")
	base := keys.RunKey("alice", types.ToolWebSearch, "golang generics")

	assert.NotEqual(t, base, keys.RunKey("bob", types.ToolWebSearch, "golang generics"), "different user")
	assert.NotEqual(t, base, keys.RunKey("alice", types.ToolCalculator, "golang generics"), "different tool")
	assert.NotEqual(t, base, keys.RunKey("alice", types.ToolWebSearch, "golang channels"), "different prompt")
}

func TestKeyBuilder_DefaultPrefix(t *testing.T) {
	keys := NewKeyBuilder("")
	assert.True(t, strings.HasPrefix(keys.RunKey("u", types.ToolCalculator, "1+1"), "runlog:"))
	assert.Equal(t, "runlog:recent:u", keys.RecentKey("u"))
}

func TestKeyBuilder_RecentKeyPerUser(t *testing.T) {
	keys := NewKeyBuilder("runlog")
	assert.NotEqual(t, keys.RecentKey("alice"), keys.RecentKey("bob"))
}
