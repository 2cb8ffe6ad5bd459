package editors

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testServer = Server{Name: "todo", Command: "/usr/local/bin/todo-mcp", Args: []string{"serve"}}

func TestLookup(t *testing.T) {
	c, ok := Lookup("VSCode")
	require.True(t, ok)
	assert.Equal(t, "vscode", c.ID)

	_, ok = Lookup("notepad")
	assert.False(t, ok)

	seen := map[string]bool{}
	for _, id := range IDs() {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, len(EditorConfigs))
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name     string
		layout   Layout
		rootKey  string
		wantType bool
	}{
		{"mcpServers layout", LayoutMCPServers, "mcpServers", false},
		{"servers layout", LayoutServers, "servers", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := EditorConfig{Layout: tt.layout}
			raw, err := c.Snippet(testServer)
			require.NoError(t, err)

			var doc map[string]map[string]map[string]any
			require.NoError(t, json.Unmarshal(raw, &doc))
			entry := doc[tt.rootKey]["todo"]
			require.NotNil(t, entry)
			assert.Equal(t, "/usr/local/bin/todo-mcp", entry["command"])
			assert.Equal(t, []any{"serve"}, entry["args"])
			_, hasType := entry["type"]
			assert.Equal(t, tt.wantType, hasType)
		})
	}
}

func TestRegister_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cursor", "mcp.json")
	c := EditorConfig{ConfigPath: path, Layout: LayoutMCPServers}

	written, err := c.Register(Server{Command: "todo-mcp"})
	require.NoError(t, err)
	assert.Equal(t, path, written)

	names, err := c.Registered()
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultServerName}, names)
}

func TestRegister_PreservesOtherSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	existing := `{"theme":"dark","mcpServers":{"other":{"command":"other-mcp"},"todo":{"command":"old"}}}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	c := EditorConfig{ConfigPath: path, Layout: LayoutMCPServers}
	_, err := c.Register(testServer)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "dark", doc["theme"])
	servers := doc["mcpServers"].(map[string]any)
	assert.Contains(t, servers, "other")
	assert.Equal(t, "/usr/local/bin/todo-mcp", servers["todo"].(map[string]any)["command"])
}

func TestRegister_RejectsBadDocuments(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"mcpServers":`},
		{"servers not an object", `{"mcpServers":[1,2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := EditorConfig{ConfigPath: path}.Register(testServer)
			assert.Error(t, err)

			raw, _ := os.ReadFile(path)
			assert.Equal(t, tt.content, string(raw), "file must be left untouched")
		})
	}
}

func TestRegistered_MissingFile(t *testing.T) {
	names, err := EditorConfig{ConfigPath: filepath.Join(t.TempDir(), "none.json")}.Registered()
	require.NoError(t, err)
	assert.Empty(t, names)
}
