// Package editors knows where MCP-capable editors and assistants read their
// server list, and how to add todo-mcp to it.
package editors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"todomcp/pkg/fileops"
)

// DefaultServerName is the key the server is registered under.
const DefaultServerName = "todo"

// maxConfigSize bounds the editor config files we are willing to rewrite.
const maxConfigSize int64 = 1 << 20

// Layout names the JSON shape an editor expects.
type Layout int

const (
	// LayoutMCPServers is {"mcpServers": {name: {command, args}}}.
	LayoutMCPServers Layout = iota
	// LayoutServers is {"servers": {name: {type: "stdio", command, args}}}.
	LayoutServers
)

type EditorConfig struct {
	// ID is the short name used on the command line.
	ID   string
	Name string
	// Explanation is shown when listing editors.
	Explanation string
	// ConfigPath may start with "~"; relative paths are resolved against the
	// working directory.
	ConfigPath string
	Layout     Layout
}

var EditorConfigs = []EditorConfig{
	{
		ID:          "vscode",
		Name:        "VS Code (Copilot agent mode)",
		Explanation: "Workspace MCP servers, read from .vscode/mcp.json in the project.",
		ConfigPath:  ".vscode/mcp.json",
		Layout:      LayoutServers,
	},
	{
		ID:          "cursor",
		Name:        "Cursor",
		Explanation: "Project MCP servers, read from .cursor/mcp.json. Use ~/.cursor/mcp.json for every project.",
		ConfigPath:  ".cursor/mcp.json",
		Layout:      LayoutMCPServers,
	},
	{
		ID:          "claude-desktop",
		Name:        "Claude Desktop",
		Explanation: "Desktop app configuration. Restart the app after editing.",
		ConfigPath:  claudeDesktopPath(),
		Layout:      LayoutMCPServers,
	},
	{
		ID:          "gemini",
		Name:        "Gemini CLI",
		Explanation: "Project settings, read from .gemini/settings.json.",
		ConfigPath:  ".gemini/settings.json",
		Layout:      LayoutMCPServers,
	},
	{
		ID:          "windsurf",
		Name:        "Windsurf",
		Explanation: "Global MCP configuration for the Cascade agent.",
		ConfigPath:  "~/.codeium/windsurf/mcp_config.json",
		Layout:      LayoutMCPServers,
	},
}

func claudeDesktopPath() string {
	switch {
	case os.Getenv("APPDATA") != "":
		return filepath.Join("$APPDATA", "Claude", "claude_desktop_config.json")
	case fileExists(os.ExpandEnv("$HOME/Library/Application Support")):
		return "~/Library/Application Support/Claude/claude_desktop_config.json"
	default:
		return "~/.config/Claude/claude_desktop_config.json"
	}
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Lookup finds an editor by ID, case-insensitively.
func Lookup(id string) (EditorConfig, bool) {
	for _, c := range EditorConfigs {
		if strings.EqualFold(c.ID, id) {
			return c, true
		}
	}
	return EditorConfig{}, false
}

// IDs lists every editor ID.
func IDs() []string {
	ids := make([]string, 0, len(EditorConfigs))
	for _, c := range EditorConfigs {
		ids = append(ids, c.ID)
	}
	return ids
}

// Server is the launch command written into the editor config.
type Server struct {
	Name    string
	Command string
	Args    []string
}

func (s Server) entry(layout Layout) map[string]any {
	args := s.Args
	if args == nil {
		args = []string{}
	}
	e := map[string]any{"command": s.Command, "args": args}
	if layout == LayoutServers {
		e["type"] = "stdio"
	}
	return e
}

func (c EditorConfig) rootKey() string {
	if c.Layout == LayoutServers {
		return "servers"
	}
	return "mcpServers"
}

// Snippet renders a standalone config document containing only srv.
func (c EditorConfig) Snippet(srv Server) ([]byte, error) {
	doc := map[string]any{
		c.rootKey(): map[string]any{srv.Name: srv.entry(c.Layout)},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ResolvedPath expands "~" and environment variables in ConfigPath.
func (c EditorConfig) ResolvedPath() string {
	return fileops.ExpandPath(c.ConfigPath)
}

// Register merges srv into the editor's config file, creating it when
// missing. Other servers and unrelated settings are preserved; an existing
// entry with the same name is replaced. It returns the file written.
func (c EditorConfig) Register(srv Server) (string, error) {
	if srv.Name == "" {
		srv.Name = DefaultServerName
	}
	path := c.ResolvedPath()

	doc := map[string]any{}
	data, err := fileops.ReadFileLimited(path, maxConfigSize)
	switch {
	case err == nil:
		if len(strings.TrimSpace(string(data))) > 0 {
			if err := json.Unmarshal(data, &doc); err != nil {
				return "", fmt.Errorf("parse %s: %w", path, err)
			}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return "", err
	}

	servers, _ := doc[c.rootKey()].(map[string]any)
	if servers == nil {
		if _, present := doc[c.rootKey()]; present {
			return "", fmt.Errorf("%s: %q is not an object", path, c.rootKey())
		}
		servers = map[string]any{}
	}
	servers[srv.Name] = srv.entry(c.Layout)
	doc[c.rootKey()] = servers

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	if err := fileops.AtomicWriteFile(path, append(out, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Registered lists the server names already present in the editor's config.
func (c EditorConfig) Registered() ([]string, error) {
	data, err := fileops.ReadFileLimited(c.ResolvedPath(), maxConfigSize)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	servers, _ := doc[c.rootKey()].(map[string]any)
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
