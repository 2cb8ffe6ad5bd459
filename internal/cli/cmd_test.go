package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todomcp/internal/config"
	"todomcp/internal/credentials"
	"todomcp/internal/domain"
	"todomcp/internal/logging"
	"todomcp/internal/storage"
	"todomcp/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

var fixedNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

// testApp wires an App against an in-memory backend and the mock keyring.
func testApp(t *testing.T) *App {
	t.Helper()
	keyring.MockInit()
	logger, _ := logging.NewTestLogger()
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = storage.DriverMemory

	app := &App{
		Config:      &cfg,
		Backend:     storage.NewMemory(nil),
		Logger:      logger,
		Credentials: credentials.NewManager(),
		Now:         func() time.Time { return fixedNow },
		IsTerminal:  func() bool { return false },
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

// executeCmd runs a fresh command tree against app and captures stdout and
// stderr together.
func executeCmd(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func TestLoginWhoamiLogout(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in", decodeJSON[map[string]any](t, out)["error"])

	_, err = executeCmd(t, app, "", "login", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")

	out, err = executeCmd(t, app, "", "login", "manager1")
	require.NoError(t, err)
	assert.Equal(t, true, decodeJSON[map[string]any](t, out)["success"])

	out, err = executeCmd(t, app, "", "whoami")
	require.NoError(t, err)
	body := decodeJSON[map[string]any](t, out)
	assert.Equal(t, "manager1", body["user"].(map[string]any)["id"])
	assert.Equal(t, true, body["permissions"].(map[string]any)["canAssignOthers"])

	out, err = executeCmd(t, app, "", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out", decodeJSON[map[string]any](t, out)["message"])
}

func TestListCommands(t *testing.T) {
	app := testApp(t)
	ctx := t.Context()

	st, err := app.Store(ctx)
	require.NoError(t, err)
	_, err = st.Login(ctx, "dev1")
	require.NoError(t, err)
	_, err = st.AddTodo(ctx, storeTodo("Write docs", "proj2", domain.PriorityHigh))
	require.NoError(t, err)
	_, err = st.AddTodo(ctx, storeTodo("Fix bug", "proj1", domain.PriorityUrgent))
	require.NoError(t, err)

	out, err := executeCmd(t, app, "", "users")
	require.NoError(t, err)
	assert.Len(t, decodeJSON[[]map[string]any](t, out), 5)

	out, err = executeCmd(t, app, "", "projects")
	require.NoError(t, err)
	assert.Len(t, decodeJSON[[]map[string]any](t, out), 4)

	out, err = executeCmd(t, app, "", "todos", "--project", "proj2")
	require.NoError(t, err)
	todos := decodeJSON[[]map[string]any](t, out)
	require.Len(t, todos, 1)
	assert.Equal(t, "Write docs", todos[0]["title"])

	out, err = executeCmd(t, app, "", "todos", "--priority", "urgent", "--status", "pending")
	require.NoError(t, err)
	assert.Len(t, decodeJSON[[]map[string]any](t, out), 1)

	_, err = executeCmd(t, app, "", "todos", "--status", "later", "--priority", "asap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
	assert.Contains(t, err.Error(), "invalid priority")

	out, err = executeCmd(t, app, "", "summary")
	require.NoError(t, err)
	body := decodeJSON[map[string]any](t, out)
	assert.EqualValues(t, 2, body["summary"].(map[string]any)["totalTasks"])
	assert.EqualValues(t, 2, body["global"].(map[string]any)["pending"])
}

func TestStyledOutput(t *testing.T) {
	app := testApp(t)
	app.IsTerminal = func() bool { return true }

	out, err := executeCmd(t, app, "", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "USERS")
	assert.Contains(t, out, "Project Manager")

	out, err = executeCmd(t, app, "", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
	assert.Contains(t, out, "EVERYONE")

	out, err = executeCmd(t, app, "", "--json", "projects")
	require.NoError(t, err)
	assert.Len(t, decodeJSON[[]map[string]any](t, out), 4)
}

func TestToolsCommand(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "", "tools")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# todo-mcp tools"))
	assert.Contains(t, out, "todo_login")

	out, err = executeCmd(t, app, "", "--json", "tools")
	require.NoError(t, err)
	assert.Len(t, decodeJSON[[]map[string]any](t, out), 22)
}

func TestCredentialsCommands(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "", "credentials", "status")
	require.NoError(t, err)
	status := decodeJSON[map[string]any](t, out)
	assert.Equal(t, true, status["available"])
	assert.Equal(t, false, status["hasDatabaseUrl"])

	_, err = executeCmd(t, app, "", "credentials", "set-dsn", "not a dsn")
	require.Error(t, err)

	_, err = executeCmd(t, app, "postgres://todo@db.internal:5432/todo\n", "credentials", "set-dsn")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "", "credentials", "set-s3-secret", "s3cr3t")
	require.NoError(t, err)

	out, err = executeCmd(t, app, "", "credentials", "status")
	require.NoError(t, err)
	status = decodeJSON[map[string]any](t, out)
	assert.Equal(t, true, status["hasDatabaseUrl"])
	assert.Equal(t, true, status["hasS3Secret"])

	dsn, err := app.Credentials.DatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://todo@db.internal:5432/todo", dsn)

	_, err = executeCmd(t, app, "", "credentials", "delete-dsn")
	require.NoError(t, err)
	_, err = app.Credentials.DatabaseURL()
	assert.ErrorIs(t, err, credentials.ErrNotStored)
}

func TestServe_ListsToolsOverStdio(t *testing.T) {
	app := testApp(t)

	stdin := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"
	out, err := executeCmd(t, app, stdin, "serve")
	require.NoError(t, err)
	assert.Contains(t, out, `"todo-mcp-server"`)
	assert.Contains(t, out, `"todo_add"`)
}

func TestFlagsOverrideConfig(t *testing.T) {
	app := testApp(t)
	app.Backend = nil
	path := filepath.Join(t.TempDir(), "todos.json")

	_, err := executeCmd(t, app, "", "--driver", "file", "--data", path, "login", "admin1")
	require.NoError(t, err)
	assert.Equal(t, storage.DriverFile, app.Config.Storage.Driver)
	assert.FileExists(t, path)
	require.NoError(t, app.Close())

	app.Backend = nil
	_, err = executeCmd(t, app, "", "--ephemeral", "whoami")
	require.NoError(t, err)
	assert.Equal(t, storage.DriverMemory, app.Config.Storage.Driver)

	_, err = executeCmd(t, app, "", "--driver", "floppy", "users")
	require.Error(t, err)
}

func storeTodo(title, project string, p domain.Priority) store.NewTodo {
	return store.NewTodo{Title: title, ProjectID: project, Priority: p}
}

func TestEditorsRegister(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "", "--data", "/srv/todo/data.json", "editors", "register", "vscode", "--command", "/opt/todo-mcp")
	require.NoError(t, err)
	doc := decodeJSON[map[string]map[string]map[string]any](t, out)
	entry := doc["servers"]["todo"]
	assert.Equal(t, "/opt/todo-mcp", entry["command"])
	assert.Equal(t, []any{"serve", "--data", "/srv/todo/data.json"}, entry["args"])

	_, err = executeCmd(t, app, "", "editors", "register", "notepad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown client")
}

func TestDoctor(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "", "doctor")
	require.NoError(t, err)
	checks := decodeJSON[[]map[string]any](t, out)
	require.Len(t, checks, 3)
	for _, c := range checks {
		assert.Equal(t, true, c["ok"], c["name"])
	}
	assert.Contains(t, checks[1]["detail"], "seed data")

	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	raw, err := storage.EncodeDocument(domain.SeedData(fixedNow))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(good, raw, 0o600))
	_, err = executeCmd(t, app, "", "doctor", "--file", good)
	require.NoError(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"users":[],"projects":[],"todos":[{"id":1}]}`), 0o600))
	out, err = executeCmd(t, app, "", "doctor", "--file", bad)
	require.Error(t, err)
	checks = decodeJSON[[]map[string]any](t, out)
	assert.Equal(t, false, checks[0]["ok"])
	assert.Contains(t, checks[0]["detail"], "todos[0]")
}
