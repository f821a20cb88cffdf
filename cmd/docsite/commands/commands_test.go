package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

func parse(t *testing.T, args ...string) (*kong.Context, *CLI, *Global) {
	t.Helper()
	cli := &CLI{}
	global := &Global{Ctx: t.Context(), Logger: slog.Default()}
	parser, err := kong.New(cli,
		kong.Name("docsite"),
		kong.Vars{"version": "test"},
		kong.Bind(global),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx, cli, global
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"docsite.yaml":     "search:\n  enabled: false\n",
		"content/index.md": "# Home\n\nHello.\n",
		"content/about.md": "# About\n",
		"static/app.css":   "body{}",
		"components/.keep": "",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestParse_DefaultsToServe(t *testing.T) {
	ctx, cli, _ := parse(t)
	assert.Equal(t, "serve", ctx.Command())
	assert.Equal(t, "text", cli.LogFormat)
	assert.Equal(t, "docsite.yaml", filepath.Base(cli.Config))
}

func TestParse_ServeOverrides(t *testing.T) {
	ctx, cli, _ := parse(t, "serve", "--host", "127.0.0.1", "-p", "9000")
	assert.Equal(t, "serve", ctx.Command())
	assert.Equal(t, "127.0.0.1", cli.Serve.Host)
	assert.Equal(t, 9000, cli.Serve.Port)
}

func TestBuildCmd_Run(t *testing.T) {
	root := writeProject(t)
	out := filepath.Join(t.TempDir(), "public")

	ctx, cli, global := parse(t,
		"--config", filepath.Join(root, "docsite.yaml"),
		"build", "--output", out, "--report")
	require.NoError(t, ctx.Run(global, cli))

	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.FileExists(t, filepath.Join(out, "about", "index.html"))
	assert.FileExists(t, filepath.Join(out, "static", "app.css"))
	assert.FileExists(t, filepath.Join(out, "build-report.json"))
	assert.NoFileExists(t, filepath.Join(out, "static", "search-en.json"))
}

func TestBuildCmd_MissingConfig(t *testing.T) {
	ctx, cli, global := parse(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "build")
	err := ctx.Run(global, cli)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestInitCmd_Run(t *testing.T) {
	dir := t.TempDir()

	ctx, cli, global := parse(t, "init", "--output", dir)
	require.NoError(t, ctx.Run(global, cli))
	assert.FileExists(t, filepath.Join(dir, "docsite.yaml"))

	ctx, cli, global = parse(t, "init", "--output", dir)
	err := ctx.Run(global, cli)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	ctx, cli, global = parse(t, "init", "--output", dir, "--force")
	require.NoError(t, ctx.Run(global, cli))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv("DOCSITE_LOG_LEVEL", "warn")
	assert.Equal(t, slog.LevelWarn, parseLogLevel(false))
	t.Setenv("DOCSITE_LOG_LEVEL", "")
	assert.Equal(t, slog.LevelInfo, parseLogLevel(false))
}

func TestAbortOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cause := errors.RenderError("boom").Build()

	assert.Same(t, cause, abortOnCancel(ctx, cause))
	cancel()
	assert.True(t, errors.HasCategory(abortOnCancel(ctx, cause), errors.CategoryAbort))
	assert.NoError(t, abortOnCancel(ctx, nil))
}
