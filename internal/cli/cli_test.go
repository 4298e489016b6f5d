package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/infinicanvas/pkg/core/visibility"
	"github.com/matzehuels/infinicanvas/pkg/scene"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()

	want := []string{"render", "index", "explore", "serve", "scene", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestVersionFlag(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), appName+" version ") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestRenderJSON(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "view.json")

	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs([]string{"render", "-f", "json", "-o", out, "--width", "512", "--height", "256"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var pass visibility.Pass
	if err := json.Unmarshal(data, &pass); err != nil {
		t.Fatal(err)
	}
	if pass.Registered != 100 {
		t.Errorf("Registered = %d, want the 100 demo items", pass.Registered)
	}
	if pass.Viewport.Width() != 512 || pass.Viewport.Height() != 256 {
		t.Errorf("Viewport = %v, want 512x256", pass.Viewport)
	}
	if len(pass.Items) == 0 || len(pass.Items) == 100 {
		t.Errorf("visible = %d, want a strict subset", len(pass.Items))
	}
}

func TestRenderRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"render", "-f", "gif"}},
		{"ratio", []string{"render", "--ratio", "0"}},
		{"scale", []string{"render", "--scale", "0.01"}},
		{"missing scene", []string{"render", "does-not-exist.toml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&bytes.Buffer{}, log.InfoLevel)
			root := c.RootCommand()
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs(append(tt.args, "-o", filepath.Join(t.TempDir(), "out.svg")))
			if err := root.ExecuteContext(context.Background()); err == nil {
				t.Errorf("%v succeeded, want an error", tt.args)
			}
		})
	}
}

func TestSceneGridAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.toml")

	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs([]string{"scene", "grid", "-o", path, "--count", "12", "--cols", "4"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	s, err := scene.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Grid == nil || s.Grid.Count != 12 || s.Grid.Cols != 4 {
		t.Errorf("Grid = %+v", s.Grid)
	}

	root = New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"scene", "validate", path})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Errorf("validate %s: %v", path, err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[[items]]\nwidth = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	root = New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"scene", "validate", path, bad})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("validate accepted an invalid scene")
	}
}

func TestIndexDOT(t *testing.T) {
	out := filepath.Join(t.TempDir(), "index.dot")

	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"index", "-f", "dot", "-o", out})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") || !strings.Contains(string(data), `"0,0"`) {
		t.Errorf("index DOT = %.80q", data)
	}
}

func TestCachePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := newCache(true).(interface{ Dir() string }); ok {
		t.Error("newCache(true) returned a file cache")
	}
	if _, ok := newCache(false).(interface{ Dir() string }); !ok {
		t.Error("newCache(false) did not return a file cache")
	}
}
