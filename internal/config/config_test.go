package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS map[string]string

func (m MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func noEnv() LoadOption { return WithEnviron(nil) }

func TestDefaults(t *testing.T) {
	s := Defaults()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if !s.Editor.AutoInsertPairs || !s.Editor.ReactivateCompletion {
		t.Error("pair auto-insert and reactivation should default on")
	}
	if s.Editor.MaxUndo != DefaultMaxUndo {
		t.Errorf("MaxUndo = %d, want %d", s.Editor.MaxUndo, DefaultMaxUndo)
	}
	if s.LogLevel() != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", s.LogLevel())
	}
}

func TestLoadTOML(t *testing.T) {
	memfs := MemFS{"/etc/hybrid/settings.toml": `
[editor]
maxUndo = 50
canonicalizeOnEdit = true

[logging]
level = "debug"

[completion]
keywords = ["select", "from"]
script = "items.lua"

[[pairs]]
left = "<"
right = ">"
autoInsert = true
`}
	s, err := Load("/etc/hybrid/settings.toml", WithFileSystem(memfs), noEnv())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Editor.MaxUndo != 50 || !s.Editor.CanonicalizeOnEdit {
		t.Errorf("editor = %+v", s.Editor)
	}
	if !s.Editor.AutoInsertPairs {
		t.Error("unset key should keep its default")
	}
	if s.LogLevel() != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", s.LogLevel())
	}
	if len(s.Completion.Keywords) != 2 || s.Completion.Keywords[1] != "from" {
		t.Errorf("keywords = %v", s.Completion.Keywords)
	}
	if want := filepath.Join("/etc/hybrid", "items.lua"); s.Completion.Script != want {
		t.Errorf("script = %q, want %q", s.Completion.Script, want)
	}
	if len(s.Pairs) != 1 || s.Pairs[0] != (PairSettings{Left: "<", Right: ">", AutoInsert: true}) {
		t.Errorf("pairs = %+v", s.Pairs)
	}
}

func TestLoadYAML(t *testing.T) {
	memfs := MemFS{"/settings.yaml": `
editor:
  reactivateCompletion: false
logging:
  level: warn
pairs:
  - left: "("
    right: ")"
`}
	s, err := Load("/settings.yaml", WithFileSystem(memfs), noEnv())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Editor.ReactivateCompletion {
		t.Error("reactivateCompletion should be false")
	}
	if s.LogLevel() != slog.LevelWarn {
		t.Errorf("LogLevel = %v, want warn", s.LogLevel())
	}
	if len(s.Pairs) != 1 || s.Pairs[0].Left != "(" || s.Pairs[0].AutoInsert {
		t.Errorf("pairs = %+v", s.Pairs)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	s, err := Load("/empty.yml", WithFileSystem(MemFS{"/empty.yml": ""}), noEnv())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Editor.MaxUndo != DefaultMaxUndo {
		t.Errorf("MaxUndo = %d", s.Editor.MaxUndo)
	}
}

func TestLoadErrors(t *testing.T) {
	memfs := MemFS{
		"/bad.toml":     "[editor\nmaxUndo = 1\n",
		"/unknown.toml": "[editor]\nbogus = 1\n",
		"/unknown.yaml": "editor:\n  bogus: 1\n",
		"/bad.yaml":     "editor: [\n",
		"/neg.toml":     "[editor]\nmaxUndo = -1\n",
		"/level.toml":   "[logging]\nlevel = \"loud\"\n",
		"/pairs.toml":   "[[pairs]]\nleft = \"(\"\nright = \"(\"\n",
		"/settings.ini": "x=1",
	}
	tests := []struct {
		name    string
		path    string
		wantIs  error
		parse   bool
		hasLine bool
	}{
		{"missing file", "/nope.toml", ErrFileNotFound, false, false},
		{"toml syntax", "/bad.toml", nil, true, true},
		{"toml unknown key", "/unknown.toml", ErrUnknownSetting, true, true},
		{"yaml unknown key", "/unknown.yaml", ErrUnknownSetting, true, true},
		{"yaml syntax", "/bad.yaml", nil, true, false},
		{"negative undo", "/neg.toml", ErrValidationFailed, false, false},
		{"bad level", "/level.toml", ErrValidationFailed, false, false},
		{"identical pair", "/pairs.toml", ErrValidationFailed, false, false},
		{"unsupported", "/settings.ini", ErrUnsupportedFormat, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path, WithFileSystem(memfs), noEnv())
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("err = %v, want %v", err, tt.wantIs)
			}
			var perr *ParseError
			if got := errors.As(err, &perr); got != tt.parse {
				t.Fatalf("ParseError = %v, want %v (err %v)", got, tt.parse, err)
			}
			if tt.hasLine && perr.Line == 0 {
				t.Errorf("expected a line number in %v", perr)
			}
		})
	}
}

func TestLoadOptionalMissing(t *testing.T) {
	s, err := Load("/nope.toml", WithFileSystem(MemFS{}), Optional(), noEnv())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Editor.MaxUndo != DefaultMaxUndo {
		t.Errorf("MaxUndo = %d", s.Editor.MaxUndo)
	}
}

func TestEnvOverrides(t *testing.T) {
	memfs := MemFS{"/s.toml": "[editor]\nmaxUndo = 5\n"}
	env := []string{
		"HOME=/root",
		"HYBRID_EDITOR_MAX_UNDO=7",
		"HYBRID_EDITOR_AUTO_INSERT_PAIRS=off",
		"HYBRID_LOGGING_LEVEL=error",
		"HYBRID_COMPLETION_KEYWORDS=let, in",
		`HYBRID_PAIRS=[{"left": "<", "right": ">", "autoInsert": true}]`,
	}
	s, err := Load("/s.toml", WithFileSystem(memfs), WithEnviron(env))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Editor.MaxUndo != 7 {
		t.Errorf("MaxUndo = %d, want 7", s.Editor.MaxUndo)
	}
	if s.Editor.AutoInsertPairs {
		t.Error("AutoInsertPairs should be off")
	}
	if s.LogLevel() != slog.LevelError {
		t.Errorf("LogLevel = %v", s.LogLevel())
	}
	if len(s.Completion.Keywords) != 2 || s.Completion.Keywords[0] != "let" || s.Completion.Keywords[1] != "in" {
		t.Errorf("keywords = %q", s.Completion.Keywords)
	}
	if len(s.Pairs) != 1 || s.Pairs[0].Right != ">" || !s.Pairs[0].AutoInsert {
		t.Errorf("pairs = %+v", s.Pairs)
	}
}

func TestEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want error
	}{
		{"unknown", "HYBRID_EDITOR_TAB_SIZE=4", ErrUnknownSetting},
		{"bad bool", "HYBRID_EDITOR_CANONICALIZE_ON_EDIT=maybe", ErrValidationFailed},
		{"bad int", "HYBRID_EDITOR_MAX_UNDO=many", ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ApplyEnv(Defaults(), DefaultEnvPrefix, []string{tt.env})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEnvToPath(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HYBRID_EDITOR_MAX_UNDO", "editor.maxUndo"},
		{"HYBRID_LOGGING_LEVEL", "logging.level"},
		{"HYBRID_PAIRS", "pairs"},
		{"HYBRID_EDITOR_REACTIVATE_COMPLETION", "editor.reactivateCompletion"},
	}
	for _, tt := range tests {
		if got := EnvToPath(DefaultEnvPrefix, tt.env); got != tt.want {
			t.Errorf("EnvToPath(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a,b", []string{"a", "b"}},
		{" a , ,b ", []string{"a", "b"}},
		{`["x,y", z]`, []string{"x,y", "z"}},
	}
	for _, tt := range tests {
		got, err := parseList(tt.in)
		if err != nil {
			t.Fatalf("parseList(%q): %v", tt.in, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("parseList(%q) = %q, want %q", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseList(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestClone(t *testing.T) {
	s := Defaults()
	s.Completion.Keywords = []string{"a"}
	s.Pairs = []PairSettings{{Left: "(", Right: ")"}}
	c := s.Clone()
	c.Completion.Keywords[0] = "b"
	c.Pairs[0].Left = "["
	if s.Completion.Keywords[0] != "a" || s.Pairs[0].Left != "(" {
		t.Error("Clone shares slices with the original")
	}
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := os.WriteFile(path, []byte("[editor]\nmaxUndo = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := make(chan *Settings, 4)
	w, err := NewWatcher(path, func(s *Settings, err error) {
		if err == nil {
			got <- s
		}
	}, WithDebounce(20*time.Millisecond), WithLoadOptions(noEnv()))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[editor]\nmaxUndo = 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case s := <-got:
		if s.Editor.MaxUndo != 9 {
			t.Errorf("MaxUndo = %d, want 9", s.Editor.MaxUndo)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	got := make(chan struct{}, 4)
	w, err := NewWatcher(path, func(*Settings, error) { got <- struct{}{} },
		WithDebounce(10*time.Millisecond), WithLoadOptions(noEnv()))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-got:
		t.Fatal("reloaded for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("second Close = %v, want ErrWatcherClosed", err)
	}
}

func TestWatcherNoReloadAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w, err := NewWatcher(path, func(*Settings, error) { calls.Add(1) }, WithLoadOptions(noEnv()))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// A debounce timer that fired just before Close.
	w.reload()
	if n := calls.Load(); n != 0 {
		t.Errorf("onReload called %d times after Close", n)
	}
}

func TestWatcherCloseWaitsForReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	w, err := NewWatcher(path, func(*Settings, error) {
		close(started)
		<-release
		finished.Store(true)
	}, WithLoadOptions(noEnv()))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	go w.reload()
	<-started

	closed := make(chan struct{})
	go func() {
		_ = w.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a reload was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the reload finished")
	}
	if !finished.Load() {
		t.Error("reload did not finish before Close returned")
	}
}
