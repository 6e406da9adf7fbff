package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/dshills/hybrid/internal/completion"
	"github.com/dshills/hybrid/internal/config"
	"github.com/dshills/hybrid/internal/history"
	"github.com/dshills/hybrid/internal/hybrid"
	"github.com/dshills/hybrid/internal/lang/jsonlang"
	"github.com/dshills/hybrid/internal/observable"
	"github.com/dshills/hybrid/internal/pairs"
	"github.com/dshills/hybrid/internal/script"
	"github.com/dshills/hybrid/internal/selection"
)

// Options configures a Session.
type Options struct {
	// Settings defaults to config.Defaults().
	Settings *config.Settings

	// Logger defaults to a discarding logger.
	Logger *slog.Logger

	// Level, when set, follows Settings.Logging.Level across ApplySettings.
	Level *slog.LevelVar

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
}

// Session is one interactive editing session over a JSON document.
type Session struct {
	mu sync.Mutex

	settings *config.Settings
	logger   *slog.Logger
	level    *slog.LevelVar
	out      io.Writer

	editor    *hybrid.Editor
	oracle    *completion.Oracle
	brackets  *pairs.Brackets
	completer *completion.Completer
	history   *history.History
	selection *selection.Engine
	keys      *keyProvider
	script    *script.Script
	commands  *Registry

	// cursor is the insertion index between tokens.
	cursor int
	sel    selection.Range
	hasSel bool
}

// New builds a session from opts, loading the completion script named in
// the settings.
func New(opts Options) (*Session, error) {
	s := &Session{
		settings: opts.Settings,
		logger:   opts.Logger,
		level:    opts.Level,
		out:      opts.Out,
		keys:     &keyProvider{},
		commands: NewRegistry(),
	}
	if s.settings == nil {
		s.settings = config.Defaults()
	}
	s.settings = s.settings.Clone()
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.level != nil {
		s.level.Set(s.settings.LogLevel())
	}

	s.oracle = jsonlang.Oracle()
	s.oracle.Add(completion.Keywords(s.settings.Completion.Keywords...)...)

	var scriptPairs []pairs.Pair
	if path := s.settings.Completion.Script; path != "" {
		sc, err := script.LoadFile(path, script.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("loading completion script: %w", err)
		}
		s.script = sc
		s.oracle.Add(sc.Items()...)
		scriptPairs = sc.Pairs()
	}

	brackets, err := pairs.NewBrackets(append(s.basePairs(), scriptPairs...)...)
	if err != nil {
		s.closeScript()
		return nil, fmt.Errorf("bracket pairs: %w", err)
	}
	s.brackets = brackets

	s.editor = hybrid.NewTokenEditor(jsonlang.Parser{}, jsonlang.Printer{}, nil,
		hybrid.WithLogger(s.logger),
		hybrid.WithValueEqual(jsonlang.Equal),
	)
	s.editor.ValueProperty().Subscribe(func(c observable.PropertyChange[any]) { s.keys.update(c.New) })

	copts := []completion.Option{
		completion.WithReactivation(s.settings.Editor.ReactivateCompletion),
		completion.WithMenuProvider(s.keys),
		completion.WithLogger(s.logger),
	}
	if s.settings.Editor.AutoInsertPairs {
		copts = append(copts, completion.WithAutoInsert(s.brackets))
	}
	s.completer = completion.NewCompleter(s.editor.Tokens(), s.oracle, copts...)
	s.history = history.New(s.settings.Editor.MaxUndo)
	s.selection = selection.New(s.editor)

	registerCommands(s.commands)
	s.logger.Info("session started", "editor", s.editor.ID().String(), "items", s.oracle.Len())
	return s, nil
}

// basePairs returns the configured pairs, or the language's when none are
// configured.
func (s *Session) basePairs() []pairs.Pair {
	if len(s.settings.Pairs) == 0 {
		return jsonlang.Pairs().Pairs()
	}
	out := make([]pairs.Pair, len(s.settings.Pairs))
	for i, p := range s.settings.Pairs {
		out[i] = pairs.Pair{Left: p.Left, Right: p.Right, AutoInsert: p.AutoInsert}
	}
	return out
}

// Close releases the editor and the script.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Dispose()
	s.closeScript()
}

func (s *Session) closeScript() {
	if s.script != nil {
		_ = s.script.Close()
		s.script = nil
	}
}

// Editor returns the underlying editor.
func (s *Session) Editor() *hybrid.Editor { return s.editor }

// Commands returns the command registry.
func (s *Session) Commands() *Registry { return s.commands }

// Cursor returns the insertion index.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Text renders the document.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Text()
}

// ApplySettings adopts reloaded settings. Only the undo depth, the log
// level and canonicalize-on-edit take effect in a running session.
func (s *Session) ApplySettings(next *config.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Editor.MaxUndo = next.Editor.MaxUndo
	s.settings.Editor.CanonicalizeOnEdit = next.Editor.CanonicalizeOnEdit
	s.settings.Logging = next.Logging
	s.history.SetMaxEntries(next.Editor.MaxUndo)
	if s.level != nil {
		s.level.Set(next.LogLevel())
	}
	s.logger.Info("settings applied", "maxUndo", next.Editor.MaxUndo, "level", next.Logging.Level)
}

// Load replaces the document with the JSON text src.
func (s *Session) Load(src string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmdLoad(src)
}

// Exec runs one input line: a colon command or text to type.
func (s *Session) Exec(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return nil
	case strings.HasPrefix(trimmed, ":"):
		name, args, _ := strings.Cut(trimmed[1:], " ")
		cmd := s.commands.Get(name)
		if cmd == nil {
			return &CommandError{Command: name, Err: ErrUnknownCommand}
		}
		if err := cmd.Run(s, strings.TrimSpace(args)); err != nil {
			if errors.Is(err, ErrQuit) {
				return err
			}
			return &CommandError{Command: name, Err: err}
		}
		return nil
	default:
		s.typeText(line)
		return nil
	}
}

// typeText inserts text at the cursor. Openers get their companions
// wherever they are typed.
func (s *Session) typeText(text string) {
	s.mutate("type", func() {
		n := s.editor.TokenCount()
		var f completion.Focus
		switch {
		case s.cursor >= n:
			f = s.completer.CompleteText(n, 0, text)
		case s.cursor == 0:
			f = s.completer.CompleteSide(0, completion.SideLeft, completion.Tokenize(s.oracle, text)...)
		default:
			f = s.completer.CompleteSide(s.cursor-1, completion.SideRight, completion.Tokenize(s.oracle, text)...)
		}
		if f.Valid() {
			s.cursor = f.Index + 1
		}
	})
}

// mutate records fn as one undoable edit, canonicalizing afterwards when
// configured, then shows the document.
func (s *Session) mutate(name string, fn func()) {
	s.history.Record(name, s.editor, func() {
		fn()
		if s.settings.Editor.CanonicalizeOnEdit && s.editor.State() == hybrid.StateValid {
			s.editor.Reprint()
		}
	})
	s.hasSel = false
	s.clampCursor()
	s.show()
}

func (s *Session) clampCursor() {
	s.cursor = max(0, min(s.cursor, s.editor.TokenCount()))
}

// show prints the document and, when open, the completion menu.
func (s *Session) show() {
	switch s.editor.State() {
	case hybrid.StateEmpty:
		fmt.Fprintln(s.out, "(empty)")
	case hybrid.StateInvalid:
		fmt.Fprintf(s.out, "%s  ! invalid\n", s.editor.Text())
	default:
		fmt.Fprintln(s.out, s.editor.Text())
	}
	if s.completer.Menu().Active {
		s.showMenu()
	}
}

func (s *Session) showMenu() {
	m := s.completer.Menu()
	for i, it := range m.Items {
		mark := " "
		if i == m.Selected {
			mark = ">"
		}
		fmt.Fprintf(s.out, "%s %s\n", mark, it.Text())
	}
}
