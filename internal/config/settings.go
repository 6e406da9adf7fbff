package config

import (
	"fmt"
	"log/slog"
	"slices"
)

// DefaultMaxUndo is the default undo history depth.
const DefaultMaxUndo = 1000

// Settings holds every application setting.
type Settings struct {
	Editor     EditorSettings     `toml:"editor" yaml:"editor"`
	Logging    LoggingSettings    `toml:"logging" yaml:"logging"`
	Completion CompletionSettings `toml:"completion" yaml:"completion"`
	// Pairs replaces the language's bracket pairs when non-empty.
	Pairs []PairSettings `toml:"pairs" yaml:"pairs"`
}

// EditorSettings configures editing behaviour.
type EditorSettings struct {
	// AutoInsertPairs inserts the closing companion after an opener.
	AutoInsertPairs bool `toml:"autoInsertPairs" yaml:"autoInsertPairs"`
	// ReactivateCompletion reopens the menu after a structural edit.
	ReactivateCompletion bool `toml:"reactivateCompletion" yaml:"reactivateCompletion"`
	// MaxUndo bounds the undo history; 0 selects the history default.
	MaxUndo int `toml:"maxUndo" yaml:"maxUndo"`
	// CanonicalizeOnEdit reprints the token list after every valid edit.
	CanonicalizeOnEdit bool `toml:"canonicalizeOnEdit" yaml:"canonicalizeOnEdit"`
}

// LoggingSettings configures the logger.
type LoggingSettings struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
}

// CompletionSettings configures extra completion items.
type CompletionSettings struct {
	// Keywords are added to the language's items as plain keywords.
	Keywords []string `toml:"keywords" yaml:"keywords"`
	// Script is a Lua file defining further items and pairs. A relative
	// path is resolved against the settings file's directory.
	Script string `toml:"script" yaml:"script"`
}

// PairSettings declares one bracket pair.
type PairSettings struct {
	Left       string `toml:"left" yaml:"left"`
	Right      string `toml:"right" yaml:"right"`
	AutoInsert bool   `toml:"autoInsert" yaml:"autoInsert"`
}

// Defaults returns the built-in settings.
func Defaults() *Settings {
	return &Settings{
		Editor: EditorSettings{
			AutoInsertPairs:      true,
			ReactivateCompletion: true,
			MaxUndo:              DefaultMaxUndo,
		},
		Logging: LoggingSettings{Level: "info"},
	}
}

// Clone returns a deep copy of s.
func (s *Settings) Clone() *Settings {
	c := *s
	c.Completion.Keywords = slices.Clone(s.Completion.Keywords)
	c.Pairs = slices.Clone(s.Pairs)
	return &c
}

// Validate checks every setting and returns the first failure as a
// *ValidationError.
func (s *Settings) Validate() error {
	if s.Editor.MaxUndo < 0 {
		return &ValidationError{Path: "editor.maxUndo", Message: "must not be negative", Value: s.Editor.MaxUndo}
	}
	if _, err := ParseLevel(s.Logging.Level); err != nil {
		return &ValidationError{Path: "logging.level", Message: err.Error(), Value: s.Logging.Level}
	}
	for i, kw := range s.Completion.Keywords {
		if kw == "" {
			return &ValidationError{Path: fmt.Sprintf("completion.keywords[%d]", i), Message: "must not be empty", Value: kw}
		}
	}
	seen := make(map[string]bool, 2*len(s.Pairs))
	for i, p := range s.Pairs {
		path := fmt.Sprintf("pairs[%d]", i)
		switch {
		case p.Left == "" || p.Right == "":
			return &ValidationError{Path: path, Message: "left and right must not be empty", Value: p}
		case p.Left == p.Right:
			return &ValidationError{Path: path, Message: "left and right must differ", Value: p}
		case seen[p.Left] || seen[p.Right]:
			return &ValidationError{Path: path, Message: "text already used by another pair", Value: p}
		}
		seen[p.Left], seen[p.Right] = true, true
	}
	return nil
}

// LogLevel returns the configured slog level, or Info when unset.
func (s *Settings) LogLevel() slog.Level {
	l, err := ParseLevel(s.Logging.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ParseLevel parses a level name such as "debug" or "WARN". The empty
// string is Info.
func ParseLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return l, nil
}
