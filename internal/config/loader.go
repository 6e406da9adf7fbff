package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix prefixes environment overrides.
const DefaultEnvPrefix = "HYBRID_"

// FileSystem abstracts file reads for testing.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

type osFS struct{}

func (osFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem { return osFS{} }

type loadOptions struct {
	fs        FileSystem
	envPrefix string
	environ   func() []string
	optional  bool
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithFileSystem reads settings files through fsys.
func WithFileSystem(fsys FileSystem) LoadOption {
	return func(o *loadOptions) { o.fs = fsys }
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables environment overrides.
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *loadOptions) { o.envPrefix = prefix }
}

// WithEnviron replaces os.Environ as the source of environment variables.
func WithEnviron(env []string) LoadOption {
	return func(o *loadOptions) { o.environ = func() []string { return env } }
}

// Optional makes a missing settings file yield the defaults instead of
// ErrFileNotFound.
func Optional() LoadOption {
	return func(o *loadOptions) { o.optional = true }
}

// Load builds settings from the defaults, the file at path (skipped when
// path is empty) and the environment, then validates the result.
func Load(path string, opts ...LoadOption) (*Settings, error) {
	o := loadOptions{fs: DefaultFS(), envPrefix: DefaultEnvPrefix, environ: os.Environ}
	for _, opt := range opts {
		opt(&o)
	}

	s := Defaults()
	if path != "" {
		data, err := o.fs.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && o.optional:
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := Decode(path, data, s); err != nil {
				return nil, err
			}
			if s.Completion.Script != "" && !filepath.IsAbs(s.Completion.Script) {
				s.Completion.Script = filepath.Join(filepath.Dir(path), s.Completion.Script)
			}
		}
	}

	if o.envPrefix != "" {
		if err := ApplyEnv(s, o.envPrefix, o.environ()); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Decode decodes data into s, choosing the format from the extension of
// path. Keys not present in data leave s unchanged; unknown keys fail.
func Decode(path string, data []byte, s *Settings) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return decodeTOML(path, data, s)
	case ".yaml", ".yml":
		return decodeYAML(path, data, s)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func decodeTOML(path string, data []byte, s *Settings) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(s)
	if err == nil {
		return nil
	}

	perr := &ParseError{Path: path, Message: err.Error(), Err: err}
	var strict *toml.StrictMissingError
	var derr *toml.DecodeError
	switch {
	case errors.As(err, &strict):
		perr.Message = strings.TrimSpace(strict.String())
		perr.Err = ErrUnknownSetting
		if len(strict.Errors) > 0 {
			perr.Line, perr.Column = strict.Errors[0].Position()
		}
	case errors.As(err, &derr):
		perr.Line, perr.Column = derr.Position()
	}
	return perr
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func decodeYAML(path string, data []byte, s *Settings) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(s)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	perr := &ParseError{Path: path, Message: err.Error(), Err: err}
	var terr *yaml.TypeError
	if errors.As(err, &terr) && len(terr.Errors) > 0 {
		perr.Message = terr.Errors[0]
		if strings.Contains(perr.Message, "not found in type") {
			perr.Err = ErrUnknownSetting
		}
	}
	if m := yamlLine.FindStringSubmatch(perr.Message); m != nil {
		perr.Line, _ = strconv.Atoi(m[1])
	}
	return perr
}
