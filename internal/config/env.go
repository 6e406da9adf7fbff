package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// setters maps a setting path to the function parsing an environment
// value into it.
var setters = map[string]func(s *Settings, v string) error{
	"editor.autoInsertPairs":      boolSetter(func(s *Settings) *bool { return &s.Editor.AutoInsertPairs }),
	"editor.reactivateCompletion": boolSetter(func(s *Settings) *bool { return &s.Editor.ReactivateCompletion }),
	"editor.canonicalizeOnEdit":   boolSetter(func(s *Settings) *bool { return &s.Editor.CanonicalizeOnEdit }),
	"editor.maxUndo": func(s *Settings, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		s.Editor.MaxUndo = n
		return nil
	},
	"logging.level": func(s *Settings, v string) error {
		s.Logging.Level = v
		return nil
	},
	"completion.script": func(s *Settings, v string) error {
		s.Completion.Script = v
		return nil
	},
	"completion.keywords": func(s *Settings, v string) error {
		kws, err := parseList(v)
		if err != nil {
			return err
		}
		s.Completion.Keywords = kws
		return nil
	},
	"pairs": func(s *Settings, v string) error {
		var ps []PairSettings
		if err := yaml.Unmarshal([]byte(v), &ps); err != nil {
			return err
		}
		s.Pairs = ps
		return nil
	},
}

func boolSetter(field func(*Settings) *bool) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		*field(s) = b
		return nil
	}
}

// ApplyEnv overrides s from the prefixed variables in environ ("KEY=value"
// entries). Variables naming no setting fail with ErrUnknownSetting.
// Variables are applied in name order.
func ApplyEnv(s *Settings, prefix string, environ []string) error {
	vars := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		vars[name] = value
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := EnvToPath(prefix, name)
		set, ok := setters[path]
		if !ok {
			return fmt.Errorf("%w: %s (from %s)", ErrUnknownSetting, path, name)
		}
		if err := set(s, vars[name]); err != nil {
			return &ValidationError{Path: path, Message: err.Error(), Value: vars[name]}
		}
	}
	return nil
}

// EnvToPath converts HYBRID_EDITOR_MAX_UNDO to editor.maxUndo.
func EnvToPath(prefix, env string) string {
	name := strings.TrimPrefix(env, prefix)
	parts := strings.Split(name, "_")

	// First part is the section, the rest form the camelCase setting name.
	result := []string{strings.ToLower(parts[0])}
	if len(parts) > 1 {
		setting := strings.ToLower(parts[1])
		for _, part := range parts[2:] {
			if part != "" {
				setting += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
			}
		}
		result = append(result, setting)
	}
	return strings.Join(result, ".")
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// parseList accepts a flow sequence ("[a, b]") or a comma-separated list.
func parseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "[") {
		var out []string
		if err := yaml.Unmarshal([]byte(s), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}
