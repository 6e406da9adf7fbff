package script

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hybrid/internal/completion"
	"github.com/dshills/hybrid/internal/pairs"
	"github.com/dshills/hybrid/internal/token"
)

// Script holds the definitions registered by a Lua script.
type Script struct {
	name  string
	state *state
	items []completion.Item
	pairs []pairs.Pair
}

type options struct {
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures script loading.
type Option func(*options)

// WithTimeout bounds the script body and every callback.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger receives print output and callback errors.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newScript(name string, opts []Option) *Script {
	o := options{timeout: DefaultTimeout, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	sc := &Script{name: name}
	sc.state = newState(o.timeout, o.logger.With("script", name))
	sc.register()
	return sc
}

// LoadFile runs the script at path.
func LoadFile(path string, opts ...Option) (*Script, error) {
	sc := newScript(filepath.Base(path), opts)
	if err := sc.state.doFile(path); err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	return sc, nil
}

// LoadString runs src as a script called name.
func LoadString(name, src string, opts ...Option) (*Script, error) {
	sc := newScript(name, opts)
	if err := sc.state.doString(name, src); err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	return sc, nil
}

// Name returns the script name.
func (sc *Script) Name() string { return sc.name }

// Items returns the completion items in registration order.
func (sc *Script) Items() []completion.Item { return slices.Clone(sc.items) }

// Pairs returns the bracket pairs in registration order.
func (sc *Script) Pairs() []pairs.Pair { return slices.Clone(sc.pairs) }

// Close releases the Lua state. Items defined with functions stop
// matching afterwards.
func (sc *Script) Close() error { return sc.state.close() }

// register installs the hybrid table.
func (sc *Script) register() {
	L := sc.state.L
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"keyword":  sc.luaKeyword,
		"keywords": sc.luaKeywords,
		"pattern":  sc.luaPattern,
		"item":     sc.luaItem,
		"pair":     sc.luaPair,
	})
	L.SetGlobal("hybrid", mod)
}

// spacing reads no_space_left / no_space_right from an options table.
func spacing(tbl *lua.LTable) []token.Option {
	if tbl == nil {
		return nil
	}
	var opts []token.Option
	if lua.LVAsBool(tbl.RawGetString("no_space_left")) {
		opts = append(opts, token.WithNoSpaceToLeft())
	}
	if lua.LVAsBool(tbl.RawGetString("no_space_right")) {
		opts = append(opts, token.WithNoSpaceToRight())
	}
	return opts
}

// hybrid.keyword(text [, opts])
func (sc *Script) luaKeyword(L *lua.LState) int {
	text := L.CheckString(1)
	if text == "" {
		L.ArgError(1, "keyword must not be empty")
	}
	sc.items = append(sc.items, completion.Keyword(text, spacing(L.OptTable(2, nil))...))
	return 0
}

// hybrid.keywords(text, ...)
func (sc *Script) luaKeywords(L *lua.LState) int {
	for i := 1; i <= L.GetTop(); i++ {
		text := L.CheckString(i)
		if text == "" {
			L.ArgError(i, "keyword must not be empty")
		}
		sc.items = append(sc.items, completion.Keyword(text))
	}
	return 0
}

// hybrid.pattern(label, exact [, prefix [, opts]])
func (sc *Script) luaPattern(L *lua.LState) int {
	label := L.CheckString(1)
	exact := L.CheckString(2)
	prefix := L.OptString(3, "")
	item, err := completion.NewPatternItem(label, exact, prefix, spacing(L.OptTable(4, nil))...)
	if err != nil {
		L.ArgError(2, err.Error())
	}
	sc.items = append(sc.items, item)
	return 0
}

// hybrid.item({label=, match=fn [, prefix=fn] [, no_space_left=] [, no_space_right=]})
func (sc *Script) luaItem(L *lua.LState) int {
	tbl := L.CheckTable(1)
	label, ok := tbl.RawGetString("label").(lua.LString)
	if !ok || label == "" {
		L.ArgError(1, "item needs a label")
	}
	match, ok := tbl.RawGetString("match").(*lua.LFunction)
	if !ok {
		L.ArgError(1, "item needs a match function")
	}
	item := &completion.FuncItem{
		Label: string(label),
		Match: sc.predicate(string(label), "match", match),
	}
	if prefix, ok := tbl.RawGetString("prefix").(*lua.LFunction); ok {
		item.Prefix = sc.predicate(string(label), "prefix", prefix)
	}
	if opts := spacing(tbl); len(opts) > 0 {
		item.Make = func(text string) *token.Token { return token.NewPlain(text, opts...) }
	}
	sc.items = append(sc.items, item)
	return 0
}

// predicate adapts a Lua function to a Go predicate. Errors count as false.
func (sc *Script) predicate(label, kind string, fn *lua.LFunction) func(string) bool {
	return func(text string) bool {
		ok, err := sc.state.callBool(fn, text)
		if err != nil {
			sc.state.logger.Warn("script callback failed", "item", label, "fn", kind, "error", err)
			return false
		}
		return ok
	}
}

// hybrid.pair(left, right [, autoInsert])
func (sc *Script) luaPair(L *lua.LState) int {
	p := pairs.Pair{
		Left:       L.CheckString(1),
		Right:      L.CheckString(2),
		AutoInsert: L.OptBool(3, false),
	}
	if p.Left == "" || p.Right == "" {
		L.ArgError(1, "pair sides must not be empty")
	}
	sc.pairs = append(sc.pairs, p)
	return 0
}
