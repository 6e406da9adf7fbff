package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds each script execution and callback.
const DefaultTimeout = time.Second

// state wraps a sandboxed gopher-lua LState.
//
// gopher-lua's LState is not goroutine-safe; mu serializes every use.
type state struct {
	L       *lua.LState
	mu      sync.Mutex
	timeout time.Duration
	logger  *slog.Logger
	closed  bool
}

func newState(timeout time.Duration, logger *slog.Logger) *state {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	s := &state{L: L, timeout: timeout, logger: logger}

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	// io, os, debug and package stay closed.

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(s.print))
	return s
}

func (s *state) print(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	s.logger.Info("script print", "msg", strings.Join(parts, "\t"))
	return 0
}

// run executes fn on the state under the timeout, converting panics and
// deadline errors.
func (s *state) run(fn func(L *lua.LState) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", ErrTimeout, err)
		}
	}()
	return fn(s.L)
}

func (s *state) doString(name, src string) error {
	return s.run(func(L *lua.LState) error {
		fn, err := L.LoadString(src)
		if err != nil {
			return fmt.Errorf("compile %s: %w", name, err)
		}
		L.Push(fn)
		return L.PCall(0, lua.MultRet, nil)
	})
}

func (s *state) doFile(path string) error {
	return s.run(func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

// callBool calls fn with text and reports its result as a Lua truth value.
func (s *state) callBool(fn *lua.LFunction, text string) (bool, error) {
	var out bool
	err := s.run(func(L *lua.LState) error {
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LString(text)); err != nil {
			return err
		}
		out = lua.LVAsBool(L.Get(-1))
		L.Pop(1)
		return nil
	})
	return out, err
}

func (s *state) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
