package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/hybrid/internal/lang/jsonlang"
	"github.com/dshills/hybrid/internal/pairs"
	"github.com/dshills/hybrid/internal/selection"
	"github.com/dshills/hybrid/internal/token"
)

// menuTimeout bounds an asynchronous :complete lookup.
const menuTimeout = time.Second

func registerCommands(r *Registry) {
	for _, c := range []*Command{
		{Name: "help", Help: "list commands", Run: (*Session).cmdHelp},
		{Name: "quit", Help: "end the session", Run: func(*Session, string) error { return ErrQuit }},
		{Name: "show", Help: "print the document", Run: (*Session).cmdShow},
		{Name: "tokens", Help: "list tokens with their index and kind", Run: (*Session).cmdTokens},
		{Name: "state", Help: "print parse state and counters", Run: (*Session).cmdState},
		{Name: "goto", Usage: "INDEX", Help: "move the cursor before token INDEX", Run: (*Session).cmdGoto},
		{Name: "paste", Usage: "TEXT", Help: "insert TEXT at the cursor without companions", Run: (*Session).cmdPaste},
		{Name: "delete", Usage: "INDEX [END]", Help: "delete token INDEX, or tokens INDEX..END-1", Run: (*Session).cmdDelete},
		{Name: "edit", Usage: "INDEX TEXT", Help: "edit the text of token INDEX in place", Run: (*Session).cmdEdit},
		{Name: "format", Help: "replace the tokens with their canonical form", Run: (*Session).cmdFormat},
		{Name: "restore", Help: "return an invalid document to its last valid value", Run: (*Session).cmdRestore},
		{Name: "undo", Help: "undo the last edit", Run: (*Session).cmdUndo},
		{Name: "redo", Help: "redo the last undone edit", Run: (*Session).cmdRedo},
		{Name: "history", Help: "list undoable edits", Run: (*Session).cmdHistory},
		{Name: "menu", Usage: "[INDEX]", Help: "open the completion menu for token INDEX (default: a new token)", Run: (*Session).cmdMenu},
		{Name: "next", Help: "select the next menu entry", Run: (*Session).cmdNext},
		{Name: "prev", Help: "select the previous menu entry", Run: (*Session).cmdPrev},
		{Name: "accept", Help: "complete with the selected menu entry", Run: (*Session).cmdAccept},
		{Name: "cancel", Help: "close the completion menu", Run: (*Session).cmdCancel},
		{Name: "complete", Usage: "[PREFIX]", Help: "list completions for PREFIX", Run: (*Session).cmdComplete},
		{Name: "select", Usage: "LO HI", Help: "select tokens LO..HI-1", Run: (*Session).cmdSelect},
		{Name: "up", Help: "grow the selection to the enclosing node", Run: (*Session).cmdUp},
		{Name: "down", Help: "shrink the selection towards the cursor", Run: (*Session).cmdDown},
		{Name: "all", Help: "select every token", Run: (*Session).cmdAll},
		{Name: "value", Help: "print the value under the selection", Run: (*Session).cmdValue},
		{Name: "match", Usage: "INDEX", Help: "find the bracket paired with token INDEX", Run: (*Session).cmdMatch},
		{Name: "json", Usage: "[INDENT]", Help: "print the document as plain JSON", Run: (*Session).cmdJSON},
		{Name: "load", Usage: "JSON", Help: "replace the document with parsed JSON", Run: (*Session).cmdLoad},
		{Name: "query", Usage: "PATH", Help: "evaluate a gjson path against the document", Run: (*Session).cmdQuery},
		{Name: "diff", Help: "compare the typed tokens with their canonical form", Run: (*Session).cmdDiff},
	} {
		r.Register(c)
	}
}

func (s *Session) cmdHelp(string) error {
	for _, name := range s.commands.List() {
		c := s.commands.Get(name)
		usage := ":" + c.Name
		if c.Usage != "" {
			usage += " " + c.Usage
		}
		fmt.Fprintf(s.out, "%-22s %s\n", usage, c.Help)
	}
	return nil
}

func (s *Session) cmdShow(string) error {
	s.show()
	return nil
}

func (s *Session) cmdTokens(string) error {
	for i, t := range s.editor.Snapshot() {
		fmt.Fprintf(s.out, "%3d %-7s %s\n", i, t.Kind(), t.Text())
	}
	return nil
}

func (s *Session) cmdState(string) error {
	st := s.editor.Stats()
	fmt.Fprintf(s.out, "state=%s tokens=%d cursor=%d parses=%d prints=%d dropped=%d undo=%d redo=%d\n",
		s.editor.State(), s.editor.TokenCount(), s.cursor,
		st.Parses, st.Prints, st.Dropped, s.history.UndoCount(), s.history.RedoCount())
	return nil
}

func (s *Session) cmdGoto(args string) error {
	n, err := s.index(args, s.editor.TokenCount())
	if err != nil {
		return err
	}
	s.cursor = n
	return nil
}

func (s *Session) cmdPaste(args string) error {
	if args == "" {
		return fmt.Errorf("%w: paste needs text", ErrUsage)
	}
	s.mutate("paste", func() {
		if f := s.completer.Paste(s.cursor-1, args); f.Valid() {
			s.cursor = f.Index + 1
		}
	})
	return nil
}

func (s *Session) cmdDelete(args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return fmt.Errorf("%w: delete INDEX [END]", ErrUsage)
	}
	n := s.editor.TokenCount()
	lo, err := s.index(fields[0], n-1)
	if err != nil {
		return err
	}
	hi := lo + 1
	if len(fields) == 2 {
		if hi, err = s.index(fields[1], n); err != nil {
			return err
		}
		if hi <= lo {
			return fmt.Errorf("%w: empty range %d..%d", ErrUsage, lo, hi)
		}
	}
	s.mutate("delete", func() {
		for k := hi - lo; k > 0; k-- {
			s.completer.Complete(lo, 0)
		}
		s.cursor = lo
	})
	return nil
}

func (s *Session) cmdEdit(args string) error {
	idx, text, ok := strings.Cut(args, " ")
	if !ok || text == "" {
		return fmt.Errorf("%w: edit INDEX TEXT", ErrUsage)
	}
	i, err := s.index(idx, s.editor.TokenCount()-1)
	if err != nil {
		return err
	}
	if !s.editor.Tokens().Get(i).Accepts(text) {
		return fmt.Errorf("%w: %q", ErrRejected, text)
	}
	s.mutate("edit", func() { s.completer.Edit(i, text) })
	return nil
}

func (s *Session) cmdFormat(string) error {
	if s.editor.Value() == nil {
		return ErrNoValue
	}
	s.mutate("format", s.editor.Reprint)
	return nil
}

func (s *Session) cmdRestore(string) error {
	s.mutate("restore", func() { s.editor.RestoreState(nil) })
	return nil
}

func (s *Session) cmdUndo(string) error {
	if err := s.history.Undo(s.editor); err != nil {
		return err
	}
	s.hasSel = false
	s.clampCursor()
	s.show()
	return nil
}

func (s *Session) cmdRedo(string) error {
	if err := s.history.Redo(s.editor); err != nil {
		return err
	}
	s.hasSel = false
	s.clampCursor()
	s.show()
	return nil
}

func (s *Session) cmdHistory(string) error {
	for i, info := range s.history.UndoInfo() {
		fmt.Fprintf(s.out, "%3d %-8s %+d\n", i, info.Description, info.TokenDelta)
	}
	return nil
}

func (s *Session) cmdMenu(args string) error {
	n := s.editor.TokenCount()
	target := n
	if args != "" {
		var err error
		if target, err = s.index(args, n); err != nil {
			return err
		}
	}
	if !s.completer.Trigger(target) {
		fmt.Fprintln(s.out, "no completions")
		return nil
	}
	s.showMenu()
	return nil
}

func (s *Session) cmdNext(string) error {
	if !s.completer.Menu().Active {
		return ErrNoMenu
	}
	s.completer.Menu().Next()
	s.showMenu()
	return nil
}

func (s *Session) cmdPrev(string) error {
	if !s.completer.Menu().Active {
		return ErrNoMenu
	}
	s.completer.Menu().Prev()
	s.showMenu()
	return nil
}

func (s *Session) cmdAccept(string) error {
	if !s.completer.Menu().Active {
		return ErrNoMenu
	}
	s.mutate("complete", func() {
		if f, ok := s.completer.Accept(); ok && f.Valid() {
			s.cursor = f.Index + 1
		}
	})
	return nil
}

func (s *Session) cmdCancel(string) error {
	s.completer.Cancel()
	return nil
}

func (s *Session) cmdComplete(args string) error {
	ctx, cancel := context.WithTimeout(context.Background(), menuTimeout)
	defer cancel()

	items, ok := <-s.completer.MenuCompletions(ctx, args)
	if !ok {
		return ctx.Err()
	}
	for _, it := range items {
		fmt.Fprintln(s.out, it.Text())
	}
	return nil
}

func (s *Session) cmdSelect(args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return fmt.Errorf("%w: select LO HI", ErrUsage)
	}
	n := s.editor.TokenCount()
	lo, err := s.index(fields[0], n)
	if err != nil {
		return err
	}
	hi, err := s.index(fields[1], n)
	if err != nil {
		return err
	}
	if hi < lo {
		return fmt.Errorf("%w: %d > %d", ErrUsage, lo, hi)
	}
	s.setSelection(selection.Range{Lo: lo, Hi: hi})
	return nil
}

// cmdUp selects the token before the cursor first, then escalates.
func (s *Session) cmdUp(string) error {
	switch {
	case s.hasSel:
		s.setSelection(s.selection.Up(s.sel))
	case s.cursor > 0:
		s.setSelection(selection.Range{Lo: s.cursor - 1, Hi: s.cursor})
	default:
		s.setSelection(s.selection.Up(selection.Range{}))
	}
	return nil
}

func (s *Session) cmdDown(string) error {
	if !s.hasSel {
		return ErrNoSelection
	}
	// The focus stays inside the selection even when the cursor is past it.
	focus := max(min(s.cursor-1, s.sel.Hi-1), s.sel.Lo)
	r, ok := s.selection.Down(s.sel, focus)
	if !ok {
		s.hasSel = false
		fmt.Fprintln(s.out, "selection cleared")
		return nil
	}
	s.setSelection(r)
	return nil
}

func (s *Session) cmdAll(string) error {
	s.setSelection(s.selection.All())
	return nil
}

func (s *Session) setSelection(r selection.Range) {
	s.sel, s.hasSel = r, true
	toks := s.editor.Snapshot()[r.Lo:r.Hi]
	fmt.Fprintf(s.out, "[%d,%d) %s\n", r.Lo, r.Hi, token.Render(toks))
}

func (s *Session) cmdValue(string) error {
	if !s.hasSel {
		return ErrNoSelection
	}
	v, ok := s.selection.Outermost(s.sel)
	if !ok {
		fmt.Fprintln(s.out, "no node")
		return nil
	}
	fmt.Fprintln(s.out, describe(v))
	return nil
}

// describe names a tree value and, where possible, shows it as JSON.
func describe(v any) string {
	switch x := v.(type) {
	case *jsonlang.Member:
		return fmt.Sprintf("member %q: %s", x.Key, describeJSON(x.Value))
	case *jsonlang.Element:
		return "element " + describeJSON(x.Value)
	case *jsonlang.Document:
		return "document " + describeJSON(x)
	case *jsonlang.Object:
		return "object " + describeJSON(x)
	case *jsonlang.Array:
		return "array " + describeJSON(x)
	default:
		return fmt.Sprintf("%T %s", v, describeJSON(v))
	}
}

func describeJSON(v any) string {
	out, err := jsonlang.ToJSON(v, "")
	if err != nil {
		return "?"
	}
	return strings.TrimSpace(out)
}

func (s *Session) cmdMatch(args string) error {
	toks := s.editor.Snapshot()
	i, err := s.index(args, len(toks)-1)
	if err != nil {
		return err
	}
	if j := pairs.Match(s.brackets, toks, i); j >= 0 {
		fmt.Fprintf(s.out, "%d %s <-> %d %s\n", i, toks[i].Text(), j, toks[j].Text())
		return nil
	}
	fmt.Fprintln(s.out, "no match")
	return nil
}

func (s *Session) cmdJSON(args string) error {
	v := s.editor.Value()
	if v == nil {
		return ErrNoValue
	}
	indent := ""
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 0 || n > 8 {
			return fmt.Errorf("%w: indent must be 0-8", ErrUsage)
		}
		indent = strings.Repeat(" ", n)
	}
	out, err := jsonlang.ToJSON(v, indent)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, strings.TrimRight(out, "\n"))
	return nil
}

func (s *Session) cmdLoad(args string) error {
	doc, err := jsonlang.FromJSON(args)
	if err != nil {
		return err
	}
	s.mutate("load", func() {
		s.editor.SetValue(doc)
		s.cursor = s.editor.TokenCount()
	})
	return nil
}

func (s *Session) cmdQuery(args string) error {
	v := s.editor.Value()
	if v == nil {
		return ErrNoValue
	}
	if args == "" {
		return fmt.Errorf("%w: query PATH", ErrUsage)
	}
	res, err := jsonlang.Query(v, args)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, describeJSON(res))
	return nil
}

func (s *Session) cmdDiff(string) error {
	pretty := s.editor.PrettyTokens()
	if pretty == nil {
		return ErrNoValue
	}
	fmt.Fprintln(s.out, Diff(s.editor.Text(), token.Render(pretty)))
	return nil
}

// index parses a token index in [0, limit].
func (s *Session) index(arg string, limit int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an index", ErrUsage, arg)
	}
	if n < 0 || n > limit {
		return 0, fmt.Errorf("%w: index %d out of range 0..%d", ErrUsage, n, limit)
	}
	return n, nil
}

// LineCompletions returns candidate lines for tab completion: command
// names after a colon, otherwise completions of the last word.
func (s *Session) LineCompletions(line string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.HasPrefix(line, ":") && !strings.Contains(line, " ") {
		var out []string
		for _, name := range s.commands.List() {
			if strings.HasPrefix(name, line[1:]) {
				out = append(out, ":"+name)
			}
		}
		return out
	}

	cut := strings.LastIndexAny(line, " \t") + 1
	head, word := line[:cut], line[cut:]
	var out []string
	for _, it := range s.oracle.Matching(word) {
		// Descriptive labels such as "number" are not offered.
		if text := it.Text(); it.IsMatch(text) {
			out = append(out, head+text)
		}
	}
	return out
}
