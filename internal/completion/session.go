package completion

// Session holds the state of a completion menu.
type Session struct {
	// Items holds the menu entries.
	Items []Item
	// Selected is the currently selected index.
	Selected int
	// Prefix is the text being completed.
	Prefix string
	// Target is the token index being completed. Target equal to the
	// token count means a placeholder at the end of the list.
	Target int
	// Active indicates whether the menu is showing.
	Active bool
}

// Open activates the menu for prefix at target.
func (s *Session) Open(target int, prefix string, items []Item) {
	s.Items = items
	s.Selected = findExact(items, prefix)
	s.Prefix = prefix
	s.Target = target
	s.Active = len(items) > 0
}

// Close deactivates the menu.
func (s *Session) Close() {
	s.Items = nil
	s.Selected = 0
	s.Prefix = ""
	s.Active = false
}

// Current returns the selected item.
func (s *Session) Current() (Item, bool) {
	if !s.Active || len(s.Items) == 0 {
		return nil, false
	}
	return s.Items[s.Selected], true
}

// Next selects the next item, wrapping around.
func (s *Session) Next() { s.Move(1) }

// Prev selects the previous item, wrapping around.
func (s *Session) Prev() { s.Move(-1) }

// Move moves the selection by delta, wrapping around at either end.
func (s *Session) Move(delta int) {
	if !s.Active || len(s.Items) == 0 {
		return
	}
	n := len(s.Items)
	s.Selected = ((s.Selected+delta)%n + n) % n
}

// findExact preselects the first item that exactly matches prefix.
func findExact(items []Item, prefix string) int {
	for i, it := range items {
		if it.IsMatch(prefix) {
			return i
		}
	}
	return 0
}

// textFor returns the text to materialize it with when completing prefix.
func textFor(it Item, prefix string) string {
	if it.IsMatch(prefix) {
		return prefix
	}
	return it.Text()
}
