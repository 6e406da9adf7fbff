package hybrid

// Guard brackets reconciliation. While it is held, further guarded work is
// dropped rather than run recursively or queued.
type Guard struct {
	held    bool
	dropped int
}

// Held reports whether the guard is currently held.
func (g *Guard) Held() bool {
	return g.held
}

// Dropped returns how many Run calls were skipped because the guard was held.
func (g *Guard) Dropped() int {
	return g.dropped
}

// Run executes fn with the guard held. If the guard is already held fn is
// not called and Run returns false. The guard is released even if fn panics.
func (g *Guard) Run(fn func()) bool {
	if g.held {
		g.dropped++
		return false
	}
	g.held = true
	defer func() { g.held = false }()
	fn()
	return true
}
