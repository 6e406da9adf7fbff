package observable

// ChangeType represents the type of list change.
type ChangeType int

const (
	// ChangeAdd indicates an item was inserted.
	ChangeAdd ChangeType = iota

	// ChangeRemove indicates an item was removed.
	ChangeRemove

	// ChangeSet indicates an item was replaced.
	ChangeSet
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeAdd:
		return "add"
	case ChangeRemove:
		return "remove"
	case ChangeSet:
		return "set"
	default:
		return "unknown"
	}
}

// Subscription represents an active observer subscription.
type Subscription struct {
	id     uint64
	remove func(id uint64)
}

// Unsubscribe removes this subscription. It is safe to call more than once
// and on a nil Subscription.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.remove == nil {
		return
	}
	s.remove(s.id)
	s.remove = nil
}

// observers is an ordered registry of callbacks keyed by subscription id.
type observers[F any] struct {
	nextID uint64
	ids    []uint64
	fns    map[uint64]F
}

func (o *observers[F]) add(fn F) *Subscription {
	if o.fns == nil {
		o.fns = make(map[uint64]F)
	}
	id := o.nextID
	o.nextID++
	o.ids = append(o.ids, id)
	o.fns[id] = fn
	return &Subscription{id: id, remove: o.remove}
}

func (o *observers[F]) remove(id uint64) {
	if _, ok := o.fns[id]; !ok {
		return
	}
	delete(o.fns, id)
	for i, v := range o.ids {
		if v == id {
			o.ids = append(o.ids[:i:i], o.ids[i+1:]...)
			break
		}
	}
}

// snapshot returns the current observers so that callbacks may subscribe or
// unsubscribe while a notification is being delivered.
func (o *observers[F]) snapshot() []F {
	if len(o.ids) == 0 {
		return nil
	}
	out := make([]F, 0, len(o.ids))
	for _, id := range o.ids {
		out = append(out, o.fns[id])
	}
	return out
}

func (o *observers[F]) len() int {
	return len(o.ids)
}
