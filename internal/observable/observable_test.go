package observable

import (
	"reflect"
	"testing"
)

func TestChangeType_String(t *testing.T) {
	tests := []struct {
		ct   ChangeType
		want string
	}{
		{ChangeAdd, "add"},
		{ChangeRemove, "remove"},
		{ChangeSet, "set"},
		{ChangeType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.ct.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.ct, got, tt.want)
		}
	}
}

func TestList_Events(t *testing.T) {
	l := NewList("a", "b")

	var got []ListChange[string]
	l.Subscribe(func(c ListChange[string]) {
		got = append(got, c)
	})

	l.Add(1, "x")
	l.Set(0, "A")
	l.Remove(2)
	l.Append("z")

	want := []ListChange[string]{
		{Type: ChangeAdd, Index: 1, New: "x"},
		{Type: ChangeSet, Index: 0, Old: "a", New: "A"},
		{Type: ChangeRemove, Index: 2, Old: "b"},
		{Type: ChangeAdd, Index: 2, New: "z"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %+v\nwant %+v", got, want)
	}
	if items := l.Items(); !reflect.DeepEqual(items, []string{"A", "x", "z"}) {
		t.Errorf("Items() = %v", items)
	}
}

func TestList_ReplaceAll(t *testing.T) {
	l := NewList(1, 2, 3)

	var removes, adds int
	l.Subscribe(func(c ListChange[int]) {
		switch c.Type {
		case ChangeRemove:
			removes++
		case ChangeAdd:
			adds++
		}
	})

	l.ReplaceAll([]int{7, 8})
	if removes != 3 || adds != 2 {
		t.Errorf("removes=%d adds=%d, want 3 and 2", removes, adds)
	}
	if l.Len() != 2 || l.Get(0) != 7 || l.Get(1) != 8 {
		t.Errorf("Items() = %v", l.Items())
	}
}

func TestList_IndexOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	l := NewList[int]()
	l.Remove(0)
}

func TestList_UnsubscribeDuringDelivery(t *testing.T) {
	l := NewList[int]()

	var first, second int
	var sub *Subscription
	sub = l.Subscribe(func(ListChange[int]) {
		first++
		sub.Unsubscribe()
	})
	l.Subscribe(func(ListChange[int]) { second++ })

	l.Append(1)
	l.Append(2)

	if first != 1 {
		t.Errorf("first observer called %d times, want 1", first)
	}
	if second != 2 {
		t.Errorf("second observer called %d times, want 2", second)
	}
	if l.ObserverCount() != 1 {
		t.Errorf("ObserverCount() = %d, want 1", l.ObserverCount())
	}

	// Double unsubscribe is harmless.
	sub.Unsubscribe()
	var nilSub *Subscription
	nilSub.Unsubscribe()
}

func TestProperty(t *testing.T) {
	p := NewProperty(1)

	var changes []PropertyChange[int]
	p.Subscribe(func(c PropertyChange[int]) {
		changes = append(changes, c)
	})

	if !p.Set(2) {
		t.Error("Set(2) should report a change")
	}
	if p.Set(2) {
		t.Error("Set of equal value should not report a change")
	}
	if p.Get() != 2 {
		t.Errorf("Get() = %d", p.Get())
	}
	if len(changes) != 1 || changes[0].Old != 1 || changes[0].New != 2 {
		t.Errorf("changes = %+v", changes)
	}
}

func TestProperty_WithEqual(t *testing.T) {
	never := func(a, b int) bool { return false }
	p := NewProperty(1, WithEqual(never))

	calls := 0
	p.Subscribe(func(PropertyChange[int]) { calls++ })
	p.Set(1)
	p.Set(1)

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestSignalAndMerge(t *testing.T) {
	a, b := NewSignal(), NewSignal()
	m := Merge(a, nil, b)

	calls := 0
	sub := m.Subscribe(func() { calls++ })

	a.Fire()
	b.Fire()
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}

	sub.Unsubscribe()
	a.Fire()
	b.Fire()
	if calls != 2 {
		t.Errorf("calls after unsubscribe = %d, want 2", calls)
	}
	if a.ObserverCount() != 0 || b.ObserverCount() != 0 {
		t.Error("merged unsubscribe left observers behind")
	}

	if Merge() != nil {
		t.Error("Merge() of nothing should be nil")
	}
	if Merge(a) != Source(a) {
		t.Error("Merge of one source should return it")
	}
}
