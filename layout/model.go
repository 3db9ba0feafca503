package layout

import (
	"fmt"

	"github.com/google/uuid"
)

// Model 持有有序的布局条目序列，是会话期内唯一的数据来源。
// Model 不是并发安全的：编辑与构建应由调用方串行化。
type Model struct {
	Setup Setup

	items       []*Item
	voidAllowed bool
}

// NewModel returns an empty model with default setup values.
func NewModel() *Model {
	return &Model{Setup: DefaultSetup()}
}

// Items returns the items in insertion order. The slice is a copy; the items are shared.
func (m *Model) Items() []*Item {
	out := make([]*Item, len(m.items))
	copy(out, m.items)
	return out
}

// Count returns the number of items.
func (m *Model) Count() int { return len(m.items) }

// Append adds an item at the end. RepeatCount is clamped to [1, MaxRepeatCount] and a
// zero ID is replaced with a fresh one.
func (m *Model) Append(it *Item) {
	if it == nil {
		return
	}
	if it.RepeatCount < 1 {
		it.RepeatCount = 1
	}
	if it.RepeatCount > MaxRepeatCount {
		it.RepeatCount = MaxRepeatCount
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	m.items = append(m.items, it)
}

// Remove deletes the item at index.
func (m *Model) Remove(index int) error {
	if index < 0 || index >= len(m.items) {
		return fmt.Errorf("条目索引越界: %d (共 %d 个)", index, len(m.items))
	}
	m.items = append(m.items[:index], m.items[index+1:]...)
	return nil
}

// Item resolves a peer ID. It reports false once the item has been removed.
func (m *Model) Item(id uuid.UUID) (*Item, bool) {
	for _, it := range m.items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// Clear removes every item; setup values are kept.
func (m *Model) Clear() { m.items = nil }

// IsVoidListAllowed reports whether an empty model is drawn as empty instead
// of falling back to the built-in layout.
func (m *Model) IsVoidListAllowed() bool { return m.voidAllowed }

// AllowVoidList sets the flag returned by IsVoidListAllowed.
func (m *Model) AllowVoidList(allow bool) { m.voidAllowed = allow }

// EnsureDefaultLayout fills an empty model with the built-in layout when void
// lists are not allowed. Setup values are replaced with those of the built-in layout.
func (m *Model) EnsureDefaultLayout() {
	if len(m.items) > 0 || m.voidAllowed {
		return
	}
	def := DefaultLayout()
	m.Setup = def.Setup
	m.items = def.items
}
