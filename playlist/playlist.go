// Package playlist holds the ordered items of a source together with the
// currently selected index, and the per-item computations done at play time.
//
// A Playlist is not safe for concurrent use; it belongs to the host's tick thread.
package playlist

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// ErrIndexOutOfRange is returned for indexes outside the playlist.
var ErrIndexOutOfRange = errors.New("playlist index out of range")

// Playlist is an index-addressed sequence with a current selection.
type Playlist struct {
	items   []Item
	current int
}

// New returns an empty playlist with nothing selected.
func New() *Playlist {
	return &Playlist{current: -1}
}

// Len returns the number of items.
func (p *Playlist) Len() int {
	return len(p.items)
}

// Items returns a copy of the items.
func (p *Playlist) Items() []Item {
	return append([]Item(nil), p.items...)
}

func (p *Playlist) valid(index int) bool {
	return index >= 0 && index < len(p.items)
}

func (p *Playlist) check(index int) error {
	if !p.valid(index) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(p.items))
	}
	return nil
}

// Get returns a pointer to the item at index for in-place edits.
func (p *Playlist) Get(index int) (*Item, error) {
	if err := p.check(index); err != nil {
		return nil, err
	}
	return &p.items[index], nil
}

// Current returns the selected index, or -1.
func (p *Playlist) Current() int {
	return p.current
}

// CurrentItem returns the selected item, if any.
func (p *Playlist) CurrentItem() mo.Option[*Item] {
	if !p.valid(p.current) {
		return mo.None[*Item]()
	}
	return mo.Some(&p.items[p.current])
}

// Select makes index the current item. -1 clears the selection.
func (p *Playlist) Select(index int) error {
	if index == -1 {
		p.current = -1
		return nil
	}
	if err := p.check(index); err != nil {
		return err
	}
	p.current = index
	return nil
}

// Add appends items in order.
func (p *Playlist) Add(items ...Item) {
	p.items = append(p.items, items...)
}

// Replace swaps the whole content and clears the selection.
func (p *Playlist) Replace(items []Item) {
	p.items = append([]Item(nil), items...)
	p.current = -1
}

// Remove deletes the item at index and keeps the selection on the same
// logical item. It reports whether the removed item was the selected one, in
// which case the selection is cleared.
func (p *Playlist) Remove(index int) (wasCurrent bool, err error) {
	if err := p.check(index); err != nil {
		return false, err
	}
	p.items = append(p.items[:index], p.items[index+1:]...)

	switch {
	case index == p.current:
		p.current = -1
		return true, nil
	case index < p.current:
		p.current--
	}
	return false, nil
}

// Move relocates the item at from to position to. The selection keeps
// pointing at the same logical item, whether it is the moved one or one
// shifted by the move.
func (p *Playlist) Move(from, to int) error {
	if err := p.check(from); err != nil {
		return err
	}
	if err := p.check(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	item := p.items[from]
	p.items = append(p.items[:from], p.items[from+1:]...)
	p.items = append(p.items[:to], append([]Item{item}, p.items[to:]...)...)

	switch {
	case p.current == from:
		p.current = to
	case from < p.current && p.current <= to:
		p.current--
	case to <= p.current && p.current < from:
		p.current++
	}
	return nil
}

// Next returns the index to play after the current item ends naturally:
// the same index when it loops, the following one, or None at the end.
func (p *Playlist) Next() mo.Option[int] {
	if item, ok := p.CurrentItem().Get(); ok && item.Loop {
		return mo.Some(p.current)
	}
	if next := p.current + 1; p.valid(next) {
		return mo.Some(next)
	}
	return mo.None[int]()
}

// Find returns the indexes of items whose path is in paths.
func (p *Playlist) Find(paths ...string) []int {
	set := lo.SliceToMap(paths, func(s string) (string, struct{}) { return s, struct{}{} })
	var out []int
	for i, item := range p.items {
		if _, ok := set[item.Path]; ok {
			out = append(out, i)
		}
	}
	return out
}
