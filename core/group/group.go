// Package group provides the ordered, autovivifying tree used to hold
// reconstructed metadata and table rows, together with the bracketed
// path addresses that navigate it.
package group

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Key identifies one child of a Group: either an attribute name or an
// integer collection index.
type Key struct {
	name    string
	index   int
	numeric bool
}

// NameKey returns a Key addressing a named child.
func NameKey(name string) Key { return Key{name: name} }

// IndexKey returns a Key addressing an indexed collection member.
func IndexKey(index int) Key { return Key{index: index, numeric: true} }

// IsIndex reports whether k addresses a collection index rather than a
// named child.
func (k Key) IsIndex() bool { return k.numeric }

// Name returns the attribute name for a name key, or "" for an index key.
func (k Key) Name() string { return k.name }

// Index returns the collection index for an index key, or 0 for a name key.
func (k Key) Index() int { return k.index }

// String renders the key as it appears in an address.
func (k Key) String() string {
	if k.numeric {
		return strconv.Itoa(k.index)
	}
	return k.name
}

// Group is an ordered, autovivifying tree node. Children are keyed by
// name or collection index and kept in insertion order. Mutating access
// through Entry inserts an empty Group at a missing key; Get and
// GetPath never insert. A Group never drops a key.
type Group struct {
	keys     []Key
	children map[Key]any
}

// New returns an empty Group.
func New() *Group {
	return &Group{children: make(map[Key]any)}
}

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.keys) }

// Keys returns the child keys in insertion order.
func (g *Group) Keys() []Key {
	out := make([]Key, len(g.keys))
	copy(out, g.keys)
	return out
}

// Get looks up a direct child without inserting.
func (g *Group) Get(k Key) (any, bool) {
	v, ok := g.children[k]
	return v, ok
}

// Set stores a direct child. Re-setting an existing key keeps its
// original position.
func (g *Group) Set(k Key, v any) {
	if _, ok := g.children[k]; !ok {
		g.keys = append(g.keys, k)
	}
	g.children[k] = v
}

// Entry returns the child Group at k, inserting an empty one when the
// key is missing. A non-Group child at k is replaced by a fresh Group.
func (g *Group) Entry(k Key) *Group {
	if v, ok := g.children[k]; ok {
		if sub, ok := v.(*Group); ok {
			return sub
		}
	}
	sub := New()
	g.Set(k, sub)
	return sub
}

// GetPath resolves a bracketed address such as "ms_run[1]" against the
// tree without inserting. An address that parses to no segments falls
// back to a plain name lookup. The default is returned as soon as any
// layer or the final index is missing.
func (g *Group) GetPath(address string, def any) any {
	segments := ExtractPath(address)
	if len(segments) == 0 {
		if v, ok := g.Get(NameKey(address)); ok {
			return v
		}
		return def
	}
	layer := g
	for i, seg := range segments {
		v, ok := layer.Get(NameKey(seg.Name))
		if !ok {
			return def
		}
		sub, ok := v.(*Group)
		if !ok {
			return def
		}
		v, ok = sub.Get(IndexKey(seg.Index))
		if !ok {
			return def
		}
		if i == len(segments)-1 {
			return v
		}
		layer, ok = v.(*Group)
		if !ok {
			return def
		}
	}
	return def
}

// MarshalJSON renders the tree as a JSON object with children in
// insertion order. Index keys use their decimal string form.
func (g *Group) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range g.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k.String())
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		val, err := json.Marshal(g.children[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
