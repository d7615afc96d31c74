package mztab

import (
	"strings"

	"github.com/radusuciu/pyteomics/core/group"
)

// CollapseProperties folds a flat ordered mapping of dash-delimited
// keys into entities. Each key is split on its rightmost dash into an
// (entity id, attribute name) pair; keys with no dash either name an
// entity (becoming its name attribute) or stay as bare top-level
// values. Entities appear in first-appearance order, bare values after
// them.
func CollapseProperties(flat *group.Group) *group.Group {
	out := group.New()

	type bare struct {
		key string
		val any
	}
	var rest []bare

	for _, k := range flat.Keys() {
		key := k.Name()
		v, _ := flat.Get(k)
		i := strings.LastIndex(key, "-")
		if i < 0 {
			rest = append(rest, bare{key, v})
			continue
		}
		entity, prop := key[:i], key[i+1:]
		out.Entry(group.NameKey(entity)).Set(group.NameKey(prop), v)
	}

	// A key that exactly matches a collected entity id carries that
	// entity's name. Dashed keys participate too: "a-b" both feeds
	// entity "a" and can name entity "a-b".
	for _, k := range flat.Keys() {
		v, ok := out.Get(group.NameKey(k.Name()))
		if !ok {
			continue
		}
		entity, ok := v.(*group.Group)
		if !ok {
			continue
		}
		if _, ok := entity.Get(group.NameKey("name")); !ok {
			val, _ := flat.Get(k)
			entity.Set(group.NameKey("name"), val)
		}
	}

	for _, b := range rest {
		if v, ok := out.Get(group.NameKey(b.key)); ok {
			if entity, ok := v.(*group.Group); ok {
				entity.Set(group.NameKey("name"), b.val)
				continue
			}
		}
		out.Set(group.NameKey(b.key), b.val)
	}
	return out
}

// Gather collapses entities and places each at its bracketed collection
// address, producing the nested tree form. Keys with one bracketed
// segment land at out[name][index]; nested addresses walk and create
// the intermediate layers; everything else is assigned as-is. The flat
// form remains the stored representation; gathering is on demand.
func Gather(flat *group.Group) *group.Group {
	collapsed := CollapseProperties(flat)
	out := group.New()
	for _, k := range collapsed.Keys() {
		key := k.Name()
		v, _ := collapsed.Get(k)
		segments := group.ExtractPath(key)
		switch len(segments) {
		case 0:
			out.Set(group.NameKey(key), v)
		case 1:
			out.Entry(group.NameKey(segments[0].Name)).Set(group.IndexKey(segments[0].Index), v)
		default:
			layer := out
			for _, seg := range segments[:len(segments)-1] {
				layer = layer.Entry(group.NameKey(seg.Name)).Entry(group.IndexKey(seg.Index))
			}
			last := segments[len(segments)-1]
			layer.Entry(group.NameKey(last.Name)).Set(group.IndexKey(last.Index), v)
		}
	}
	return out
}
