package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Accessor is one step from a node to a child: an object key or a list index.
type Accessor struct {
	Key   string
	Index int
	IsKey bool
}

// Key returns an object-key accessor.
func Key(k string) Accessor { return Accessor{Key: k, IsKey: true} }

// Index returns a list-index accessor.
func Index(i int) Accessor { return Accessor{Index: i} }

// Path locates a node from the document root.
type Path []Accessor

// Child returns a new path extended by a. The receiver is never modified.
func (p Path) Child(a Accessor) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, a)
}

// String renders the path as items[3].content.parameters[0]. The root is "$".
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var b strings.Builder
	for i, a := range p {
		if a.IsKey {
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(a.Key)
			continue
		}
		fmt.Fprintf(&b, "[%d]", a.Index)
	}
	return b.String()
}

// Pointer renders the path as an RFC 6901 JSON pointer.
func (p Path) Pointer() string {
	var b strings.Builder
	for _, a := range p {
		b.WriteByte('/')
		if a.IsKey {
			b.WriteString(escapePointer(a.Key))
		} else {
			b.WriteString(strconv.Itoa(a.Index))
		}
	}
	return b.String()
}

// Resolve follows p from root and returns the value found there.
func (p Path) Resolve(root interface{}) (interface{}, error) {
	cur := root
	for i, a := range p {
		if a.IsKey {
			m, ok := cur.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: expected object", p[:i+1])
			}
			next, ok := m[a.Key]
			if !ok {
				return nil, fmt.Errorf("%s: key not found", p[:i+1])
			}
			cur = next
			continue
		}
		list, ok := cur.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: expected list", p[:i+1])
		}
		if a.Index < 0 || a.Index >= len(list) {
			return nil, fmt.Errorf("%s: index out of range", p[:i+1])
		}
		cur = list[a.Index]
	}
	return cur, nil
}

// ResolveNode resolves p and requires the result to be an object.
func (p Path) ResolveNode(root interface{}) (map[string]interface{}, error) {
	v, err := p.Resolve(root)
	if err != nil {
		return nil, err
	}
	node, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: not an object", p)
	}
	return node, nil
}

// FieldPath addresses a value inside a node, e.g. armActionContext.path.
type FieldPath []string

// ParseFieldPath splits a dotted field path.
func ParseFieldPath(s string) FieldPath {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

func (f FieldPath) String() string {
	return strings.Join(f, ".")
}

// Pointer renders the field path as a JSON pointer suffix.
func (f FieldPath) Pointer() string {
	var b strings.Builder
	for _, k := range f {
		b.WriteByte('/')
		b.WriteString(escapePointer(k))
	}
	return b.String()
}

// Get returns the value at f inside node.
func (f FieldPath) Get(node map[string]interface{}) (interface{}, bool) {
	cur := node
	for i, k := range f {
		v, ok := cur[k]
		if !ok {
			return nil, false
		}
		if i == len(f)-1 {
			return v, true
		}
		next, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Set stores value at f inside node. Intermediate objects must exist.
func (f FieldPath) Set(node map[string]interface{}, value interface{}) error {
	if len(f) == 0 {
		return fmt.Errorf("empty field path")
	}
	cur := node
	for _, k := range f[:len(f)-1] {
		next, ok := cur[k].(map[string]interface{})
		if !ok {
			return fmt.Errorf("field %s: %s is not an object", f, k)
		}
		cur = next
	}
	cur[f[len(f)-1]] = value
	return nil
}

// Delete removes the value at f inside node. Missing fields are ignored.
func (f FieldPath) Delete(node map[string]interface{}) {
	if len(f) == 0 {
		return
	}
	cur := node
	for _, k := range f[:len(f)-1] {
		next, ok := cur[k].(map[string]interface{})
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, f[len(f)-1])
}

func escapePointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
