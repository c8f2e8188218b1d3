package parse

import (
	"encoding/xml"
	"strings"

	"github.com/stopnorway/stopnorway/internal/netex"
)

// FieldKind says where a field's value is read from.
type FieldKind int

const (
	// Content fields take the element's trimmed character data.
	Content FieldKind = iota
	// Ref fields take the element's ref and version attributes.
	Ref
)

// Field is a child element of an entity that carries a value.
type Field struct {
	Name string
	Kind FieldKind
}

// F derives the kind from the name: names ending in "Ref" are refs.
func F(name string) Field {
	if strings.HasSuffix(name, "Ref") {
		return Field{Name: name, Kind: Ref}
	}
	return Field{Name: name, Kind: Content}
}

func fields(names ...string) []Field {
	out := make([]Field, len(names))
	for i, n := range names {
		out[i] = F(n)
	}
	return out
}

// Data is what was collected for one entity element.
type Data struct {
	ID       netex.ID
	Order    int
	refs     map[string]netex.ID
	contents map[string]*strings.Builder
	lists    map[string][]netex.Entity
}

func key(name string) string { return strings.ToLower(name) }

func (d *Data) Ref(name string) netex.ID { return d.refs[key(name)] }

func (d *Data) Content(name string) string {
	if b, ok := d.contents[key(name)]; ok {
		return b.String()
	}
	return ""
}

func (d *Data) HasContent(name string) bool {
	_, ok := d.contents[key(name)]
	return ok
}

func (d *Data) List(name string) []netex.Entity { return d.lists[key(name)] }

func attr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
