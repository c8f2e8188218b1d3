package parse

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stopnorway/stopnorway/internal/netex"
)

// Maker turns collected data into an entity.
type Maker func(d *Data) (netex.Entity, error)

// EntityParser extracts one kind of entity from a token stream. Elements are matched on
// their local name, ignoring case. It is not safe for concurrent use.
type EntityParser struct {
	kind     netex.Kind
	fields   map[string]Field
	sublists map[string]*EntityParser
	maker    Maker
	interner *netex.Interner
	nested   bool

	building    bool
	data        *Data
	activeField *Field
	activeList  string
	parsed      []netex.Entity
}

func NewEntityParser(kind netex.Kind, maker Maker, fs ...Field) *EntityParser {
	p := &EntityParser{
		kind:     kind,
		fields:   make(map[string]Field, len(fs)),
		sublists: map[string]*EntityParser{},
		maker:    maker,
	}
	for _, f := range fs {
		p.fields[key(f.Name)] = f
	}
	return p
}

// WithSublist makes entities found inside the named list element available through
// Data.List. Nested entities may omit their id.
func (p *EntityParser) WithSublist(name string, child *EntityParser) *EntityParser {
	child.nested = true
	p.sublists[key(name)] = child
	return p
}

func (p *EntityParser) withInterner(in *netex.Interner) *EntityParser {
	p.interner = in
	for _, c := range p.sublists {
		c.withInterner(in)
	}
	return p
}

func (p *EntityParser) Kind() netex.Kind { return p.kind }

// Handle consumes the next token.
func (p *EntityParser) Handle(tok xml.Token) error {
	if p.activeList != "" {
		if end, ok := tok.(xml.EndElement); ok && key(end.Name.Local) == p.activeList {
			child := p.sublists[p.activeList]
			if child.building {
				return fmt.Errorf("%s: list %s ended inside an open %s", p.kind, p.activeList, child.kind)
			}
			if p.data.lists == nil {
				p.data.lists = map[string][]netex.Entity{}
			}
			p.data.lists[p.activeList] = append(p.data.lists[p.activeList], child.Drain()...)
			p.activeList = ""
			return nil
		}
		return p.sublists[p.activeList].Handle(tok)
	}

	switch t := tok.(type) {
	case xml.StartElement:
		return p.start(t)
	case xml.EndElement:
		return p.end(t)
	case xml.CharData:
		if p.building && p.activeField != nil && p.activeField.Kind == Content {
			p.appendContent(string(t))
		}
	}
	return nil
}

func (p *EntityParser) start(el xml.StartElement) error {
	name := key(el.Name.Local)
	if name == key(string(p.kind)) {
		if p.building {
			return fmt.Errorf("%s: nested %s start while building %s", p.kind, p.kind, p.data.ID)
		}
		return p.begin(el)
	}
	if !p.building {
		return nil
	}
	if f, ok := p.fields[name]; ok {
		p.activeField = &f
		if f.Kind == Ref {
			return p.setRef(f, el)
		}
		return nil
	}
	if _, ok := p.sublists[name]; ok {
		p.activeList = name
	}
	return nil
}

func (p *EntityParser) begin(el xml.StartElement) error {
	d := &Data{}
	if raw, ok := attr(el, "id"); ok {
		version, _ := attr(el, "version")
		id, err := netex.ParseID(raw, version)
		if err != nil {
			return fmt.Errorf("%s: %w", p.kind, err)
		}
		d.ID = p.interner.ID(id)
	} else if !p.nested {
		return fmt.Errorf("%s: element without id", p.kind)
	}
	if raw, ok := attr(el, "order"); ok {
		order, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s %s: bad order %q", p.kind, d.ID, raw)
		}
		d.Order = order
	}
	p.building = true
	p.data = d
	return nil
}

func (p *EntityParser) setRef(f Field, el xml.StartElement) error {
	raw, ok := attr(el, "ref")
	if !ok {
		return fmt.Errorf("%s %s: %s without ref attribute", p.kind, p.data.ID, f.Name)
	}
	version, _ := attr(el, "version")
	id, err := netex.ParseID(raw, version)
	if err != nil {
		return fmt.Errorf("%s %s: %s: %w", p.kind, p.data.ID, f.Name, err)
	}
	if p.data.refs == nil {
		p.data.refs = map[string]netex.ID{}
	}
	k := key(f.Name)
	if _, dup := p.data.refs[k]; dup {
		return fmt.Errorf("%s %s: duplicate %s", p.kind, p.data.ID, f.Name)
	}
	p.data.refs[k] = p.interner.ID(id)
	return nil
}

func (p *EntityParser) appendContent(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if p.data.contents == nil {
		p.data.contents = map[string]*strings.Builder{}
	}
	k := key(p.activeField.Name)
	b, ok := p.data.contents[k]
	if !ok {
		b = &strings.Builder{}
		p.data.contents[k] = b
	}
	b.WriteString(s)
}

func (p *EntityParser) end(el xml.EndElement) error {
	name := key(el.Name.Local)
	if p.building && name == key(string(p.kind)) {
		return p.complete()
	}
	if p.activeField != nil && name == key(p.activeField.Name) {
		p.activeField = nil
	}
	return nil
}

func (p *EntityParser) complete() error {
	d := p.data
	p.building = false
	p.data = nil
	p.activeField = nil

	e, err := p.maker(d)
	if err != nil {
		return fmt.Errorf("%s %s: %w", p.kind, d.ID, err)
	}
	p.parsed = append(p.parsed, e)
	return nil
}

// Drain returns the entities completed so far and forgets them.
func (p *EntityParser) Drain() []netex.Entity {
	out := p.parsed
	p.parsed = nil
	return out
}

// Close reports an entity left open at end of input.
func (p *EntityParser) Close() error {
	if p.building {
		return errors.New(string(p.kind) + ": input ended inside " + p.data.ID.String())
	}
	return nil
}
