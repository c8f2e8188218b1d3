package netex

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ID identifies a NeTEx object: "OP:Type:Value" plus a version.
type ID struct {
	Operator Operator
	Type     string
	Value    string
	Version  int
}

var idSpace = uuid.NewMD5(uuid.NameSpaceURL, []byte("https://netex-cen.eu/stopnorway"))

// ParseID splits "OP:Type:Value". The value may itself contain colons. A blank or
// non-numeric version reads as 0, as refs frequently omit it.
func ParseID(s, version string) (ID, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ID{}, fmt.Errorf("invalid id %q: want OP:Type:Value", s)
	}
	v, err := strconv.Atoi(strings.TrimSpace(version))
	if err != nil {
		v = 0
	}
	return ID{Operator: Operator(parts[0]), Type: parts[1], Value: parts[2], Version: v}, nil
}

func (id ID) IsZero() bool { return id == ID{} }

// Is reports whether the id's type segment matches t, ignoring case.
func (id ID) Is(t Kind) bool { return strings.EqualFold(id.Type, string(t)) }

func (id ID) String() string {
	if id.IsZero() {
		return ""
	}
	return string(id.Operator) + ":" + id.Type + ":" + id.Value
}

// UUID is a stable name based identity for the id, version included.
func (id ID) UUID() uuid.UUID {
	return uuid.NewMD5(idSpace, []byte(id.String()+"@"+strconv.Itoa(id.Version)))
}

func (id ID) Compare(other ID) int {
	if c := cmp.Compare(id.Operator, other.Operator); c != 0 {
		return c
	}
	if c := cmp.Compare(id.Type, other.Type); c != 0 {
		return c
	}
	if c := cmp.Compare(id.Value, other.Value); c != 0 {
		return c
	}
	return cmp.Compare(id.Version, other.Version)
}

// Interner shares the backing strings of ids. Parsing a large dataset sees the same
// operator and type strings millions of times.
type Interner struct {
	mu      sync.Mutex
	strings map[string]string
}

func NewInterner() *Interner {
	return &Interner{strings: map[string]string{}}
}

func (in *Interner) String(s string) string {
	in.mu.Lock()
	defer in.mu.Unlock()
	if v, ok := in.strings[s]; ok {
		return v
	}
	in.strings[s] = s
	return s
}

// ID returns id with interned operator and type. The value is left alone; it is mostly
// unique.
func (in *Interner) ID(id ID) ID {
	if in == nil {
		return id
	}
	id.Operator = Operator(in.String(string(id.Operator)))
	id.Type = in.String(id.Type)
	return id
}

func (in *Interner) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.strings)
}
