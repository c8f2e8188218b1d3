package binenc

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/stopnorway/stopnorway/internal/geo"
	"github.com/stopnorway/stopnorway/internal/netex"
)

// Encoder writes values to an underlying writer. Errors are sticky: after the first
// failure every call is a no-op and Err reports it.
type Encoder struct {
	w       *bufio.Writer
	scratch [binary.MaxVarintLen64]byte
	strings map[string]uint64
	err     error
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriterSize(w, 64*1024), strings: map[string]uint64{}}
}

func (e *Encoder) Err() error { return e.err }

// Flush writes buffered data and returns the first error seen.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	e.err = e.w.Flush()
	return e.err
}

func (e *Encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *Encoder) Uvarint(v uint64) {
	n := binary.PutUvarint(e.scratch[:], v)
	e.write(e.scratch[:n])
}

func (e *Encoder) Varint(v int64) {
	n := binary.PutVarint(e.scratch[:], v)
	e.write(e.scratch[:n])
}

func (e *Encoder) Int(v int) { e.Varint(int64(v)) }

func (e *Encoder) Byte(b byte) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(b)
}

func (e *Encoder) Bool(b bool) {
	if b {
		e.Byte(1)
	} else {
		e.Byte(0)
	}
}

func (e *Encoder) String(s string) {
	if idx, ok := e.strings[s]; ok {
		e.Uvarint(idx + 1)
		return
	}
	e.strings[s] = uint64(len(e.strings))
	e.Uvarint(0)
	e.Uvarint(uint64(len(s)))
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func (e *Encoder) ID(id netex.ID) {
	if id.IsZero() {
		e.Bool(false)
		return
	}
	e.Bool(true)
	e.String(string(id.Operator))
	e.String(id.Type)
	e.String(id.Value)
	e.Int(id.Version)
}

func (e *Encoder) Point(p geo.Point) {
	e.Varint(int64(p.MicroLat()))
	e.Varint(int64(p.MicroLon()))
}

func (e *Encoder) Points(ps []geo.Point) {
	e.Uvarint(uint64(len(ps)))
	var lat, lon int64
	for _, p := range ps {
		e.Varint(int64(p.MicroLat()) - lat)
		e.Varint(int64(p.MicroLon()) - lon)
		lat, lon = int64(p.MicroLat()), int64(p.MicroLon())
	}
}

func (e *Encoder) Box(b geo.Box) {
	e.Point(b.Min())
	e.Point(b.Max())
}

func (e *Encoder) TimeOfDay(t geo.TimeOfDay) { e.Uvarint(uint64(t)) }
