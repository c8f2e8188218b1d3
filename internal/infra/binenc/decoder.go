package binenc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/stopnorway/stopnorway/internal/geo"
	"github.com/stopnorway/stopnorway/internal/netex"
)

// ErrCorrupt reports input that does not decode.
var ErrCorrupt = errors.New("corrupt binary data")

// maxLen bounds any length or count read from the stream.
const maxLen = 1 << 26

// Decoder reads what Encoder writes. Errors are sticky like the Encoder's.
type Decoder struct {
	r       *bufio.Reader
	strings []string
	in      *netex.Interner
	err     error
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// WithInterner shares id strings with in.
func (d *Decoder) WithInterner(in *netex.Interner) *Decoder {
	d.in = in
	return d
}

func (d *Decoder) Err() error { return d.err }

func (d *Decoder) fail(err error) {
	if d.err != nil {
		return
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	d.err = err
}

func (d *Decoder) Uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, err := binary.ReadUvarint(d.r)
	if err != nil {
		d.fail(err)
	}
	return v
}

func (d *Decoder) Varint() int64 {
	if d.err != nil {
		return 0
	}
	v, err := binary.ReadVarint(d.r)
	if err != nil {
		d.fail(err)
	}
	return v
}

func (d *Decoder) Int() int { return int(d.Varint()) }

// Len reads a count, rejecting values no valid stream would hold.
func (d *Decoder) Len() int {
	n := d.Uvarint()
	if n > maxLen {
		d.fail(fmt.Errorf("%w: length %d", ErrCorrupt, n))
		return 0
	}
	return int(n)
}

func (d *Decoder) Byte() byte {
	if d.err != nil {
		return 0
	}
	b, err := d.r.ReadByte()
	if err != nil {
		d.fail(err)
	}
	return b
}

func (d *Decoder) Bool() bool {
	switch b := d.Byte(); b {
	case 0:
		return false
	case 1:
		return true
	default:
		d.fail(fmt.Errorf("%w: bool byte %d", ErrCorrupt, b))
		return false
	}
}

func (d *Decoder) String() string {
	ref := d.Uvarint()
	if d.err != nil {
		return ""
	}
	if ref > 0 {
		if ref > uint64(len(d.strings)) {
			d.fail(fmt.Errorf("%w: string ref %d of %d", ErrCorrupt, ref, len(d.strings)))
			return ""
		}
		return d.strings[ref-1]
	}
	n := d.Len()
	if d.err != nil {
		return ""
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		d.fail(err)
		return ""
	}
	s := string(buf)
	if d.in != nil {
		s = d.in.String(s)
	}
	d.strings = append(d.strings, s)
	return s
}

func (d *Decoder) ID() netex.ID {
	if !d.Bool() {
		return netex.ID{}
	}
	return netex.ID{
		Operator: netex.Operator(d.String()),
		Type:     d.String(),
		Value:    d.String(),
		Version:  d.Int(),
	}
}

func (d *Decoder) micro() int32 {
	v := d.Varint()
	if v < -180*geo.Dimension || v > 180*geo.Dimension {
		d.fail(fmt.Errorf("%w: coordinate %d", ErrCorrupt, v))
		return 0
	}
	return int32(v)
}

func (d *Decoder) Point() geo.Point {
	lat := d.micro()
	lon := d.micro()
	return geo.Micro(lat, lon)
}

func (d *Decoder) Points() []geo.Point {
	n := d.Len()
	if d.err != nil || n == 0 {
		return nil
	}
	out := make([]geo.Point, 0, n)
	var lat, lon int64
	for range n {
		lat += d.Varint()
		lon += d.Varint()
		if d.err != nil {
			return nil
		}
		out = append(out, geo.Micro(int32(lat), int32(lon)))
	}
	return out
}

func (d *Decoder) Box() geo.Box {
	lo := d.Point()
	hi := d.Point()
	return geo.NewBox(lo, hi)
}

func (d *Decoder) TimeOfDay() geo.TimeOfDay {
	v := d.Uvarint()
	if v >= 24*3600 {
		d.fail(fmt.Errorf("%w: time of day %d", ErrCorrupt, v))
		return 0
	}
	return geo.TimeOfDay(v)
}
