package parse

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/stopnorway/stopnorway/internal/netex"
)

const cancelCheckEvery = 4096

// Document parses every top-level entity out of r.
func Document(ctx context.Context, r io.Reader, in *netex.Interner) (*netex.Set, error) {
	dec := xml.NewDecoder(r)
	parsers := DefaultParsers(in)
	set := netex.NewSet()

	for n := 0; ; n++ {
		if n%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := parsers.Handle(tok); err != nil {
			line, col := dec.InputPos()
			return nil, fmt.Errorf("line %d col %d offset %d: %w", line, col, dec.InputOffset(), err)
		}
		if _, ok := tok.(xml.EndElement); ok {
			if err := parsers.Drain(set); err != nil {
				line, _ := dec.InputPos()
				return nil, fmt.Errorf("line %d offset %d: %w", line, dec.InputOffset(), err)
			}
		}
	}
	if err := parsers.Close(); err != nil {
		return nil, err
	}
	if err := parsers.Drain(set); err != nil {
		return nil, err
	}
	return set, nil
}

// ParseSource opens and parses one source.
func ParseSource(ctx context.Context, src Source, in *netex.Interner) (*netex.Set, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	set, err := Document(ctx, rc, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return set, nil
}
