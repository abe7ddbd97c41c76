package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Palette assigns dense uint16 ids to block names in first-seen order.
type Palette struct {
	names []string
	index map[string]uint16
}

// NewPalette seeds the palette; the first name gets id 0.
func NewPalette(seed ...string) *Palette {
	p := &Palette{index: map[string]uint16{}}
	for _, n := range seed {
		p.ID(n)
	}
	return p
}

// ID returns the id of name, adding it when missing.
func (p *Palette) ID(name string) uint16 {
	if id, ok := p.index[name]; ok {
		return id
	}
	id := uint16(len(p.names))
	p.names = append(p.names, name)
	p.index[name] = id
	return id
}

// Name returns the name for id.
func (p *Palette) Name(id uint16) (string, bool) {
	if int(id) >= len(p.names) {
		return "", false
	}
	return p.names[id], true
}

func (p *Palette) Names() []string { return append([]string(nil), p.names...) }

func (p *Palette) Len() int { return len(p.names) }

// EncodeRLE encodes a sequence of palette ids into base64(varint pairs).
// The pairs are (block_id, run_len) repeated.
func EncodeRLE(ids []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	for i := 0; i < len(ids); {
		b := ids[i]
		run := 1
		for j := i + 1; j < len(ids) && ids[j] == b; j++ {
			run++
		}
		n := binary.PutUvarint(tmp[:], uint64(b))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])
		i += run
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE reverses EncodeRLE. limit caps the decoded length (0 = no cap) so
// a hostile run length cannot exhaust memory.
func DecodeRLE(b64 string, limit int) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint16
	for i := 0; i < len(raw); {
		b, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if b > 0xFFFF {
			return nil, fmt.Errorf("block id too large: %d", b)
		}
		if limit > 0 && uint64(len(out))+run > uint64(limit) {
			return nil, fmt.Errorf("rle overflows limit %d", limit)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(b))
		}
	}
	return out, nil
}
