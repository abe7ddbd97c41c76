package blueprint

import (
	"encoding/json"
	"fmt"

	"github.com/BenjaminAmos/GooeysQuests/internal/sim/encoding"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
)

const (
	CopyType    = "COPY_REGION"
	CopyVersion = 1

	EncodingRLE = "RLE"

	// MaxCopyVolume bounds the cells a single copy may cover.
	MaxCopyVolume = 1 << 20
)

// BlockGetter reads the block at a world position.
type BlockGetter func(p model.Vec3i) model.Block

type PlacementBlock struct {
	Pos   [3]int `json:"pos"`
	Block string `json:"block"`
}

// Copy is the serialized result of copying a region. Positions are relative
// to Origin and already transformed.
type Copy struct {
	Type     string           `json:"type"`
	Version  int              `json:"version"`
	Origin   [3]int           `json:"origin"`
	AABB     [2][3]int        `json:"aabb"`
	Palette  []string         `json:"palette"`
	Encoding string           `json:"encoding"`
	Data     string           `json:"data"`
	Blocks   []PlacementBlock `json:"blocks"`
}

func (c Copy) Region() model.Region {
	return model.NewBounded(model.Vec3iFromArray(c.AABB[0]), model.Vec3iFromArray(c.AABB[1]))
}

// Export copies region out of the world. Each cell is taken relative to
// origin, run through t (nil means Identity) and stored densely in
// Region.Each order plus as a sparse list of non-air blocks.
func Export(get BlockGetter, region model.Region, origin model.Vec3i, t Transform) (Copy, error) {
	if get == nil {
		return Copy{}, fmt.Errorf("export: nil block getter")
	}
	vol, ok := region.VolumeWithin(MaxCopyVolume)
	if !ok {
		return Copy{}, fmt.Errorf("export: region %v exceeds %d cells", region, MaxCopyVolume)
	}
	if t == nil {
		t = Identity{}
	}

	local := region.Move(origin.Neg())
	target := TransformRegion(t, local)
	if n, ok := target.VolumeWithin(MaxCopyVolume); !ok || n != vol {
		return Copy{}, fmt.Errorf("export: transformed region %v does not match %v", target, local)
	}
	cells := make(map[model.Vec3i]model.Block, vol)
	region.Each(func(p model.Vec3i) {
		b := get(p)
		if b.IsAir() {
			return
		}
		cells[t.TransformPoint(p.Sub(origin))] = t.TransformBlock(b)
	})

	pal := encoding.NewPalette("AIR")
	ids := make([]uint16, 0, vol)
	out := Copy{
		Type:     CopyType,
		Version:  CopyVersion,
		Origin:   origin.ToArray(),
		AABB:     target.ToArray(),
		Encoding: EncodingRLE,
		Blocks:   []PlacementBlock{},
	}
	target.Each(func(p model.Vec3i) {
		b, ok := cells[p]
		if !ok {
			ids = append(ids, 0)
			return
		}
		name := b.String()
		ids = append(ids, pal.ID(name))
		out.Blocks = append(out.Blocks, PlacementBlock{Pos: p.ToArray(), Block: name})
	})
	out.Palette = pal.Names()
	out.Data = encoding.EncodeRLE(ids)
	return out, nil
}

func (c Copy) Marshal() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseCopy decodes and validates a serialized copy.
func ParseCopy(payload string) (Copy, error) {
	var c Copy
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Copy{}, fmt.Errorf("copy: %w", err)
	}
	if c.Type != CopyType {
		return Copy{}, fmt.Errorf("copy: unexpected type %q", c.Type)
	}
	if c.Version != CopyVersion {
		return Copy{}, fmt.Errorf("copy: unsupported version %d", c.Version)
	}
	if c.Encoding != EncodingRLE {
		return Copy{}, fmt.Errorf("copy: unsupported encoding %q", c.Encoding)
	}
	r := c.Region()
	if r.ToArray() != c.AABB {
		return Copy{}, fmt.Errorf("copy: aabb not normalized")
	}
	vol, ok := r.VolumeWithin(MaxCopyVolume)
	if !ok {
		return Copy{}, fmt.Errorf("copy: aabb %v exceeds %d cells", r, MaxCopyVolume)
	}
	ids, err := encoding.DecodeRLE(c.Data, vol)
	if err != nil {
		return Copy{}, fmt.Errorf("copy data: %w", err)
	}
	if len(ids) != vol {
		return Copy{}, fmt.Errorf("copy data: %d cells, want %d", len(ids), vol)
	}
	for _, id := range ids {
		if int(id) >= len(c.Palette) {
			return Copy{}, fmt.Errorf("copy data: palette id %d out of range", id)
		}
	}
	for _, b := range c.Blocks {
		if _, err := model.ParseBlock(b.Block); err != nil {
			return Copy{}, fmt.Errorf("copy blocks: %w", err)
		}
		if !r.Contains(model.Vec3iFromArray(b.Pos)) {
			return Copy{}, fmt.Errorf("copy blocks: %v outside aabb", b.Pos)
		}
	}
	return c, nil
}

// Cells expands the dense data into a position -> block map (air omitted).
func (c Copy) Cells() (map[model.Vec3i]model.Block, error) {
	r := c.Region()
	vol, ok := r.VolumeWithin(MaxCopyVolume)
	if !ok {
		return nil, fmt.Errorf("copy: aabb %v exceeds %d cells", r, MaxCopyVolume)
	}
	ids, err := encoding.DecodeRLE(c.Data, vol)
	if err != nil {
		return nil, err
	}
	out := map[model.Vec3i]model.Block{}
	i := 0
	var perr error
	r.Each(func(p model.Vec3i) {
		if i >= len(ids) || perr != nil {
			return
		}
		id := ids[i]
		i++
		if id == 0 || int(id) >= len(c.Palette) {
			return
		}
		b, err := model.ParseBlock(c.Palette[id])
		if err != nil {
			perr = err
			return
		}
		out[p] = b
	})
	if perr != nil {
		return nil, perr
	}
	return out, nil
}

// Retransform applies t to an exported copy, keeping its origin.
func Retransform(c Copy, t Transform) (Copy, error) {
	cells, err := c.Cells()
	if err != nil {
		return Copy{}, err
	}
	origin := model.Vec3iFromArray(c.Origin)
	get := func(p model.Vec3i) model.Block { return cells[p.Sub(origin)] }
	return Export(get, c.Region().Move(origin), origin, t)
}
