package store

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
)

const air uint16 = 0

// MaxFillVolume bounds a single Fill call.
const MaxFillVolume = 1 << 20

func (s *ChunkStore) blockID(b model.Block) uint16 {
	if b.IsAir() && len(s.blocks) > 0 {
		return air
	}
	n := s.palette.Len()
	id := s.palette.ID(b.String())
	if s.palette.Len() > n {
		s.blocks = append(s.blocks, b)
	}
	return id
}

// split maps a world position to its chunk and the local cell inside it.
func split(p model.Vec3i) (ChunkKey, int, int, int) {
	k := ChunkKey{
		CX: floorDiv(p.X, ChunkSize),
		CY: floorDiv(p.Y, ChunkSize),
		CZ: floorDiv(p.Z, ChunkSize),
	}
	return k, mod(p.X, ChunkSize), mod(p.Y, ChunkSize), mod(p.Z, ChunkSize)
}

// floorDiv rounds towards negative infinity; b > 0.
func floorDiv(a, b int) int {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

// mod is the non-negative remainder; b > 0.
func mod(a, b int) int {
	if m := a % b; m < 0 {
		return m + b
	}
	return a % b
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.Chunks))
	for k := range s.Chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CY != keys[j].CY {
			return keys[i].CY < keys[j].CY
		}
		if keys[i].CZ != keys[j].CZ {
			return keys[i].CZ < keys[j].CZ
		}
		return keys[i].CX < keys[j].CX
	})
	return keys
}

func (s *ChunkStore) GetBlock(p model.Vec3i) model.Block {
	k, lx, ly, lz := split(p)
	ch, ok := s.Chunks[k]
	if !ok {
		return s.blocks[air]
	}
	return s.blocks[ch.Get(lx, ly, lz)]
}

func (s *ChunkStore) SetBlock(p model.Vec3i, b model.Block) {
	id := s.blockID(b)
	k, lx, ly, lz := split(p)
	ch, ok := s.Chunks[k]
	if !ok {
		if id == air {
			return
		}
		ch = &Chunk{Key: k, Blocks: make([]uint16, ChunkSize*ChunkSize*ChunkSize)}
		s.Chunks[k] = ch
	}
	ch.Set(lx, ly, lz, id)
}

// Fill sets every cell of r to b and returns the number of cells written.
func (s *ChunkStore) Fill(r model.Region, b model.Block) (int, error) {
	n, ok := r.VolumeWithin(MaxFillVolume)
	if !ok {
		return 0, fmt.Errorf("fill: region %v exceeds %d cells", r, MaxFillVolume)
	}
	r.Each(func(p model.Vec3i) { s.SetBlock(p, b) })
	return n, nil
}

// Digest hashes the palette and the loaded chunks in key order. Equal
// digests mean equal contents only for stores with the same palette order.
func (s *ChunkStore) Digest() [32]byte {
	h := sha256.New()
	for _, n := range s.palette.Names() {
		h.Write([]byte(n))
		h.Write([]byte{0})
	}
	var tmp [8]byte
	for _, k := range s.LoadedChunkKeys() {
		for _, v := range []int{k.CX, k.CY, k.CZ} {
			binary.LittleEndian.PutUint64(tmp[:], uint64(int64(v)))
			h.Write(tmp[:])
		}
		d := s.Chunks[k].Digest()
		h.Write(d[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
