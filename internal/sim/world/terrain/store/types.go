package store

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/BenjaminAmos/GooeysQuests/internal/sim/encoding"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
)

const ChunkSize = 16

type ChunkKey struct {
	CX, CY, CZ int
}

type Chunk struct {
	Key    ChunkKey
	Blocks []uint16 // len = 16*16*16, palette ids

	dirty bool
	hash  [32]byte
}

func (c *Chunk) index(x, y, z int) int {
	return x + z*ChunkSize + y*ChunkSize*ChunkSize
}

func (c *Chunk) Get(x, y, z int) uint16 {
	return c.Blocks[c.index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, b uint16) {
	i := c.index(x, y, z)
	if c.Blocks[i] == b {
		return
	}
	c.Blocks[i] = b
	c.dirty = true
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

// ChunkStore is a sparse block world. Missing chunks read as air and are
// only allocated on the first non-air write. Not safe for concurrent use.
type ChunkStore struct {
	Chunks  map[ChunkKey]*Chunk
	palette *encoding.Palette
	blocks  []model.Block
}

func NewChunkStore() *ChunkStore {
	s := &ChunkStore{
		Chunks:  map[ChunkKey]*Chunk{},
		palette: encoding.NewPalette(),
	}
	s.blockID(model.Unoriented("AIR"))
	return s
}
