package model

import (
	"fmt"
	"strings"
)

// Block is a block type together with the direction it faces. Unoriented
// blocks keep Facing at its zero value and Oriented false.
type Block struct {
	Family   string
	Facing   Side
	Oriented bool
}

func Unoriented(family string) Block { return Block{Family: family} }

func Facing(family string, s Side) Block { return Block{Family: family, Facing: s, Oriented: true} }

func (b Block) IsAir() bool { return b.Family == "" || b.Family == "AIR" }

func (b Block) String() string {
	if !b.Oriented {
		return b.Family
	}
	return b.Family + ":" + b.Facing.String()
}

// ParseBlock is the inverse of Block.String.
func ParseBlock(s string) (Block, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Block{}, fmt.Errorf("empty block")
	}
	fam, facing, ok := strings.Cut(s, ":")
	if !ok {
		return Unoriented(fam), nil
	}
	side, ok := ParseSide(facing)
	if !ok || fam == "" {
		return Block{}, fmt.Errorf("bad block %q", s)
	}
	return Facing(fam, side), nil
}
