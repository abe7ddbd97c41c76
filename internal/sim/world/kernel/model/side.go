package model

import (
	"fmt"
	"strings"
)

// Side is one of the six axis-aligned faces of a block.
type Side uint8

const (
	SideTop Side = iota
	SideBottom
	SideLeft
	SideRight
	SideFront
	SideBack
)

// Sides lists every side in declaration order.
var Sides = [6]Side{SideTop, SideBottom, SideLeft, SideRight, SideFront, SideBack}

var sideVectors = [6]Vec3i{
	SideTop:    {Y: 1},
	SideBottom: {Y: -1},
	SideLeft:   {X: -1},
	SideRight:  {X: 1},
	SideFront:  {Z: -1},
	SideBack:   {Z: 1},
}

var sideNames = [6]string{
	SideTop:    "TOP",
	SideBottom: "BOTTOM",
	SideLeft:   "LEFT",
	SideRight:  "RIGHT",
	SideFront:  "FRONT",
	SideBack:   "BACK",
}

func (s Side) Valid() bool { return s <= SideBack }

// Vector is the unit vector pointing out of the face.
func (s Side) Vector() Vec3i {
	if !s.Valid() {
		return Vec3i{}
	}
	return sideVectors[s]
}

func (s Side) Reverse() Side {
	r, _ := SideFromVector(s.Vector().Neg())
	return r
}

// Horizontal reports whether the side lies in the XZ plane.
func (s Side) Horizontal() bool { return s.Valid() && s != SideTop && s != SideBottom }

func (s Side) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
	return sideNames[s]
}

// SideFromVector maps a unit axis vector back to its side.
func SideFromVector(v Vec3i) (Side, bool) {
	for _, s := range Sides {
		if sideVectors[s] == v {
			return s, true
		}
	}
	return 0, false
}

func ParseSide(name string) (Side, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, s := range Sides {
		if sideNames[s] == name {
			return s, true
		}
	}
	return 0, false
}
