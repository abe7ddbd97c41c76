package blueprint

import "github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"

// CheckPlaced reports whether every block of c stands in the world after
// moving it by t (typically a Placement).
func CheckPlaced(get BlockGetter, c Copy, t Transform) bool {
	if get == nil || len(c.Blocks) == 0 {
		return false
	}
	if t == nil {
		t = Identity{}
	}
	for _, b := range c.Blocks {
		want, err := model.ParseBlock(b.Block)
		if err != nil {
			return false
		}
		pos := t.TransformPoint(model.Vec3iFromArray(b.Pos))
		if get(pos) != t.TransformBlock(want) {
			return false
		}
	}
	return true
}
