package blueprint

import (
	"sort"

	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
)

type ItemCount struct {
	Item  string
	Count int
}

// Materials counts the block families a copy needs, sorted by family.
func Materials(c Copy) []ItemCount {
	counts := map[string]int{}
	for _, b := range c.Blocks {
		blk, err := model.ParseBlock(b.Block)
		if err != nil || blk.IsAir() {
			continue
		}
		counts[blk.Family]++
	}
	out := make([]ItemCount, 0, len(counts))
	for item, n := range counts {
		out = append(out, ItemCount{Item: item, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out
}

func RemainingCost(cost []ItemCount, alreadyCorrect map[string]int) []ItemCount {
	if len(cost) == 0 {
		return nil
	}
	out := make([]ItemCount, 0, len(cost))
	for _, c := range cost {
		if c.Item == "" || c.Count <= 0 {
			continue
		}
		n := c.Count
		if k := alreadyCorrect[c.Item]; k > 0 {
			if k >= n {
				n = 0
			} else {
				n -= k
			}
		}
		if n > 0 {
			out = append(out, ItemCount{Item: c.Item, Count: n})
		}
	}
	return out
}

func FullySatisfied(correct, total int) bool {
	return total > 0 && correct == total
}
