package snake

import "github.com/hoshinonyaruko/cobrinha/structs"

// PlaceFood 随机选择一个不与蛇重叠的格子放置食物。
// 蛇占满整个网格时不会返回
func (s *Session) PlaceFood() {
	for {
		candidate := structs.Cell{
			X: s.rng.Intn(s.grid.Cols),
			Y: s.rng.Intn(s.grid.Rows),
		}
		if !s.Occupies(candidate) {
			s.food = candidate
			s.hasFood = true
			return
		}
	}
}
