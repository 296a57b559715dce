package structs

// Cell 描述网格上的一个格子坐标。
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add 返回平移后的格子，不做边界处理
func (c Cell) Add(d Direction) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Direction 是四个基本方向之一的单位向量。
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	Up    = Direction{X: 0, Y: -1}
	Down  = Direction{X: 0, Y: 1}
	Left  = Direction{X: -1, Y: 0}
	Right = Direction{X: 1, Y: 0}
)

// Opposite 返回反方向
func (d Direction) Opposite() Direction {
	return Direction{X: -d.X, Y: -d.Y}
}

// IsOpposite reports whether d is the exact reverse of other.
func (d Direction) IsOpposite(other Direction) bool {
	return d == other.Opposite()
}

// Grid 描述地图的列数和行数。
type Grid struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// Snapshot 是一局游戏在某一时刻的只读副本，用于绘图和推送。
type Snapshot struct {
	Grid      Grid      `json:"grid"`
	Snake     []Cell    `json:"snake"`     // 蛇身，0 为蛇头
	Food      *Cell     `json:"food"`      // 未初始化时为空
	Direction Direction `json:"direction"` // 当前方向
	Score     int       `json:"score"`
	Best      int       `json:"best"`
	Speed     int       `json:"speed"` // 每秒 tick 数
	Running   bool      `json:"running"`
	GameOver  bool      `json:"game_over"`
}

// Result 描述一局结束时的结果。
type Result struct {
	Score    int   `json:"score"`
	Best     int   `json:"best"`
	NewBest  bool  `json:"new_best"`
	Length   int   `json:"length"`
	Finished int64 `json:"finished"` // 结束时间，时间戳
}
