// 网格模型：固定大小的环形坐标空间
package grid

import (
	"fmt"

	"github.com/hoshinonyaruko/cobrinha/structs"
)

// New 根据列数和行数创建网格
func New(cols, rows int) (structs.Grid, error) {
	if cols <= 0 || rows <= 0 {
		return structs.Grid{}, fmt.Errorf("invalid grid size %dx%d", cols, rows)
	}
	return structs.Grid{Cols: cols, Rows: rows}, nil
}

// FromCanvas 由画布像素尺寸和格子大小推导网格，向下取整
func FromCanvas(width, height, cellSize int) (structs.Grid, error) {
	if cellSize <= 0 {
		return structs.Grid{}, fmt.Errorf("invalid cell size %d", cellSize)
	}
	return New(width/cellSize, height/cellSize)
}

// Wrap 把任意坐标折回网格内，从一边出去会从对边进来
func Wrap(g structs.Grid, c structs.Cell) structs.Cell {
	return structs.Cell{X: mod(c.X, g.Cols), Y: mod(c.Y, g.Rows)}
}

// Step 返回沿方向移动一格并折回后的格子
func Step(g structs.Grid, c structs.Cell, d structs.Direction) structs.Cell {
	return Wrap(g, c.Add(d))
}

// Center 返回网格中心格子
func Center(g structs.Grid) structs.Cell {
	return structs.Cell{X: g.Cols / 2, Y: g.Rows / 2}
}

// Contains reports whether c lies inside the grid bounds.
func Contains(g structs.Grid, c structs.Cell) bool {
	return c.X >= 0 && c.X < g.Cols && c.Y >= 0 && c.Y < g.Rows
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
