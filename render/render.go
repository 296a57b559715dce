// 绘制网格、食物和蛇
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/hoshinonyaruko/cobrinha/structs"
)

// Palette 是绘图用的颜色，格式为 #rrggbb
type Palette struct {
	Background string
	Food       string
	Head       string
	Body       string
}

// DefaultPalette 与网页版保持一致
var DefaultPalette = Palette{
	Background: "#0b1220",
	Food:       "#ff6b6b",
	Head:       "#4ade80",
	Body:       "#9ee7b7",
}

// Renderer 无状态，根据快照绘制一帧
type Renderer struct {
	cellSize int
	palette  Palette
}

func NewRenderer(cellSize int, palette Palette) (*Renderer, error) {
	if cellSize < 3 {
		return nil, fmt.Errorf("cell size %d too small", cellSize)
	}
	return &Renderer{cellSize: cellSize, palette: palette}, nil
}

// Draw 清空画布，画淡网格，再画食物和蛇
func (r *Renderer) Draw(snap structs.Snapshot) image.Image {
	width := snap.Grid.Cols * r.cellSize
	height := snap.Grid.Rows * r.cellSize
	dc := gg.NewContext(width, height)

	dc.SetHexColor(r.palette.Background)
	dc.Clear()

	renderGrid(dc, width, height, r.cellSize)

	if snap.Food != nil {
		r.drawCell(dc, *snap.Food, r.palette.Food)
	}
	for i, c := range snap.Snake {
		color := r.palette.Body
		if i == 0 {
			color = r.palette.Head
		}
		r.drawCell(dc, c, color)
	}
	return dc.Image()
}

// drawCell 画一个四周各留 1 像素的方块
func (r *Renderer) drawCell(dc *gg.Context, c structs.Cell, color string) {
	px := float64(c.X * r.cellSize)
	py := float64(c.Y * r.cellSize)
	size := float64(r.cellSize - 2)
	dc.SetHexColor(color)
	dc.DrawRectangle(px+1, py+1, size, size)
	dc.Fill()
}

func renderGrid(dc *gg.Context, width, height, blockSize int) {
	dc.SetRGBA(1, 1, 1, 0.02)
	dc.SetLineWidth(1)
	for x := 0; x <= width; x += blockSize {
		dc.DrawLine(float64(x), 0, float64(x), float64(height))
		dc.Stroke()
	}
	for y := 0; y <= height; y += blockSize {
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}
}

// Thumbnail 按宽度等比缩放
func Thumbnail(img image.Image, width int) image.Image {
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

// Encode 以 PNG 格式写出
func Encode(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// EncodeBytes 返回 PNG 字节
func EncodeBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG 保存图片，必要时创建目录
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return imaging.Save(img, path)
}
