package api

import (
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/hoshinonyaruko/cobrinha/hub"
	"github.com/hoshinonyaruko/cobrinha/memimg"
	"github.com/hoshinonyaruko/cobrinha/render"
	"github.com/hoshinonyaruko/cobrinha/structs"
)

// Display 是 engine 的观察者：绘图，缓存帧，推送给 websocket 客户端。
// 每局结束时的画面保存到 OutputDir
type Display struct {
	renderer  *render.Renderer
	frames    *memimg.Frames
	hub       *hub.Hub
	outputDir string
}

func NewDisplay(renderer *render.Renderer, frames *memimg.Frames, h *hub.Hub, outputDir string) *Display {
	return &Display{
		renderer:  renderer,
		frames:    frames,
		hub:       h,
		outputDir: outputDir,
	}
}

func (d *Display) Draw(snap structs.Snapshot) {
	d.frames.Store(memimg.Latest, d.renderer.Draw(snap))
	if d.hub != nil {
		d.hub.PublishFrame(snap)
	}
}

func (d *Display) GameOver(result structs.Result, snap structs.Snapshot) {
	img := d.renderer.Draw(snap)
	seq := d.frames.Store(memimg.GameOver, img)
	if d.hub != nil {
		d.hub.PublishGameOver(result, snap)
	}
	if d.outputDir == "" {
		return
	}
	// 同一秒内结束的多局靠帧序号区分
	path := filepath.Join(d.outputDir, fmt.Sprintf("run_%d_%d_score_%d.png", result.Finished, seq, result.Score))
	if err := render.SavePNG(path, img); err != nil {
		log.WithError(err).WithField("path", path).Warn("failed to save final board")
	}
}
