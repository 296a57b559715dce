package memimg

import (
	"image"
	"sync"
)

// 常用的帧名称
const (
	Latest   = "latest"
	GameOver = "gameover"
)

// Frames 在内存中保存最近绘制的帧，供 HTTP 读取
type Frames struct {
	mu     sync.RWMutex
	images map[string]image.Image
	seq    uint64
}

func NewFrames() *Frames {
	return &Frames{images: make(map[string]image.Image)}
}

// Store 保存一帧并返回递增的序号
func (f *Frames) Store(name string, img image.Image) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[name] = img
	f.seq++
	return f.seq
}

// Get 从内存中获取一帧
func (f *Frames) Get(name string) (image.Image, bool) {
	f.mu.RLock()
	img, exists := f.images[name]
	f.mu.RUnlock()
	return img, exists
}

// Seq 返回已保存的帧数
func (f *Frames) Seq() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.seq
}
