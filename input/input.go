// 键盘和滑动手势转换为方向请求
package input

import (
	"math"
	"sync"

	"github.com/hoshinonyaruko/cobrinha/structs"
)

// SwipeThreshold 是识别为滑动的最小位移，单位像素
const SwipeThreshold = 20

// Target 接收输入产生的请求，通常是 *engine.Engine
type Target interface {
	RequestDirection(d structs.Direction) bool
	Toggle() bool
}

var keyDirections = map[string]structs.Direction{
	"ArrowUp":    structs.Up,
	"w":          structs.Up,
	"W":          structs.Up,
	"ArrowDown":  structs.Down,
	"s":          structs.Down,
	"S":          structs.Down,
	"ArrowLeft":  structs.Left,
	"a":          structs.Left,
	"A":          structs.Left,
	"ArrowRight": structs.Right,
	"d":          structs.Right,
	"D":          structs.Right,
}

// KeyDirection 返回按键对应的方向
func KeyDirection(key string) (structs.Direction, bool) {
	d, ok := keyDirections[key]
	return d, ok
}

// SwipeDirection 根据位移判断滑动方向。
// 水平位移绝对值更大时按水平方向处理，位移需超过阈值
func SwipeDirection(dx, dy float64) (structs.Direction, bool) {
	if math.Abs(dx) > math.Abs(dy) {
		switch {
		case dx > SwipeThreshold:
			return structs.Right, true
		case dx < -SwipeThreshold:
			return structs.Left, true
		}
		return structs.Direction{}, false
	}
	switch {
	case dy > SwipeThreshold:
		return structs.Down, true
	case dy < -SwipeThreshold:
		return structs.Up, true
	}
	return structs.Direction{}, false
}

// Event 描述一次输入被如何处理
type Event struct {
	Direction *structs.Direction `json:"direction,omitempty"`
	Accepted  bool               `json:"accepted"`
	Toggled   bool               `json:"toggled"`
	Running   bool               `json:"running"`
}

type point struct {
	x, y float64
}

// Adapter 把按键和触摸事件写入 Target 的缓冲方向
type Adapter struct {
	target Target

	mu         sync.Mutex
	touchStart *point
}

func NewAdapter(target Target) *Adapter {
	return &Adapter{target: target}
}

// Key 处理一次按键。空格切换开始/暂停，未知按键被忽略
func (a *Adapter) Key(key string) Event {
	if key == " " || key == "Space" {
		return Event{Toggled: true, Running: a.target.Toggle()}
	}
	d, ok := KeyDirection(key)
	if !ok {
		return Event{}
	}
	return Event{Direction: &d, Accepted: a.target.RequestDirection(d)}
}

// TouchStart 记录触摸起点
func (a *Adapter) TouchStart(x, y float64) {
	a.mu.Lock()
	a.touchStart = &point{x: x, y: y}
	a.mu.Unlock()
}

// TouchEnd 根据起点计算滑动方向，没有起点时忽略
func (a *Adapter) TouchEnd(x, y float64) Event {
	a.mu.Lock()
	start := a.touchStart
	a.touchStart = nil
	a.mu.Unlock()

	if start == nil {
		return Event{}
	}
	d, ok := SwipeDirection(x-start.x, y-start.y)
	if !ok {
		return Event{}
	}
	return Event{Direction: &d, Accepted: a.target.RequestDirection(d)}
}
