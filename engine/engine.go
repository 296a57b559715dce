// 定时推进蛇的状态，所有操作共用一把锁串行执行
package engine

import (
	"errors"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hoshinonyaruko/cobrinha/snake"
	"github.com/hoshinonyaruko/cobrinha/structs"
)

const (
	MinSpeed        = 1
	DefaultSpeed    = 8
	DefaultMaxSpeed = 20

	// 超过 1000 时间隔不足 1 毫秒
	SpeedLimit = 1000
)

// Observer 接收绘图和结束通知。调用时持有 engine 的锁，不能再回调 Engine
type Observer interface {
	// Reset 之后和每次移动之后调用
	Draw(snap structs.Snapshot)
	// 撞到自己时调用一次
	GameOver(result structs.Result, snap structs.Snapshot)
}

// Config 是计时器设置
type Config struct {
	Speed    int // 每秒 tick 数
	MaxSpeed int
}

// Engine 持有会话和推进它的计时器
type Engine struct {
	mu       sync.Mutex
	session  *snake.Session
	observer Observer
	speed    int
	maxSpeed int
	running  bool
	gameOver bool
	best     int
	stop     chan struct{} // 关闭即取消当前计时器
	ticks    uint64
}

// New 创建 engine，不会 Reset 会话
func New(session *snake.Session, cfg Config, observer Observer) *Engine {
	if cfg.MaxSpeed < MinSpeed {
		cfg.MaxSpeed = DefaultMaxSpeed
	}
	if cfg.MaxSpeed > SpeedLimit {
		cfg.MaxSpeed = SpeedLimit
	}
	if cfg.Speed == 0 {
		cfg.Speed = DefaultSpeed
	}
	if observer == nil {
		observer = nopObserver{}
	}
	e := &Engine{
		session:  session,
		observer: observer,
		maxSpeed: cfg.MaxSpeed,
	}
	e.speed = e.clamp(cfg.Speed)
	return e
}

// Interval 返回 round(1000/speed) 毫秒，至少 1 毫秒
func Interval(speed int) time.Duration {
	if speed < MinSpeed {
		speed = MinSpeed
	}
	ms := math.Round(1000 / float64(speed))
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}

// Start 启动计时器，运行中不做处理；蛇为空时先 Reset
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked()
}

func (e *Engine) startLocked() {
	if e.running {
		return
	}
	if e.session.Empty() {
		e.resetLocked()
	}
	e.running = true
	e.gameOver = false
	e.startTimerLocked()
	log.WithField("speed", e.speed).Debug("engine started")
}

// Pause 停止计时器
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseLocked()
}

func (e *Engine) pauseLocked() {
	if !e.running {
		return
	}
	e.stopTimerLocked()
	log.Debug("engine paused")
}

// Toggle 切换开始/暂停，返回切换后是否在运行
func (e *Engine) Toggle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		e.pauseLocked()
	} else {
		e.startLocked()
	}
	return e.running
}

// Reset 重置棋盘并绘制，不动计时器
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.session.Reset()
	e.gameOver = false
	e.loadBestLocked()
	e.observer.Draw(e.snapshotLocked())
}

// SetSpeed 修改速度并返回实际生效的值。
// 运行中会替换计时器，游戏状态不变
func (e *Engine) SetSpeed(speed int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	speed = e.clamp(speed)
	if speed == e.speed {
		return speed
	}
	e.speed = speed
	if e.running {
		e.stopTimerLocked()
		e.running = true
		e.startTimerLocked()
	}
	log.WithField("speed", speed).Debug("engine speed changed")
	return speed
}

// RequestDirection 缓冲方向，反向时拒绝
func (e *Engine) RequestDirection(d structs.Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.RequestDirection(d)
}

// Tick 手动推进一步
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stepLocked()
}

func (e *Engine) stepLocked() {
	e.ticks++
	ate, err := e.session.Step()
	if errors.Is(err, snake.ErrSelfCollision) {
		e.gameOverLocked()
		return
	}
	if ate {
		log.WithField("score", e.session.Score()).Debug("food eaten")
	}
	e.observer.Draw(e.snapshotLocked())
}

func (e *Engine) gameOverLocked() {
	e.stopTimerLocked()
	e.gameOver = true

	result := structs.Result{
		Score:    e.session.Score(),
		Best:     e.best,
		Length:   e.session.Len(),
		Finished: time.Now().Unix(),
	}
	best, improved, err := e.session.SaveBest()
	if err != nil {
		log.WithError(err).Warn("failed to save best score")
	} else {
		e.best = best
		result.Best = best
		result.NewBest = improved
	}

	log.WithFields(log.Fields{
		"score":    result.Score,
		"best":     result.Best,
		"new_best": result.NewBest,
	}).Info("game over")
	e.observer.GameOver(result, e.snapshotLocked())
}

func (e *Engine) loadBestLocked() {
	best, err := e.session.Best()
	if err != nil {
		log.WithError(err).Warn("failed to load best score")
		return
	}
	e.best = best
}

// Snapshot 返回当前状态的副本
func (e *Engine) Snapshot() structs.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() structs.Snapshot {
	snap := structs.Snapshot{
		Grid:      e.session.Grid(),
		Snake:     e.session.Body(),
		Direction: e.session.Current(),
		Score:     e.session.Score(),
		Best:      e.best,
		Speed:     e.speed,
		Running:   e.running,
		GameOver:  e.gameOver,
	}
	if food, ok := e.session.Food(); ok {
		snap.Food = &food
	}
	return snap
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) Speed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Ticks 返回累计推进次数
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

// Close 停止计时器
func (e *Engine) Close() {
	e.Pause()
}

func (e *Engine) clamp(speed int) int {
	if speed < MinSpeed {
		return MinSpeed
	}
	if speed > e.maxSpeed {
		return e.maxSpeed
	}
	return speed
}

type nopObserver struct{}

func (nopObserver) Draw(structs.Snapshot) {}

func (nopObserver) GameOver(structs.Result, structs.Snapshot) {}
