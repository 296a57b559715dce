// 关于蛇的更新
package snake

import (
	"errors"
	"math/rand"
	"time"

	"github.com/hoshinonyaruko/cobrinha/grid"
	"github.com/hoshinonyaruko/cobrinha/structs"
)

// ErrSelfCollision 蛇头撞到了自己的身体
var ErrSelfCollision = errors.New("snake: self collision")

// Session 保存一局游戏的全部可变状态。
// Session 本身不加锁，由 engine 串行调用。
type Session struct {
	grid     structs.Grid
	body     []structs.Cell // 0 为蛇头
	current  structs.Direction
	buffered structs.Direction
	food     structs.Cell
	hasFood  bool
	score    int
	rng      *rand.Rand
	store    Store
}

// Option 配置 Session
type Option func(*Session)

// WithRand 指定食物放置用的随机源
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

// WithStore 指定最高分的存储
func WithStore(store Store) Option {
	return func(s *Session) {
		s.store = store
	}
}

// NewSession 创建一个尚未初始化的会话，蛇为空，需要先 Reset
func NewSession(g structs.Grid, opts ...Option) *Session {
	s := &Session{
		grid:     g,
		current:  structs.Right,
		buffered: structs.Right,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.store == nil {
		s.store = NewMemoryStore()
	}
	return s
}

// Reset 把蛇放回中心，方向向右，分数清零并放置新的食物
func (s *Session) Reset() {
	s.body = []structs.Cell{grid.Center(s.grid)}
	s.current = structs.Right
	s.buffered = structs.Right
	s.score = 0
	s.PlaceFood()
}

// Empty reports whether the session has never been reset.
func (s *Session) Empty() bool {
	return len(s.body) == 0
}

// RequestDirection 把方向写入缓冲，下一次 tick 生效。
// 与当前方向相反时拒绝，返回 false
func (s *Session) RequestDirection(d structs.Direction) bool {
	if d.IsOpposite(s.current) {
		return false
	}
	s.buffered = d
	return true
}

// Step 推进一格。吃到食物时返回 ate=true。
// 撞到自己返回 ErrSelfCollision，状态保持不变
func (s *Session) Step() (ate bool, err error) {
	if s.Empty() {
		return false, nil
	}

	// 应用缓冲方向
	s.current = s.buffered
	head := grid.Step(s.grid, s.body[0], s.current)

	// 检查是否咬到自己，包括尾巴
	if s.Occupies(head) {
		return false, ErrSelfCollision
	}

	// 新头部放在最前面
	body := make([]structs.Cell, 0, len(s.body)+1)
	body = append(body, head)
	body = append(body, s.body...)
	s.body = body

	if s.hasFood && head == s.food {
		s.score++
		s.PlaceFood()
		return true, nil
	}

	// 没吃到食物，丢掉尾巴
	s.body = s.body[:len(s.body)-1]
	return false, nil
}

// Occupies reports whether c is one of the snake cells.
func (s *Session) Occupies(c structs.Cell) bool {
	for _, part := range s.body {
		if part == c {
			return true
		}
	}
	return false
}

func (s *Session) Grid() structs.Grid { return s.grid }

func (s *Session) Score() int { return s.score }

func (s *Session) Len() int { return len(s.body) }

func (s *Session) Current() structs.Direction { return s.current }

func (s *Session) Buffered() structs.Direction { return s.buffered }

// Head 返回蛇头，蛇为空时 ok 为 false
func (s *Session) Head() (structs.Cell, bool) {
	if s.Empty() {
		return structs.Cell{}, false
	}
	return s.body[0], true
}

// Food 返回食物位置，尚未放置时 ok 为 false
func (s *Session) Food() (structs.Cell, bool) {
	return s.food, s.hasFood
}

// Body 返回蛇身的副本
func (s *Session) Body() []structs.Cell {
	body := make([]structs.Cell, len(s.body))
	copy(body, s.body)
	return body
}
