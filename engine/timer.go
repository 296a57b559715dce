package engine

import "time"

// startTimerLocked 按当前速度启动计时器，调用前须先停掉旧的
func (e *Engine) startTimerLocked() {
	stop := make(chan struct{})
	e.stop = stop
	ticker := time.NewTicker(Interval(e.speed))
	go e.run(ticker, stop)
}

// stopTimerLocked 取消计时器并标记为停止
func (e *Engine) stopTimerLocked() {
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	e.running = false
}

func (e *Engine) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			// 计时器可能在等锁期间被替换
			select {
			case <-stop:
				e.mu.Unlock()
				return
			default:
			}
			e.stepLocked()
			e.mu.Unlock()
		}
	}
}
