package service

import (
	"sync"
	"time"
)

// Countdown 限时测评的倒计时，独立可启停。
// 到达截止时间后回调 onExpire，最多触发一次；Stop 后不再触发。
type Countdown struct {
	deadline time.Time
	interval time.Duration
	onExpire func()

	stopCh   chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	started bool
}

func NewCountdown(deadline time.Time, onExpire func()) *Countdown {
	return NewCountdownWithInterval(deadline, time.Second, onExpire)
}

// NewCountdownWithInterval 自定义检查间隔，测试用短间隔
func NewCountdownWithInterval(deadline time.Time, interval time.Duration, onExpire func()) *Countdown {
	return &Countdown{
		deadline: deadline,
		interval: interval,
		onExpire: onExpire,
		stopCh:   make(chan struct{}),
	}
}

// Start 启动倒计时循环，重复调用无效
func (c *Countdown) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	go c.loop()
}

func (c *Countdown) loop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			if !now.Before(c.deadline) {
				c.onExpire()
				return
			}
		}
	}
}

// Stop 停止倒计时，幂等
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// Remaining 剩余时间，已过期返回 0
func (c *Countdown) Remaining(now time.Time) time.Duration {
	if !now.Before(c.deadline) {
		return 0
	}
	return c.deadline.Sub(now)
}
