package service

import (
	"sync"
	"time"
)

// Slot 标识一次变更所属的持久化槽位。
type Slot string

const (
	SlotEntries          Slot = "entries"
	SlotCustomItems      Slot = "custom-items"
	SlotDailyInfo        Slot = "daily-info"
	SlotBasicInfo        Slot = "basic-info"
	SlotBasicInfoHistory Slot = "basic-info-history"
	SlotSettings         Slot = "settings"
)

// Change 描述一次状态变更，订阅者据此重新渲染页面。
type Change struct {
	Slot   Slot      `json:"slot"`
	Action string    `json:"action"`
	ID     string    `json:"id,omitempty"`
	At     time.Time `json:"at"`
}

const subscriberBuffer = 16

// Broker 将状态变更广播给同步回调与异步订阅者。
// 异步订阅者的缓冲区满时丢弃事件，不阻塞写入方。
type Broker struct {
	mu        sync.RWMutex
	nextID    int
	subs      map[int]chan Change
	callbacks []func(Change)
	now       func() time.Time

	closed    chan struct{}
	closeOnce sync.Once
}

// NewBroker 构造 Broker。
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan Change), now: time.Now, closed: make(chan struct{})}
}

// Close 通知所有长连接订阅者退出，服务关闭时调用。可重复调用。
func (b *Broker) Close() {
	if b == nil {
		return
	}
	b.closeOnce.Do(func() { close(b.closed) })
}

// Done 在 Close 之后关闭。
func (b *Broker) Done() <-chan struct{} {
	if b == nil {
		return nil
	}
	return b.closed
}

// OnChange 注册同步回调，每次 Publish 时按注册顺序调用。
func (b *Broker) OnChange(fn func(Change)) {
	if b == nil || fn == nil {
		return
	}
	b.mu.Lock()
	b.callbacks = append(b.callbacks, fn)
	b.mu.Unlock()
}

// Subscribe 返回变更通道以及取消订阅函数；取消后通道被关闭。
func (b *Broker) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, subscriberBuffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish 广播变更。nil Broker 上调用是空操作。
func (b *Broker) Publish(change Change) {
	if b == nil {
		return
	}
	if change.At.IsZero() {
		change.At = b.now()
	}

	b.mu.RLock()
	callbacks := append([]func(Change){}, b.callbacks...)
	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
	b.mu.RUnlock()

	for _, fn := range callbacks {
		fn(change)
	}
}

// Subscribers 返回当前异步订阅者数量。
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker) publish(slot Slot, action, id string) {
	b.Publish(Change{Slot: slot, Action: action, ID: id})
}
