package event

// Listener 事件订阅者
type Listener func(e Event)

// Dispatcher 事件分发器
//
// Publish 只入队，Flush 才真正回调订阅者；订阅者在回调中再次 Publish
// 的事件会在同一次 Flush 中按顺序继续分发。
// 回调中再次调用 Flush 不会重复分发：嵌套调用直接返回，由外层继续处理队列。
// 非并发安全：只能由驱动模拟的 goroutine 使用。
type Dispatcher struct {
	listeners map[EventType][]Listener
	any       []Listener
	queue     []Event
	now       float64
	flushing  bool
}

// NewDispatcher 创建新的分发器
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[EventType][]Listener),
	}
}

// Subscribe 订阅指定类型的事件
func (d *Dispatcher) Subscribe(eventType EventType, listener Listener) {
	d.listeners[eventType] = append(d.listeners[eventType], listener)
}

// SubscribeAll 订阅所有类型的事件
func (d *Dispatcher) SubscribeAll(listener Listener) {
	d.any = append(d.any, listener)
}

// SetTime 设置当前模拟时间，之后发布的事件以此作为时间戳
func (d *Dispatcher) SetTime(now float64) {
	d.now = now
}

// Publish 将事件加入队列
func (d *Dispatcher) Publish(e Event) {
	e.Time = d.now
	d.queue = append(d.queue, e)
}

// Pending 返回尚未分发的事件数
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Flush 按发布顺序分发队列中的所有事件并清空队列
// 返回本次分发的事件（副本）；在订阅者回调中调用时返回 nil
func (d *Dispatcher) Flush() []Event {
	if d.flushing || len(d.queue) == 0 {
		return nil
	}
	d.flushing = true
	defer func() { d.flushing = false }()

	var delivered []Event
	for i := 0; i < len(d.queue); i++ {
		e := d.queue[i]
		delivered = append(delivered, e)
		for _, l := range d.listeners[e.Type] {
			l(e)
		}
		for _, l := range d.any {
			l(e)
		}
	}
	d.queue = d.queue[:0]
	return delivered
}

// Discard 丢弃尚未分发的事件
func (d *Dispatcher) Discard() {
	d.queue = d.queue[:0]
}
