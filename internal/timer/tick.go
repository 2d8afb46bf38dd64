package timer

// TickSource delivers the one-second tick that advances running timers.
// Subscribe registers fn and returns a function that removes it again.
type TickSource interface {
	Subscribe(fn func()) (cancel func())
}

// Pulse is a TickSource fired by its owner. The TUI fires it once a second
// from its event loop and tests fire it by hand, so ticks are always serialized
// with every other call made on the same goroutine.
type Pulse struct {
	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	fn func()
}

// NewPulse returns a pulse without subscribers.
func NewPulse() *Pulse {
	return &Pulse{}
}

func (p *Pulse) Subscribe(fn func()) func() {
	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range p.subs {
			if s.id == id {
				p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

// Fire delivers one tick. Subscribers added while firing wait for the next tick.
func (p *Pulse) Fire() {
	subs := append([]subscription(nil), p.subs...)
	for _, s := range subs {
		s.fn()
	}
}

// FireN delivers n ticks.
func (p *Pulse) FireN(n int) {
	for i := 0; i < n; i++ {
		p.Fire()
	}
}

// Subscribers returns the number of registered callbacks.
func (p *Pulse) Subscribers() int {
	return len(p.subs)
}
