package pipeline

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

// dispatcher serialises delivery onto the bus. The first publisher drains the
// queue on its own goroutine; anything published while a drain is running,
// including from inside a handler, is queued for that drain. Only the draining
// goroutine ever calls bus.Publish, so a handler may call back into the session.
type dispatcher struct {
	bus   evbus.Bus
	topic string

	mu       sync.Mutex
	queue    []Event
	draining bool
}

func newDispatcher(topic string) *dispatcher {
	return &dispatcher{
		bus:   evbus.New(),
		topic: topic,
	}
}

func (d *dispatcher) publish(e Event) {
	d.mu.Lock()
	d.queue = append(d.queue, e)
	if d.draining {
		d.mu.Unlock()
		return
	}
	d.draining = true
	d.mu.Unlock()

	d.drain()
}

func (d *dispatcher) drain() {
	finished := false
	// A panicking handler must not leave the dispatcher stuck in draining.
	defer func() {
		if !finished {
			d.mu.Lock()
			d.draining = false
			d.mu.Unlock()
		}
	}()

	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.draining = false
			finished = true
			d.mu.Unlock()
			return
		}
		e := d.queue[0]
		d.queue[0] = Event{}
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.bus.Publish(d.topic, e)
	}
}

func (d *dispatcher) subscribe(fn func(Event)) (func(), error) {
	if err := d.bus.Subscribe(d.topic, fn); err != nil {
		return nil, err
	}
	return func() {
		_ = d.bus.Unsubscribe(d.topic, fn)
	}, nil
}
