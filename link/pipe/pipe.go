// Package pipe provides a connected pair of in-memory link devices.
package pipe

import (
	"dnet/link"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type pipe struct {
	name string

	frames chan []byte // frames this end receives.
	ack    chan int    // counterpart's Recv reports the copied length here.

	writeMu sync.Mutex

	closed chan struct{}
	once   sync.Once

	rdeadLine *chanDeadLine
	wdeadLine *chanDeadLine

	counterpart *pipe
}

var _ link.Device = (*pipe)(nil)

func newPipe(name string, clock clock.Clock) *pipe {
	return &pipe{
		name:      name,
		frames:    make(chan []byte),
		ack:       make(chan int),
		closed:    make(chan struct{}),
		rdeadLine: newChanDeadLine(clock),
		wdeadLine: newChanDeadLine(clock),
	}
}

// Pipe creates a pair of connected devices. Sends are synchronous and
// unbuffered: a Send returns once the other end has received the frame.
func Pipe(name1, name2 string, clock clock.Clock) (d1, d2 link.Device) {
	p1, p2 := newPipe(name1, clock), newPipe(name2, clock)
	p1.counterpart, p2.counterpart = p2, p1
	return p1, p2
}

func (p *pipe) Name() string { return p.name }

func (p *pipe) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func (p *pipe) Recv(b []byte) (n int, err error) {
	if err := p.checkOK(p.rdeadLine); err != nil {
		return 0, err
	}

	select {
	case frame := <-p.frames:
		n := copy(b, frame)
		p.counterpart.ack <- n
		return n, nil
	case <-p.closed:
		return 0, link.ErrDeviceClosed
	case <-p.counterpart.closed:
		return 0, link.ErrDeviceClosed
	case <-p.rdeadLine.wait():
		return 0, link.ErrDeadLineExceeded
	}
}

// Send delivers frame to the other end. It reports the number of bytes the
// receiver kept, which is less than len(frame) when its buffer was short.
func (p *pipe) Send(frame []byte) (n int, err error) {
	if err := p.checkOK(p.wdeadLine); err != nil {
		return 0, err
	}

	// One frame in flight at a time.
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	select {
	case p.counterpart.frames <- frame:
		return <-p.ack, nil
	case <-p.closed:
		return 0, link.ErrDeviceClosed
	case <-p.counterpart.closed:
		return 0, link.ErrDeviceClosed
	case <-p.wdeadLine.wait():
		return 0, link.ErrDeadLineExceeded
	}
}

func (p *pipe) checkOK(d *chanDeadLine) error {
	switch {
	case isClosed(p.closed):
		return link.ErrDeviceClosed
	case isClosed(p.counterpart.closed):
		return link.ErrDeviceClosed
	case isClosed(d.wait()):
		return link.ErrDeadLineExceeded
	}
	return nil
}

func (p *pipe) SetReadDeadLine(t time.Time)  { p.rdeadLine.set(t) }
func (p *pipe) SetWriteDeadLine(t time.Time) { p.wdeadLine.set(t) }

type chanDeadLine struct {
	clock clock.Clock

	t *clock.Timer
	m sync.Mutex

	closed chan struct{}
}

func newChanDeadLine(clock clock.Clock) *chanDeadLine {
	return &chanDeadLine{
		clock:  clock,
		closed: make(chan struct{}),
	}
}

func (d *chanDeadLine) set(t time.Time) {
	d.m.Lock()
	defer d.m.Unlock()

	if d.t != nil {
		d.t.Stop()
	}
	d.t = nil

	if isClosed(d.closed) {
		d.closed = make(chan struct{})
	}

	if t.IsZero() {
		// zero value means no limit.
		return
	}

	closed := d.closed
	d.t = d.clock.AfterFunc(d.clock.Until(t), func() {
		close(closed)
	})
}

func (d *chanDeadLine) wait() <-chan struct{} {
	d.m.Lock()
	defer d.m.Unlock()
	return d.closed
}

func isClosed(c <-chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}
