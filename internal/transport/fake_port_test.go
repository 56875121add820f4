package transport

import (
	"sync"
	"time"

	"go.bug.st/serial"
)

// readStep is one scripted result of fakePort.Read.
type readStep struct {
	data []byte
	err  error
}

// fakePort replays scripted reads, then behaves like an idle port whose
// reads time out with no data.
type fakePort struct {
	mu          sync.Mutex
	steps       []readStep
	closeCount  int
	readTimeout time.Duration
	idleDelay   time.Duration
}

func newFakePort(steps ...readStep) *fakePort {
	return &fakePort{steps: steps, idleDelay: 2 * time.Millisecond}
}

func data(s string) readStep {
	return readStep{data: []byte(s)}
}

func failure(err error) readStep {
	return readStep{err: err}
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	if len(p.steps) == 0 {
		p.mu.Unlock()
		time.Sleep(p.idleDelay)
		return 0, nil
	}
	step := p.steps[0]
	p.steps = p.steps[1:]
	p.mu.Unlock()

	if step.err != nil {
		return 0, step.err
	}
	n := copy(b, step.data)
	if n < len(step.data) {
		// Put the remainder back for the next read.
		p.mu.Lock()
		p.steps = append([]readStep{{data: step.data[n:]}}, p.steps...)
		p.mu.Unlock()
	}
	return n, nil
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCount++
	return nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readTimeout = t
	return nil
}

func (p *fakePort) closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCount
}

func (p *fakePort) remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.steps)
}

// fakeFactory hands out ports in order and records what was opened.
type fakeFactory struct {
	mu     sync.Mutex
	ports  []*fakePort
	err    error
	opened []string
	modes  []serial.Mode
}

func (f *fakeFactory) open(name string, mode *serial.Mode) (SerialPort, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, name)
	f.modes = append(f.modes, *mode)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.ports) == 0 {
		return newFakePort(), nil
	}
	p := f.ports[0]
	f.ports = f.ports[1:]
	return p, nil
}

func (f *fakeFactory) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.opened)
}
