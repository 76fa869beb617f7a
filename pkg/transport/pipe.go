package transport

import (
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// NetworkCondition configures adverse-network simulation on a Pipe. It
// applies to bytes written from either endpoint.
type NetworkCondition struct {
	// DropRate is the probability (0.0-1.0) that a Write's bytes are
	// silently discarded instead of delivered.
	DropRate float64

	// DelayMin and DelayMax bound a uniformly distributed delay applied to
	// each Write before its bytes reach the peer.
	DelayMin time.Duration
	DelayMax time.Duration
}

// Pipe provides two connected net.Conn endpoints backed by pion's in-memory
// test.Bridge, with optional network condition simulation layered on top.
// It gives tests a virtual TCP-like stream without binding a real socket;
// NetworkCondition can drop or delay writes, but bytes are never altered.
type Pipe struct {
	bridge *test.Bridge

	mu        sync.RWMutex
	condition NetworkCondition
	rng       *rand.Rand

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPipe creates a Pipe whose two endpoints are immediately connected and
// starts a background goroutine that repeatedly ticks the bridge so queued
// bytes are delivered without the caller having to pump it manually.
func NewPipe() *Pipe {
	p := &Pipe{
		bridge: test.NewBridge(),
		rng:    rand.New(rand.NewSource(1)),
		stopCh: make(chan struct{}),
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.bridge.Tick()
			}
		}
	}()

	return p
}

// Conn0 returns the first endpoint.
func (p *Pipe) Conn0() net.Conn { return &pipeConn{Conn: p.bridge.GetConn0(), pipe: p} }

// Conn1 returns the second endpoint.
func (p *Pipe) Conn1() net.Conn { return &pipeConn{Conn: p.bridge.GetConn1(), pipe: p} }

// SetCondition configures network condition simulation for both endpoints.
func (p *Pipe) SetCondition(cond NetworkCondition) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.condition = cond
}

func (p *Pipe) condSnapshot() NetworkCondition {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.condition
}

// Close stops the delivery goroutine and closes both endpoints.
func (p *Pipe) Close() error {
	close(p.stopCh)
	p.wg.Wait()

	err0 := p.bridge.GetConn0().Close()
	err1 := p.bridge.GetConn1().Close()
	if err0 != nil {
		return err0
	}
	return err1
}

// pipeConn wraps one side of the bridge to apply NetworkCondition to
// outbound writes.
type pipeConn struct {
	net.Conn
	pipe *Pipe
}

func (c *pipeConn) Write(b []byte) (int, error) {
	cond := c.pipe.condSnapshot()

	if cond.DropRate > 0 && c.pipe.rng.Float64() < cond.DropRate {
		return len(b), nil
	}

	if cond.DelayMax > 0 {
		delay := cond.DelayMin
		if cond.DelayMax > cond.DelayMin {
			delay += time.Duration(c.pipe.rng.Int63n(int64(cond.DelayMax - cond.DelayMin)))
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}

	return c.Conn.Write(b)
}
