// ABOUTME: Fixed pool of reusable per-ear output buffers
// ABOUTME: Cycled round-robin so the steady-state loop never allocates
package engine

// bufferPool pre-allocates setCount complete buffer sets (one buffer
// per ear each) and hands them out round-robin. The pool size bounds
// how many ticks' worth of output can be in flight at once.
type bufferPool struct {
	sets [][][]int16
	next int
}

func newBufferPool(setCount, channels, samples int) *bufferPool {
	p := &bufferPool{sets: make([][][]int16, setCount)}
	for i := range p.sets {
		set := make([][]int16, channels)
		for ch := range set {
			set[ch] = make([]int16, samples)
		}
		p.sets[i] = set
	}
	return p
}

// nextSet returns the next buffer set in rotation. Contents are stale
// from a prior tick; callers zero what they use.
func (p *bufferPool) nextSet() [][]int16 {
	set := p.sets[p.next]
	p.next = (p.next + 1) % len(p.sets)
	return set
}
