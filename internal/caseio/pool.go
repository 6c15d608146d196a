package caseio

import "sync"

// bufferPool recycles decompression scratch space between snapshot reads.
type bufferPool struct {
	pool sync.Pool
}

func newBufferPool() *bufferPool {
	return &bufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				b := make([]byte, 0)
				return &b
			},
		},
	}
}

// Get returns a buffer of length n. Callers bound n before asking.
func (p *bufferPool) Get(n int) *[]byte {
	b := p.pool.Get().(*[]byte)
	if cap(*b) < n {
		*b = make([]byte, n)
	}
	*b = (*b)[:n]
	return b
}

func (p *bufferPool) Put(b *[]byte) {
	*b = (*b)[:0]
	p.pool.Put(b)
}
