package logging

import (
	"bytes"
	"sync"
)

// BufferPool recycles formatting buffers.
type BufferPool struct {
	pool sync.Pool
}

func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				return new(bytes.Buffer)
			},
		},
	}
}

func (p *BufferPool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

// Put resets b and returns it to the pool. Oversized buffers are dropped.
func (p *BufferPool) Put(b *bytes.Buffer) {
	if b.Cap() > 64<<10 {
		return
	}
	b.Reset()
	p.pool.Put(b)
}

var GlobalBufferPool = NewBufferPool()
