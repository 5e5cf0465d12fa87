package handler

import (
	"bytes"
	"sync"
)

const (
	initialBufferSize = 1 << 10
	// Duel snapshots with long argument logs can grow a buffer well past the
	// typical response; those are dropped instead of pinned in the pool.
	maxPooledBufferSize = 64 << 10
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, initialBufferSize))
	},
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBufferSize {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
