package test

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/blinklabs-io/antelope-p2p/framer"
)

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline.
func DecodeHexString(hexData string) []byte {
	// Strip off any leading/trailing whitespace in hex string
	hexData = strings.TrimSpace(hexData)
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// SafeBuffer is a bytes.Buffer that can be written from one goroutine while another inspects it.
// Writes after Close fail with io.ErrClosedPipe
type SafeBuffer struct {
	mutex  sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.closed {
		return 0, io.ErrClosedPipe
	}
	return b.buf.Write(p)
}

func (b *SafeBuffer) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.closed = true
	return nil
}

func (b *SafeBuffer) Closed() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.closed
}

// Bytes returns a copy of everything written so far
func (b *SafeBuffer) Bytes() []byte {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

// Frames decodes everything written so far into frames. It panics on a framing error
func (b *SafeBuffer) Frames() []*framer.Frame {
	return DecodeFrames(b.Bytes())
}

// DecodeFrames splits data into frames. It panics on a framing error or an incomplete frame
func DecodeFrames(data []byte) []*framer.Frame {
	d := framer.NewDecoder(0)
	d.Feed(data)
	var ret []*framer.Frame
	for {
		frame, err := d.Next()
		if err != nil {
			panic(fmt.Sprintf("error decoding frames: %s", err))
		}
		if frame == nil {
			break
		}
		ret = append(ret, frame)
	}
	if d.Buffered() > 0 {
		panic(fmt.Sprintf("incomplete frame: %d bytes left over", d.Buffered()))
	}
	return ret
}
