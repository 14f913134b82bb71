package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// FrameSource is anything that hands out frames the caller must close.
// Camera and Latest both satisfy it.
type FrameSource interface {
	ReadFrame() (*gocv.Mat, error)
}

// Latest keeps a copy of the most recent captured frame so preview readers
// never touch the camera the pipeline owns.
type Latest struct {
	mu  sync.Mutex
	mat gocv.Mat
	has bool
	seq uint64
}

// NewLatest creates an empty frame holder.
func NewLatest() *Latest {
	return &Latest{mat: gocv.NewMat()}
}

// Put copies frame into the holder.
func (l *Latest) Put(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	frame.CopyTo(&l.mat)
	l.has = true
	l.seq++
}

// ReadFrame returns a clone of the latest frame, or ErrNoFrames before the
// first Put.
func (l *Latest) ReadFrame() (*gocv.Mat, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.has {
		return nil, ErrNoFrames
	}
	m := l.mat.Clone()
	return &m, nil
}

// Seq counts Put calls; readers use it to skip frames they already sent.
func (l *Latest) Seq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

// Close releases the held frame.
func (l *Latest) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mat.Close()
	l.mat = gocv.NewMat()
	l.has = false
}
