package hw

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// FileMode selects how Open treats an existing (or missing) file.
type FileMode int

const (
	// ModeRead fails if the path does not exist; cursor starts at 0.
	ModeRead FileMode = iota
	// ModeWrite creates or truncates the file; cursor starts at 0.
	ModeWrite
	// ModeAppend creates the file if absent; cursor starts at the file's
	// current end.
	ModeAppend
)

// DefaultCapacity is the total simulated flash capacity reported by
// TotalBytes when a Filesystem is constructed with NewFilesystem(0).
const DefaultCapacity = 4 * 1024 * 1024

// ErrNotExist is returned by Open in ModeRead when the path is absent.
var ErrNotExist = errors.New("fs: file does not exist")

// Filesystem is an in-memory, per-node flash filesystem. It is a
// process-wide resource for exactly one node — never shared between nodes.
// Directories are implicit: Mkdir/Rmdir are no-ops that report success.
type Filesystem struct {
	mu       sync.Mutex
	files    map[string][]byte
	capacity int
}

// NewFilesystem returns an empty Filesystem with the given capacity in
// bytes. A capacity of 0 uses DefaultCapacity.
func NewFilesystem(capacity int) *Filesystem {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Filesystem{files: make(map[string][]byte), capacity: capacity}
}

func normalizePath(path string) string {
	return strings.TrimLeft(path, "/")
}

// Exists reports whether path has been written.
func (fs *Filesystem) Exists(path string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, ok := fs.files[normalizePath(path)]
	return ok
}

// Remove deletes path, reporting whether it existed.
func (fs *Filesystem) Remove(path string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p := normalizePath(path)
	if _, ok := fs.files[p]; !ok {
		return false
	}
	delete(fs.files, p)
	return true
}

// Mkdir is a no-op: directories are implicit in this filesystem model.
func (fs *Filesystem) Mkdir(string) bool { return true }

// Rmdir is a no-op for the same reason as Mkdir.
func (fs *Filesystem) Rmdir(string) bool { return true }

// Format clears every entry.
func (fs *Filesystem) Format() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files = make(map[string][]byte)
}

// UsedBytes sums the size of every stored file.
func (fs *Filesystem) UsedBytes() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := 0
	for _, b := range fs.files {
		n += len(b)
	}
	return n
}

// TotalBytes reports the fixed simulated capacity.
func (fs *Filesystem) TotalBytes() int { return fs.capacity }

// ReadFile is a coordinator-side convenience that reads path in one call
// without going through a Handle.
func (fs *Filesystem) ReadFile(path string) ([]byte, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	b, ok := fs.files[normalizePath(path)]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true
}

// WriteFile is a coordinator-side convenience that writes path in one call,
// truncating any short write at the filesystem's remaining capacity and
// reporting the number of bytes actually stored.
func (fs *Filesystem) WriteFile(path string, data []byte) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p := normalizePath(path)
	used := 0
	for k, v := range fs.files {
		if k != p {
			used += len(v)
		}
	}
	room := fs.capacity - used
	if room < 0 {
		room = 0
	}
	n := len(data)
	if n > room {
		n = room
	}
	buf := make([]byte, n)
	copy(buf, data[:n])
	fs.files[p] = buf
	return n
}

// Handle is an open file cursor. Handles are not thread-safe: callers must
// serialize their own access to a single Handle. Opening the same path
// twice yields two independent handles that do not see each other's writes
// until Close flushes.
type Handle struct {
	fs     *Filesystem
	path   string
	buf    []byte
	pos    int
	closed bool
}

// Open opens path under mode. In ModeRead it returns (nil, false) if path
// does not exist. In ModeWrite the file is created or truncated. In
// ModeAppend the file is created if absent and the cursor starts at the
// end of the existing content.
func (fs *Filesystem) Open(path string, mode FileMode) (*Handle, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p := normalizePath(path)

	switch mode {
	case ModeRead:
		b, ok := fs.files[p]
		if !ok {
			return nil, false
		}
		buf := make([]byte, len(b))
		copy(buf, b)
		return &Handle{fs: fs, path: p, buf: buf, pos: 0}, true
	case ModeWrite:
		return &Handle{fs: fs, path: p, buf: nil, pos: 0}, true
	case ModeAppend:
		b := fs.files[p]
		buf := make([]byte, len(b))
		copy(buf, b)
		return &Handle{fs: fs, path: p, buf: buf, pos: len(buf)}, true
	default:
		return nil, false
	}
}

// Read copies up to len(p) bytes starting at the cursor into p, advancing
// the cursor, and returns the number of bytes read.
func (h *Handle) Read(p []byte) (int, error) {
	if h.closed {
		return 0, errors.New("fs: read on closed handle")
	}
	if h.pos >= len(h.buf) {
		return 0, nil
	}
	n := copy(p, h.buf[h.pos:])
	h.pos += n
	return n, nil
}

// Write appends/overwrites p at the cursor, growing the buffer as needed,
// and advances the cursor. The write is only visible to other handles once
// Close flushes it back into the filesystem.
func (h *Handle) Write(p []byte) (int, error) {
	if h.closed {
		return 0, errors.New("fs: write on closed handle")
	}
	end := h.pos + len(p)
	if end > len(h.buf) {
		grown := make([]byte, end)
		copy(grown, h.buf)
		h.buf = grown
	}
	copy(h.buf[h.pos:end], p)
	h.pos = end
	return len(p), nil
}

// Seek moves the cursor to an absolute byte offset.
func (h *Handle) Seek(pos int64) error {
	if pos < 0 {
		return errors.New("fs: negative seek offset")
	}
	h.pos = int(pos)
	return nil
}

// Position returns the current cursor offset.
func (h *Handle) Position() int64 { return int64(h.pos) }

// Size returns the current buffered file size.
func (h *Handle) Size() int64 { return int64(len(h.buf)) }

// Close flushes the handle's buffer back into the filesystem map. Last
// writer on close wins for a given path. Closing an already-closed handle
// is a no-op.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	buf := make([]byte, len(h.buf))
	copy(buf, h.buf)
	h.fs.files[h.path] = buf
	return nil
}
