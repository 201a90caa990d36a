// Package reader implements the grammar engine's bounds-checked,
// random-access byte source: a page-cached view over a file that may be
// far larger than RAM.
package reader

import (
	"container/list"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/tylerk07/hexgrammar/internal/model"
)

const (
	// DefaultPageSize is the page granularity for cache-miss reads.
	DefaultPageSize = 64 * 1024
	// DefaultMaxPages bounds resident memory to DefaultPageSize*DefaultMaxPages.
	DefaultMaxPages = 16
)

// Reader is a bounds-checked, random-access view over a file, backed by a
// small LRU page cache rather than a full in-memory copy or a forward-only
// bufio.Reader. The file size is snapshotted at Open and treated as
// constant for the Reader's lifetime (spec.md §4.1).
type Reader struct {
	f    *os.File
	size int64
	path string

	pageSize int64
	maxPages int

	mu     sync.Mutex
	pages  map[int64]*list.Element // page index -> LRU element
	lru    *list.List
}

type page struct {
	index int64
	data  []byte
}

// Open records the file's size and prepares the page cache. Pass 0 for
// pageSize/maxPages to use DefaultPageSize/DefaultMaxPages.
func Open(path string, pageSize int64, maxPages int) (*Reader, *model.ParseError) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.NewError(model.ErrFileNotFound, path, "file not found: %s", path)
		}
		return nil, model.NewError(model.ErrFileNotFound, path, "open %s: %v", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, model.NewError(model.ErrFileNotFound, path, "stat %s: %v", path, err)
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Reader{
		f:        f,
		size:     info.Size(),
		path:     path,
		pageSize: pageSize,
		maxPages: maxPages,
		pages:    make(map[int64]*list.Element),
		lru:      list.New(),
	}, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Size is the byte length recorded at Open.
func (r *Reader) Size() int64 { return r.size }

// Path is the file path this Reader was opened against.
func (r *Reader) Path() string { return r.path }

// Read returns up to length bytes starting at offset. Negative arguments
// are rejected; offset >= Size returns an empty slice; a read extending
// past EOF is truncated; zero-length reads return empty. The returned
// slice is an owned copy, safe to retain after the Reader closes.
func (r *Reader) Read(offset, length int64) ([]byte, *model.ParseError) {
	if offset < 0 || length < 0 {
		return nil, model.NewError(model.ErrInvalidOffset, "", "negative read argument: offset=%d length=%d", offset, length)
	}
	if length == 0 || offset >= r.size {
		return []byte{}, nil
	}
	end := offset + length
	if end > r.size {
		end = r.size
	}
	out := make([]byte, 0, end-offset)
	cur := offset
	for cur < end {
		pageIdx := cur / r.pageSize
		pageOff := pageIdx * r.pageSize
		data, err := r.getPage(pageIdx)
		if err != nil {
			return nil, model.NewError(model.ErrInvalidOffset, "", "read at %d: %v", cur, err)
		}
		localStart := cur - pageOff
		localEnd := int64(len(data))
		if pageOff+localEnd > end {
			localEnd = end - pageOff
		}
		if localStart >= localEnd {
			break
		}
		out = append(out, data[localStart:localEnd]...)
		cur = pageOff + localEnd
	}
	return out, nil
}

// ByteAt returns the single byte at offset, or ok=false at or past EOF.
func (r *Reader) ByteAt(offset int64) (b byte, ok bool) {
	if offset < 0 || offset >= r.size {
		return 0, false
	}
	data, err := r.Read(offset, 1)
	if err != nil || len(data) == 0 {
		return 0, false
	}
	return data[0], true
}

// getPage returns the page's bytes, loading and caching it on a miss and
// evicting the least-recently-used page once the cache is full.
func (r *Reader) getPage(index int64) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.pages[index]; ok {
		r.lru.MoveToFront(elem)
		return elem.Value.(*page).data, nil
	}

	pageOff := index * r.pageSize
	buf := make([]byte, r.pageSize)
	n, err := r.f.ReadAt(buf, pageOff)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	buf = buf[:n]

	elem := r.lru.PushFront(&page{index: index, data: buf})
	r.pages[index] = elem

	if r.lru.Len() > r.maxPages {
		oldest := r.lru.Back()
		if oldest != nil {
			r.lru.Remove(oldest)
			delete(r.pages, oldest.Value.(*page).index)
		}
	}
	return buf, nil
}
