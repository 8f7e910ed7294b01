package stats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Chunk is the half-open byte range [Start, End) of one line-aligned slice of
// the input.
type Chunk struct {
	Start int64
	End   int64
}

func (c Chunk) Len() int64 {
	return c.End - c.Start
}

const scanBlock = 128

// maxPrealloc bounds the up-front chunk slice; n may be as large as size.
const maxPrealloc = 1024

// Split cuts [0, size) into at most n line-aligned chunks of roughly equal
// size. Each cut point is moved forward to just past the next line
// terminator, so no record straddles two chunks; the last chunk always ends
// at size.
func Split(r io.ReaderAt, size int64, n int) ([]Chunk, error) {
	if size <= 0 {
		return nil, nil
	}
	if n < 1 {
		n = 1
	}
	stride := max(size/int64(n), 1)

	chunks := make([]Chunk, 0, min(n, maxPrealloc))
	buf := make([]byte, scanBlock)
	var start int64
	for i := 0; i < n && start < size; i++ {
		if i == n-1 {
			chunks = append(chunks, Chunk{Start: start, End: size})
			break
		}

		end, err := nextLineStart(r, buf, start+stride, size)
		if err != nil {
			return nil, fmt.Errorf("failed to find chunk boundary: %w", err)
		}
		if end <= start {
			continue
		}
		chunks = append(chunks, Chunk{Start: start, End: end})
		start = end
	}
	return chunks, nil
}

// nextLineStart returns the offset just past the first '\n' at or after
// offset, or size when there is none.
func nextLineStart(r io.ReaderAt, buf []byte, offset, size int64) (int64, error) {
	if offset > 0 {
		// a cut right after a terminator is already aligned
		offset--
	}
	for offset < size {
		n, err := r.ReadAt(buf, offset)
		if i := bytes.IndexByte(buf[:n], endLine); i != -1 {
			return offset + int64(i) + 1, nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		if n == 0 {
			break
		}
		offset += int64(n)
	}
	return size, nil
}
