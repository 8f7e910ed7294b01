package stats

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomInput(rnd *rand.Rand, lines int) []byte {
	var b strings.Builder
	for i := 0; i < lines; i++ {
		name := strings.Repeat(string(rune('a'+rnd.Intn(26))), 1+rnd.Intn(40))
		fmt.Fprintf(&b, "%s;%.1f\n", name, (rnd.Float64()-0.5)*200)
	}
	return []byte(b.String())
}

func assertPartition(t *testing.T, data []byte, chunks []Chunk) {
	t.Helper()
	size := int64(len(data))
	if size == 0 {
		assert.Empty(t, chunks)
		return
	}
	require.NotEmpty(t, chunks)
	assert.Equal(t, int64(0), chunks[0].Start)
	assert.Equal(t, size, chunks[len(chunks)-1].End)
	for i, c := range chunks {
		assert.Less(t, c.Start, c.End, "chunk %d is empty", i)
		if i > 0 {
			assert.Equal(t, chunks[i-1].End, c.Start, "gap or overlap before chunk %d", i)
			assert.Equal(t, byte('\n'), data[c.Start-1], "chunk %d does not start a line", i)
		}
		if c.End != size {
			assert.Equal(t, byte('\n'), data[c.End-1], "chunk %d does not end a line", i)
		}
	}
}

func TestSplitCoverage(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for _, lines := range []int{0, 1, 2, 3, 10, 100, 1000} {
		data := randomInput(rnd, lines)
		for _, n := range []int{1, 2, 3, 7, 16, 64, 5000} {
			t.Run(fmt.Sprintf("lines=%d/n=%d", lines, n), func(t *testing.T) {
				chunks, err := Split(bytes.NewReader(data), int64(len(data)), n)
				require.NoError(t, err)
				assert.LessOrEqual(t, len(chunks), n)
				assertPartition(t, data, chunks)
			})
		}
	}
}

func TestSplitWithoutTrailingNewline(t *testing.T) {
	data := []byte("a;1\nb;2\nc;3")
	chunks, err := Split(bytes.NewReader(data), int64(len(data)), 3)
	require.NoError(t, err)
	assertPartition(t, data, chunks)
}

func TestSplitLongLine(t *testing.T) {
	data := []byte("x;1\n" + strings.Repeat("k", 10*scanBlock) + ";2\ny;3\n")
	chunks, err := Split(bytes.NewReader(data), int64(len(data)), 4)
	require.NoError(t, err)
	assertPartition(t, data, chunks)
}

func TestSplitEmpty(t *testing.T) {
	chunks, err := Split(bytes.NewReader(nil), 0, 8)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitSingle(t *testing.T) {
	data := []byte("Paris;10.0\nParis;20.0\n")
	chunks, err := Split(bytes.NewReader(data), int64(len(data)), 0)
	require.NoError(t, err)
	assert.Equal(t, []Chunk{{Start: 0, End: int64(len(data))}}, chunks)
}

type failingReader struct{}

func (failingReader) ReadAt([]byte, int64) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestSplitReadError(t *testing.T) {
	_, err := Split(failingReader{}, 1000, 4)
	assert.ErrorContains(t, err, "disk on fire")
}

func TestSplitHugeChunkCount(t *testing.T) {
	data := []byte("a;1\nb;2\nc;3\n")
	chunks, err := Split(bytes.NewReader(data), int64(len(data)), 1<<40)
	require.NoError(t, err)
	assertPartition(t, data, chunks)
	assert.Len(t, chunks, 3)
}
