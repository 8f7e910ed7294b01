package stats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/weirdgiraffe/brcstats/internal/logger"
)

const component = "solver"

// Source is the input a Solver reads chunks from. ReadAt must be safe for
// concurrent use.
type Source interface {
	io.ReaderAt
	Size() int64
}

var ErrWorkerPanic = errors.New("worker panicked")

type State int32

const (
	Idle State = iota
	Splitting
	Dispatching
	Aggregating
	Merging
	Formatting
	Done
	Failed
)

var stateNames = [...]string{"idle", "splitting", "dispatching", "aggregating", "merging", "formatting", "done", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int32(s))
	}
	return stateNames[s]
}

const (
	// DefaultMaxChunkSize caps how much of the input one task holds in memory.
	DefaultMaxChunkSize = 64 << 20
	// DefaultMinParallelSize is the input size below which a single worker
	// does all the work.
	DefaultMinParallelSize = 1 << 20
)

type Options struct {
	// Workers is the parallelism hint; 0 means GOMAXPROCS.
	Workers         int
	MaxChunkSize    int64
	MinParallelSize int64
}

type Solver struct {
	opts  Options
	state atomic.Int32
	pool  sync.Pool
}

func NewSolver(opts Options) *Solver {
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = DefaultMaxChunkSize
	}
	if opts.MinParallelSize <= 0 {
		opts.MinParallelSize = DefaultMinParallelSize
	}
	s := &Solver{opts: opts}
	s.pool.New = func() any {
		return new([]byte)
	}
	return s
}

func (s *Solver) State() State {
	return State(s.state.Load())
}

func (s *Solver) setState(st State) {
	s.state.Store(int32(st))
	logger.Debugf(component, "state %s", st)
}

// Workers returns how many tasks run at once for an input of the given size.
func (s *Solver) Workers(size int64) int {
	if size < s.opts.MinParallelSize {
		return 1
	}
	limit := runtime.GOMAXPROCS(-1)
	w := s.opts.Workers
	if w <= 0 || w > limit {
		w = limit
	}
	return max(w, 1)
}

func (s *Solver) chunkCount(size int64, workers int) int {
	n := (size + s.opts.MaxChunkSize - 1) / s.opts.MaxChunkSize
	return max(workers, int(n))
}

// Solve aggregates src and writes the sorted rows to w. Nothing is written
// when any step fails.
func (s *Solver) Solve(ctx context.Context, src Source, w io.Writer) (err error) {
	started := time.Now()
	defer func() {
		if err != nil {
			s.setState(Failed)
		}
	}()

	table, err := s.Aggregate(ctx, src)
	if err != nil {
		return err
	}

	s.setState(Formatting)
	var out bytes.Buffer
	if err := WriteTable(&out, table); err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	s.setState(Done)
	logger.Infof(component, "%d keys from %d bytes in %s", table.Len(), src.Size(), time.Since(started))
	return nil
}

// Aggregate runs the split, parallel fold and merge steps and returns the
// final table.
func (s *Solver) Aggregate(ctx context.Context, src Source) (_ *Table, err error) {
	defer func() {
		if err != nil {
			s.setState(Failed)
		}
	}()

	s.setState(Splitting)
	size := src.Size()
	workers := s.Workers(size)
	if s.opts.Workers > workers && size >= s.opts.MinParallelSize {
		logger.Warnf(component, "%d workers requested, limited to %d", s.opts.Workers, workers)
	}
	chunks, err := Split(src, size, s.chunkCount(size, workers))
	if err != nil {
		return nil, err
	}
	logger.Debugf(component, "%d chunks over %d workers", len(chunks), workers)

	s.setState(Dispatching)
	results := make(chan *Table, len(chunks))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, chunk := range chunks {
		if ectx.Err() != nil {
			break
		}
		eg.Go(func() (err error) {
			if s.state.CompareAndSwap(int32(Dispatching), int32(Aggregating)) {
				logger.Debugf(component, "state %s", Aggregating)
			}
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf(component, "chunk %d panicked: %v", i, r)
					err = fmt.Errorf("chunk %d: %w: %v", i, ErrWorkerPanic, r)
				}
			}()
			table, err := s.processChunk(ectx, src, chunk)
			if err != nil {
				return fmt.Errorf("chunk %d [%d,%d): %w", i, chunk.Start, chunk.End, err)
			}
			results <- table
			return nil
		})
	}

	if s.State() != Aggregating {
		s.setState(Aggregating)
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to aggregate: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	close(results)

	s.setState(Merging)
	tables := make([]*Table, 0, len(chunks))
	for t := range results {
		tables = append(tables, t)
	}
	if len(tables) != len(chunks) {
		return nil, fmt.Errorf("failed to aggregate: got %d of %d partial results", len(tables), len(chunks))
	}
	return Reduce(tables), nil
}

// checkEvery is how many records a task folds between cancellation checks.
const checkEvery = 1 << 16

func (s *Solver) processChunk(ctx context.Context, src Source, chunk Chunk) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bp := s.pool.Get().(*[]byte)
	defer s.pool.Put(bp)
	if int64(cap(*bp)) < chunk.Len() {
		*bp = make([]byte, chunk.Len())
	}
	buf := (*bp)[:chunk.Len()]

	n, err := src.ReadAt(buf, chunk.Start)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == chunk.Len()) {
		return nil, fmt.Errorf("failed to read chunk: %w", err)
	}

	table := NewTable()
	seen := 0
	for key, value := range Records(buf[:n]) {
		table.Update(key, value)
		seen++
		if seen%checkEvery == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return table, nil
}
