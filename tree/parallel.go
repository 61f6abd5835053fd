package tree

import (
	"errors"
	"runtime"
	"sync"
)

// parallelThreshold is the minimum node count to split a tick across
// workers. Below this, a single goroutine is faster.
const parallelThreshold = 512

// stepChunk is a range of nodes for one worker.
type stepChunk struct {
	start, end int
	old, next  *Tree
	model      Model
}

// Stepper runs barrier ticks with a pool of persistent workers. Every
// node writes only its own slot of the target tree and reads only the
// snapshot, so chunks need no coordination besides the final wait.
// A Stepper is not safe for concurrent use.
type Stepper struct {
	numWorkers int

	workChan chan stepChunk
	doneChan chan error
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// NewStepper creates a stepper with the given number of workers
// (0 = GOMAXPROCS). Workers start lazily on the first large tick.
func NewStepper(workers int) *Stepper {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Stepper{numWorkers: workers}
}

// Workers returns the size of the pool.
func (s *Stepper) Workers() int {
	return s.numWorkers
}

func (s *Stepper) startWorkers() {
	if s.running {
		return
	}
	s.workChan = make(chan stepChunk, s.numWorkers)
	s.doneChan = make(chan error, s.numWorkers)
	s.stopChan = make(chan struct{})
	s.running = true

	for i := 0; i < s.numWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

func (s *Stepper) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopChan:
			return
		case c, ok := <-s.workChan:
			if !ok {
				return
			}
			s.doneChan <- stepRange(c.old, c.next, c.model, c.start, c.end)
		}
	}
}

// Close stops the workers. The stepper can be reused afterwards.
func (s *Stepper) Close() {
	if !s.running {
		return
	}
	close(s.stopChan)
	s.wg.Wait()
	close(s.workChan)
	close(s.doneChan)
	s.running = false
}

// Step is UpdateRef spread over the worker pool.
func (s *Stepper) Step(old, next *Tree, m Model) error {
	n := len(old.Nodes)
	if s.numWorkers <= 1 || n < parallelThreshold {
		return UpdateRef(old, next, m)
	}
	if len(next.Nodes) != n {
		return UpdateRef(old, next, m)
	}
	s.startWorkers()

	chunkSize := (n + s.numWorkers - 1) / s.numWorkers
	dispatched := 0
	for w := 0; w < s.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		s.workChan <- stepChunk{start: start, end: end, old: old, next: next, model: m}
		dispatched++
	}

	var errs []error
	for i := 0; i < dispatched; i++ {
		if err := <-s.doneChan; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Relax is the package-level Relax using the worker pool for each tick.
func (s *Stepper) Relax(t *Tree, m Model, precision float64, onBatch func(RelaxBatch)) (*Tree, error) {
	return relax(t, m, precision, onBatch, s.Step)
}
