package process

import (
	"context"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	memerr "memsim/pkg/error"
	"memsim/pkg/logging"
	"memsim/pkg/primitives"
)

// DefaultWorkers bounds how many processes are generated at once.
const DefaultWorkers = 4

// Spawner generates batches of processes with unique PIDs.
//
// PIDs and per-process seeds are drawn sequentially from the source, then
// the instruction buffers are filled concurrently. A seeded source therefore
// produces the same batch regardless of scheduling.
type Spawner struct {
	src     Source
	workers int
	used    map[primitives.PID]struct{}
}

// NewSpawner creates a spawner. workers <= 0 selects DefaultWorkers.
func NewSpawner(src Source, workers int) *Spawner {
	if src == nil {
		src = DefaultSource()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Spawner{
		src:     src,
		workers: workers,
		used:    make(map[primitives.PID]struct{}),
	}
}

// Reserve marks a PID as taken so later batches never reuse it.
func (s *Spawner) Reserve(pid primitives.PID) {
	s.used[pid] = struct{}{}
}

// Release makes a PID available again, typically after an unload.
func (s *Spawner) Release(pid primitives.PID) {
	delete(s.used, pid)
}

// Spawn returns n processes whose PIDs are unique among themselves and among
// every PID this spawner handed out or reserved before.
// The spawner itself is not safe for concurrent use.
func (s *Spawner) Spawn(ctx context.Context, n int) ([]*Process, error) {
	if n < 0 || len(s.used)+n > math.MaxUint16+1 {
		return nil, memerr.Newf(memerr.ErrInvalidProcess, "Spawn", "Spawner",
			"cannot hand out %d more pids, %d already in use", n, len(s.used))
	}

	type plan struct {
		pid  primitives.PID
		seed uint64
	}

	plans := make([]plan, n)
	for i := range plans {
		pid := primitives.PID(s.src.Uint64())
		for {
			if _, taken := s.used[pid]; !taken {
				break
			}
			logging.WithPID(pid).Debug("pid in use, probing next")
			pid++
		}
		s.used[pid] = struct{}{}
		plans[i] = plan{pid: pid, seed: s.src.Uint64()}
	}

	out := make([]*Process, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, pl := range plans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(pl.seed, uint64(pl.pid)))
			out[i] = WithPIDFrom(rng, pl.pid)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, pl := range plans {
			delete(s.used, pl.pid)
		}
		logging.WithComponent("spawner").Warn("spawn aborted", "requested", n, "error", err)
		return nil, memerr.Wrap(err, memerr.CodeProcessSpawnFailed, "Spawn", "Spawner")
	}

	logging.WithComponent("spawner").Debug("processes spawned", "count", n)
	return out, nil
}
