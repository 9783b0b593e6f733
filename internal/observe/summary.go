package observe

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/AleNovelli/drone-flightplans/internal/frames"
	"github.com/AleNovelli/drone-flightplans/internal/site"
	"github.com/AleNovelli/drone-flightplans/internal/trajectory"
)

// Request selects which telescope/trajectory pairs to summarize. An empty
// Telescopes list means every telescope the site knows about.
type Request struct {
	Trajectories map[string]*trajectory.DroneTrajectory
	Telescopes   []string
	Boresight    bool
}

// Pointing is the per-point AER series one telescope needs to track one
// trajectory.
type Pointing struct {
	Telescope  string       `json:"telescope"`
	Trajectory string       `json:"trajectory"`
	AER        []frames.AER `json:"aer"`
}

// BoresightRow is one line of the boresight table: the fixed pointing a
// telescope holds for the whole pass over one trajectory.
type BoresightRow struct {
	Telescope  string  `json:"telescope"`
	Trajectory string  `json:"trajectory"`
	Azimuth    float64 `json:"azimuth_deg"`
	Elevation  float64 `json:"elevation_deg"`
}

// Summary holds the pointing series for every requested pair, plus the
// boresight table when requested. Both slices are sorted by telescope name,
// then trajectory name.
type Summary struct {
	Pointings []Pointing     `json:"pointings"`
	Boresight []BoresightRow `json:"boresight,omitempty"`
}

// pointJob is a unit of work for the worker pool: one telescope against one
// trajectory.
type pointJob struct {
	telName  string
	telPos   frames.ENU
	trajName string
	traj     *trajectory.DroneTrajectory
}

type pointResult struct {
	pointing  Pointing
	boresight *BoresightRow
}

// Pool computes pointing summaries over a fixed number of goroutines.
type Pool struct {
	workers int
	logger  *slog.Logger
}

// NewPool creates a pool with the given number of workers. Values below 1 are
// clamped to 1.
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{workers: workers, logger: logger}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Summarize computes the AER series for every telescope/trajectory pair in
// the request. Telescope references are resolved up front, so an unknown or
// unanchored telescope fails the whole call before any work starts.
func (p *Pool) Summarize(ctx context.Context, s *site.Site, req Request) (*Summary, error) {
	names := req.Telescopes
	if len(names) == 0 {
		for name := range s.Telescopes() {
			names = append(names, name)
		}
	}

	positions := make(map[string]frames.ENU, len(names))
	for _, name := range names {
		pos, err := s.Resolve(site.ByName(name))
		if err != nil {
			return nil, err
		}
		positions[name] = pos
	}

	jobs := make(chan pointJob, p.workers*2)
	results := make(chan pointResult, p.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case results <- summarizePair(job, req.Boresight):
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, telName := range names {
			for trajName, traj := range req.Trajectories {
				job := pointJob{
					telName:  telName,
					telPos:   positions[telName],
					trajName: trajName,
					traj:     traj,
				}
				select {
				case jobs <- job:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	sum := &Summary{}
	for res := range results {
		sum.Pointings = append(sum.Pointings, res.pointing)
		if res.boresight != nil {
			sum.Boresight = append(sum.Boresight, *res.boresight)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(sum.Pointings, func(i, j int) bool {
		a, b := sum.Pointings[i], sum.Pointings[j]
		if a.Telescope != b.Telescope {
			return a.Telescope < b.Telescope
		}
		return a.Trajectory < b.Trajectory
	})
	sort.Slice(sum.Boresight, func(i, j int) bool {
		a, b := sum.Boresight[i], sum.Boresight[j]
		if a.Telescope != b.Telescope {
			return a.Telescope < b.Telescope
		}
		return a.Trajectory < b.Trajectory
	})

	p.logger.Debug("pointing summary computed",
		"telescopes", len(names),
		"trajectories", len(req.Trajectories),
		"pairs", len(sum.Pointings),
	)
	return sum, nil
}

// summarizePair computes one telescope/trajectory pointing series. The
// telescope position was resolved by the caller, so the math cannot fail.
func summarizePair(job pointJob, boresight bool) pointResult {
	diffs := make([]frames.ENU, len(job.traj.ENU))
	for i, pt := range job.traj.ENU {
		diffs[i] = pt.Sub(job.telPos)
	}

	res := pointResult{pointing: Pointing{
		Telescope:  job.telName,
		Trajectory: job.trajName,
		AER:        frames.ENUToAERBatch(diffs),
	}}

	if boresight {
		a := frames.ENUToAER(job.traj.Center().Sub(job.telPos))
		res.boresight = &BoresightRow{
			Telescope:  job.telName,
			Trajectory: job.trajName,
			Azimuth:    a.Azimuth,
			Elevation:  a.Elevation,
		}
	}
	return res
}
