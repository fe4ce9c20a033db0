package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	dom "github.com/cuihairu/tabletop/internal/ports"
	"golang.org/x/sync/errgroup"
)

// repairAfterDelete runs both delete repair passes concurrently and returns
// the outcome of every write, ordered by pass then record id.
func (s *Service) repairAfterDelete(ctx context.Context, id string) []Repair {
	var (
		mu      sync.Mutex
		repairs []Repair
	)
	record := func(r Repair) {
		s.tracer.Repair(ctx, r.Pass, r.Err)
		mu.Lock()
		repairs = append(repairs, r)
		mu.Unlock()
	}

	var passes errgroup.Group
	passes.Go(func() error {
		s.runPass(ctx, PassExpansionRef, dom.ListsExpansion(id), func(ctx context.Context, r *dom.BoardGame) error {
			return s.store.RemoveExpansion(ctx, r.ID, id)
		}, record)
		return nil
	})
	passes.Go(func() error {
		s.runPass(ctx, PassBaseGame, dom.BaseGameIs(id), func(ctx context.Context, r *dom.BoardGame) error {
			return s.store.SetBaseGame(ctx, r.ID, dom.NoBaseGame)
		}, record)
		return nil
	})
	_ = passes.Wait()

	sortRepairs(repairs)
	return repairs
}

// runPass queries the records matching f and applies fix to each of them,
// at most RepairConcurrency at a time. Records that vanished meanwhile need
// no repair.
func (s *Service) runPass(ctx context.Context, pass string, f dom.Filter, fix func(context.Context, *dom.BoardGame) error, record func(Repair)) {
	targets, err := s.store.Query(ctx, f)
	if err != nil {
		record(Repair{Pass: pass, Err: classify(err, "query "+f.Field)})
		return
	}
	var g errgroup.Group
	g.SetLimit(s.opts.RepairConcurrency)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			err := fix(ctx, t)
			if isMissing(err) {
				err = nil
			}
			record(Repair{Pass: pass, RecordID: t.ID, Err: classify(err, pass+" repair of "+t.ID)})
			return nil
		})
	}
	_ = g.Wait()
}

func sortRepairs(repairs []Repair) {
	sort.SliceStable(repairs, func(i, j int) bool {
		if repairs[i].Pass != repairs[j].Pass {
			return repairs[i].Pass < repairs[j].Pass
		}
		return repairs[i].RecordID < repairs[j].RecordID
	})
}

func isMissing(err error) bool { return errors.Is(err, dom.ErrNotFound) }
