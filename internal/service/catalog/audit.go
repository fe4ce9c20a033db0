package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	dom "github.com/cuihairu/tabletop/internal/ports"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"
)

// ViolationKind names one way the baseGameId / expansions links can disagree.
type ViolationKind string

const (
	// MissingBackLink: an expansion points at a base game that does not list it.
	MissingBackLink ViolationKind = "missing_back_link"
	// DuplicateBackLink: a base game lists the same expansion more than once.
	DuplicateBackLink ViolationKind = "duplicate_back_link"
	// StaleBackLink: a base game lists a record that is gone or points elsewhere.
	StaleBackLink ViolationKind = "stale_back_link"
	// DanglingBaseGame: an expansion points at a record that does not exist.
	DanglingBaseGame ViolationKind = "dangling_base_game"
	// NameMismatch: the cached name in a base game's list differs from the expansion's name.
	NameMismatch ViolationKind = "back_link_name_mismatch"
)

// Violation is one inconsistency found by Audit. RecordID is the record
// holding the bad reference; RelatedID is the record it refers to.
type Violation struct {
	Kind      ViolationKind `json:"kind"`
	RecordID  string        `json:"record_id"`
	RelatedID string        `json:"related_id"`
	Detail    string        `json:"detail,omitempty"`
}

// Report is the result of Reconcile.
type Report struct {
	Violations []Violation
	Repairs    []Repair
}

// Audit scans the whole catalog and reports every link inconsistency.
func (s *Service) Audit(ctx context.Context) (out []Violation, err error) {
	ctx, span := s.tracer.Start(ctx, "audit")
	defer func() { s.tracer.End(ctx, span, "audit", false, err) }()

	all, err := s.store.List(ctx)
	if err != nil {
		return nil, classify(err, "list board games")
	}
	return audit(all), nil
}

func audit(all []*dom.BoardGame) []Violation {
	byID := make(map[string]*dom.BoardGame, len(all))
	for _, g := range all {
		byID[g.ID] = g
	}
	var out []Violation
	for _, g := range all {
		if g.Linked() {
			base, ok := byID[g.BaseGameID]
			if !ok {
				out = append(out, Violation{Kind: DanglingBaseGame, RecordID: g.ID, RelatedID: g.BaseGameID})
			} else {
				n := 0
				for _, e := range base.Expansions {
					if e.ID != g.ID {
						continue
					}
					n++
					if e.Name != g.Name {
						out = append(out, Violation{Kind: NameMismatch, RecordID: base.ID, RelatedID: g.ID,
							Detail: fmt.Sprintf("cached %q, actual %q", e.Name, g.Name)})
					}
				}
				switch {
				case n == 0:
					out = append(out, Violation{Kind: MissingBackLink, RecordID: base.ID, RelatedID: g.ID})
				case n > 1:
					out = append(out, Violation{Kind: DuplicateBackLink, RecordID: base.ID, RelatedID: g.ID,
						Detail: fmt.Sprintf("listed %d times", n)})
				}
			}
		}
		seen := make(map[string]bool, len(g.Expansions))
		for _, e := range g.Expansions {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			x, ok := byID[e.ID]
			if !ok || !x.Linked() || x.BaseGameID != g.ID {
				out = append(out, Violation{Kind: StaleBackLink, RecordID: g.ID, RelatedID: e.ID})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RecordID != out[j].RecordID {
			return out[i].RecordID < out[j].RecordID
		}
		if out[i].RelatedID != out[j].RelatedID {
			return out[i].RelatedID < out[j].RelatedID
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Reconcile repairs every violation Audit reports. A failed fix yields a
// *PartialFailureError; the report is returned either way.
func (s *Service) Reconcile(ctx context.Context) (rep Report, err error) {
	ctx, span := s.tracer.Start(ctx, "reconcile")
	defer func() { s.tracer.End(ctx, span, "reconcile", true, err) }()

	all, err := s.store.List(ctx)
	if err != nil {
		return rep, classify(err, "list board games")
	}
	byID := make(map[string]*dom.BoardGame, len(all))
	for _, g := range all {
		byID[g.ID] = g
	}
	rep.Violations = audit(all)

	type fixKey struct{ pass, record, related string }
	fixes := make(map[fixKey]func(context.Context) Repair)
	var order []fixKey
	add := func(k fixKey, fn func(context.Context) Repair) {
		if _, ok := fixes[k]; ok {
			return
		}
		fixes[k] = fn
		order = append(order, k)
	}
	for _, v := range rep.Violations {
		v := v
		switch v.Kind {
		case DanglingBaseGame:
			add(fixKey{PassBaseGame, v.RecordID, v.RelatedID}, func(ctx context.Context) Repair {
				err := s.store.SetBaseGame(ctx, v.RecordID, dom.NoBaseGame)
				return Repair{Pass: PassBaseGame, RecordID: v.RecordID, Err: classify(err, "reset base game of "+v.RecordID)}
			})
		case StaleBackLink:
			add(fixKey{PassUnlink, v.RecordID, v.RelatedID}, func(ctx context.Context) Repair {
				err := s.store.RemoveExpansion(ctx, v.RecordID, v.RelatedID)
				return Repair{Pass: PassUnlink, RecordID: v.RecordID, Err: classify(err, "unlink "+v.RelatedID)}
			})
		case MissingBackLink, DuplicateBackLink, NameMismatch:
			exp := byID[v.RelatedID]
			ref := dom.ExpansionRef{ID: exp.ID, Name: exp.Name}
			relink := v.Kind != MissingBackLink
			add(fixKey{PassLink, v.RecordID, v.RelatedID}, func(ctx context.Context) Repair {
				if relink {
					if err := s.store.RemoveExpansion(ctx, v.RecordID, ref.ID); err != nil {
						return Repair{Pass: PassLink, RecordID: v.RecordID, Err: classify(err, "unlink "+ref.ID)}
					}
				}
				err := s.store.AddExpansion(ctx, v.RecordID, ref)
				return Repair{Pass: PassLink, RecordID: v.RecordID, Err: classify(err, "link "+ref.ID)}
			})
		}
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.opts.RepairConcurrency)
	for _, k := range order {
		fn := fixes[k]
		g.Go(func() error {
			r := fn(ctx)
			s.tracer.Repair(ctx, r.Pass, r.Err)
			mu.Lock()
			rep.Repairs = append(rep.Repairs, r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	sortRepairs(rep.Repairs)

	logx.WithContext(ctx).Infow("catalog reconciled",
		logx.Field("violations", len(rep.Violations)), logx.Field("repairs", len(rep.Repairs)))
	return rep, partial("reconcile", "catalog", rep.Repairs)
}
