package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/cuihairu/tabletop/internal/catalog/events"
	dom "github.com/cuihairu/tabletop/internal/ports"
	"github.com/cuihairu/tabletop/internal/telemetry"
	"github.com/zeromicro/go-zero/core/logx"
	"go.opentelemetry.io/otel/attribute"
)

const defaultRepairConcurrency = 8

// Options tunes the catalog service.
type Options struct {
	// RelinkOnUpdate re-derives base game back-links on Update. When false,
	// Update replaces the record wholesale and leaves links untouched.
	RelinkOnUpdate bool
	// RepairConcurrency bounds the parallel writes of one repair pass.
	RepairConcurrency int
	// Publisher receives change events. Nil means no events.
	Publisher events.Publisher
}

// Service owns every mutation of the board game catalog and keeps the
// baseGameId / expansions links consistent.
type Service struct {
	store  dom.BoardGameStore
	pub    events.Publisher
	tracer *telemetry.CatalogTracer
	opts   Options
	now    func() time.Time
}

func NewService(store dom.BoardGameStore, opts Options) *Service {
	if opts.RepairConcurrency <= 0 {
		opts.RepairConcurrency = defaultRepairConcurrency
	}
	pub := opts.Publisher
	if pub == nil {
		pub = events.NewNoop()
	}
	return &Service{store: store, pub: pub, tracer: telemetry.NewCatalogTracer(), opts: opts, now: time.Now}
}

// Create validates and stores a new record and links it into its base game.
func (s *Service) Create(ctx context.Context, g *dom.BoardGame) (id string, err error) {
	ctx, span := s.tracer.Start(ctx, "create")
	defer func() { s.tracer.End(ctx, span, "create", true, err) }()

	rec, err := normalize(g)
	if err != nil {
		return "", err
	}
	rec.ID = ""
	rec.Expansions = nil
	if rec.Linked() {
		if err := s.checkBase(ctx, rec.BaseGameID, ""); err != nil {
			return "", err
		}
	}
	id, err = s.store.Add(ctx, rec)
	if err != nil {
		return "", classify(err, "add board game")
	}
	rec.ID = id
	span.SetAttributes(spanAttrs(rec)...)

	var repairs []Repair
	if rec.Linked() {
		r := s.link(ctx, rec)
		repairs = append(repairs, r)
	}
	logx.WithContext(ctx).Infow("board game created",
		logx.Field("id", id), logx.Field("kind", rec.Kind), logx.Field("base_game", rec.BaseGameID))
	if err := partial("create", id, repairs); err != nil {
		return id, err
	}
	s.publish(ctx, events.TypeCreated, rec)
	return id, nil
}

// Update replaces the record g.ID.
func (s *Service) Update(ctx context.Context, g *dom.BoardGame) (err error) {
	ctx, span := s.tracer.Start(ctx, "update")
	defer func() { s.tracer.End(ctx, span, "update", true, err) }()

	if g == nil || strings.TrimSpace(g.ID) == "" {
		return invalid("id is required")
	}
	rec, err := normalize(g)
	if err != nil {
		return err
	}
	if rec.BaseGameID == rec.ID {
		return invalid("board game %s cannot be its own base game", rec.ID)
	}
	span.SetAttributes(spanAttrs(rec)...)

	old, err := s.store.Get(ctx, rec.ID)
	if err != nil {
		return classify(err, "board game "+rec.ID)
	}
	if !s.opts.RelinkOnUpdate {
		if err := s.store.Put(ctx, rec); err != nil {
			return classify(err, "put board game "+rec.ID)
		}
		s.publish(ctx, events.TypeUpdated, rec)
		return nil
	}

	if old.Kind == dom.KindBaseGame && rec.Kind != dom.KindBaseGame && len(old.Expansions) > 0 {
		return invalid("board game %s still lists %d expansions and cannot become an %s", rec.ID, len(old.Expansions), rec.Kind)
	}
	rec.Expansions = old.Expansions
	moved := old.BaseGameID != rec.BaseGameID || old.Name != rec.Name || old.Linked() != rec.Linked()
	if rec.Linked() && (!old.Linked() || old.BaseGameID != rec.BaseGameID) {
		if err := s.checkBase(ctx, rec.BaseGameID, rec.ID); err != nil {
			return err
		}
	}
	// expansions belong to the link primitives; only the scalar fields are written
	if err := s.store.PutFields(ctx, rec); err != nil {
		return classify(err, "put board game "+rec.ID)
	}

	var repairs []Repair
	if moved && old.Linked() {
		err := s.store.RemoveExpansion(ctx, old.BaseGameID, rec.ID)
		if isMissing(err) {
			// old base game is gone, nothing to unlink
			err = nil
		}
		err = classify(err, "unlink from "+old.BaseGameID)
		s.tracer.Repair(ctx, PassUnlink, err)
		repairs = append(repairs, Repair{Pass: PassUnlink, RecordID: old.BaseGameID, Err: err})
	}
	if moved && rec.Linked() {
		repairs = append(repairs, s.link(ctx, rec))
	}
	logx.WithContext(ctx).Infow("board game updated", logx.Field("id", rec.ID), logx.Field("relinked", moved))
	if err := partial("update", rec.ID, repairs); err != nil {
		return err
	}
	s.publish(ctx, events.TypeUpdated, rec)
	return nil
}

// Delete removes the record and then repairs every record that referenced it.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "delete", telemetry.RecordIDKey.String(id))
	defer func() { s.tracer.End(ctx, span, "delete", true, err) }()

	if strings.TrimSpace(id) == "" {
		return invalid("id is required")
	}
	old, err := s.store.Get(ctx, id)
	if err != nil {
		return classify(err, "board game "+id)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return classify(err, "delete board game "+id)
	}
	repairs := s.repairAfterDelete(ctx, id)
	span.SetAttributes(telemetry.RepairCountKey.Int(len(repairs)))
	logx.WithContext(ctx).Infow("board game deleted", logx.Field("id", id), logx.Field("repairs", len(repairs)))

	// the record is gone either way
	s.publish(ctx, events.TypeDeleted, old)
	if err := partial("delete", id, repairs); err != nil {
		logx.WithContext(ctx).Errorw("delete repair incomplete", logx.Field("id", id), logx.Field("err", err.Error()))
		return err
	}
	return nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id string) (g *dom.BoardGame, err error) {
	ctx, span := s.tracer.Start(ctx, "get", telemetry.RecordIDKey.String(id))
	defer func() { s.tracer.End(ctx, span, "get", false, err) }()
	g, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, classify(err, "board game "+id)
	}
	return g, nil
}

// List returns every record in store order.
func (s *Service) List(ctx context.Context) (out []*dom.BoardGame, err error) {
	ctx, span := s.tracer.Start(ctx, "list")
	defer func() { s.tracer.End(ctx, span, "list", false, err) }()
	out, err = s.store.List(ctx)
	if err != nil {
		return nil, classify(err, "list board games")
	}
	return out, nil
}

// checkBase verifies that id resolves to a base game other than self.
func (s *Service) checkBase(ctx context.Context, id, self string) error {
	if id == self {
		return invalid("board game %s cannot be its own base game", self)
	}
	base, err := s.store.Get(ctx, id)
	if err != nil {
		return classify(err, "base game "+id)
	}
	if base.Kind != dom.KindBaseGame {
		return invalid("baseGame %s is not a %s", id, dom.KindBaseGame)
	}
	return nil
}

// link set-unions rec into its base game's expansions.
func (s *Service) link(ctx context.Context, rec *dom.BoardGame) Repair {
	err := s.store.AddExpansion(ctx, rec.BaseGameID, dom.ExpansionRef{ID: rec.ID, Name: rec.Name})
	err = classify(err, "link into "+rec.BaseGameID)
	s.tracer.Repair(ctx, PassLink, err)
	return Repair{Pass: PassLink, RecordID: rec.BaseGameID, Err: err}
}

func (s *Service) publish(ctx context.Context, typ string, g *dom.BoardGame) {
	c := events.Change{Type: typ, ID: g.ID, Kind: string(g.Kind), At: s.now().UTC()}
	if g.Linked() {
		c.BaseGameID = g.BaseGameID
	}
	if err := s.pub.Publish(ctx, c); err != nil {
		logx.WithContext(ctx).Errorw("publish change event failed",
			logx.Field("type", typ), logx.Field("id", g.ID), logx.Field("err", err.Error()))
	}
}

// normalize validates g and returns a copy with baseGameId normalized.
func normalize(g *dom.BoardGame) (*dom.BoardGame, error) {
	if g == nil {
		return nil, invalid("board game is required")
	}
	rec := g.Clone()
	rec.ID = strings.TrimSpace(rec.ID)
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return nil, invalid("name is required")
	}
	if !rec.Kind.Valid() {
		return nil, invalid("type must be %s or %s", dom.KindBaseGame, dom.KindExpansion)
	}
	rec.BaseGameID = strings.TrimSpace(rec.BaseGameID)
	if rec.Kind == dom.KindBaseGame || rec.BaseGameID == "" {
		rec.BaseGameID = dom.NoBaseGame
	}
	return rec, nil
}

func spanAttrs(g *dom.BoardGame) []attribute.KeyValue {
	attrs := []attribute.KeyValue{telemetry.RecordIDKey.String(g.ID), telemetry.RecordKindKey.String(string(g.Kind))}
	if g.Linked() {
		attrs = append(attrs, telemetry.BaseGameIDKey.String(g.BaseGameID))
	}
	return attrs
}
