// Package resolver implements the priority-ordered intent cascade that turns a
// message into a grounding context block.
package resolver

import (
	"time"

	"github.com/hyperjump/asistan/internal/config"
	"github.com/hyperjump/asistan/internal/matcher"
	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/internal/timerange"
	"github.com/hyperjump/asistan/pkg/utils"
	"go.uber.org/zap"
)

// Request is the input to one resolution.
type Request struct {
	Message  string // raw user text
	Text     string // normalized text
	Snapshot *models.Snapshot
	User     models.CurrentUser
	State    *models.ConversationState // nil when the conversation has no state yet
}

// Resolver is one intent handler in the cascade.
type Resolver interface {
	Name() string
	// TryResolve returns a resolution and true when its preconditions hold.
	TryResolve(req *Request) (models.Resolution, bool)
}

// Observer receives the name of the resolver that handled a message ("" for
// none) and the time spent in the cascade.
type Observer func(resolver string, elapsed time.Duration)

// env is shared by all resolvers of an engine.
type env struct {
	cfg   config.ResolverConfig
	match *matcher.Matcher
	clock *timerange.Resolver
}

// Engine runs the cascade: resolvers are tried in order and the first that
// accepts the message wins. Later resolvers never run.
type Engine struct {
	env       *env
	resolvers []Resolver
	logger    *zap.Logger
	observer  Observer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithMatcher sets the entity matcher.
func WithMatcher(m *matcher.Matcher) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.env.match = m
		}
	}
}

// WithClock sets the time window resolver.
func WithClock(c *timerange.Resolver) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.env.clock = c
		}
	}
}

// WithObserver sets a callback invoked after every resolution.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates an engine with the standard cascade.
func NewEngine(cfg *config.ResolverConfig, opts ...EngineOption) *Engine {
	c := config.Default().Resolver
	if cfg != nil {
		c = *cfg
	}
	e := &Engine{
		env: &env{
			cfg:   c,
			match: matcher.New(matcher.WithFuzzyClinics(c.FuzzyNamesOrDefault())),
			clock: timerange.New(timerange.WithLocation(c.Location())),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resolvers = standardCascade(e.env)
	return e
}

// standardCascade returns the resolvers in priority order.
func standardCascade(en *env) []Resolver {
	return []Resolver{
		&followUpResolver{env: en},
		&proposalIDResolver{env: en},
		&clinicDetailResolver{env: en},
		&userDetailResolver{env: en},
		&clinicListResolver{env: en},
		&recentProposalsResolver{env: en},
		&proposalListResolver{env: en},
		&surgeryListResolver{env: en},
		&visitListResolver{env: en},
		&productListResolver{env: en},
		&campaignListResolver{env: en},
		&userListResolver{env: en},
		&aggregateResolver{env: en},
	}
}

// Names returns the resolver names in cascade order.
func (e *Engine) Names() []string {
	names := make([]string, len(e.resolvers))
	for i, r := range e.resolvers {
		names[i] = r.Name()
	}
	return names
}

// Clock returns the time window resolver used by the engine.
func (e *Engine) Clock() *timerange.Resolver {
	return e.env.clock
}

// Matcher returns the entity matcher used by the engine.
func (e *Engine) Matcher() *matcher.Matcher {
	return e.env.match
}

// Resolve runs the cascade for one message. A nil snapshot resolves nothing.
func (e *Engine) Resolve(message string, snap *models.Snapshot, user models.CurrentUser, state *models.ConversationState) models.Resolution {
	start := time.Now()
	req := &Request{
		Message:  message,
		Text:     utils.Normalize(message),
		Snapshot: snap,
		User:     user,
		State:    state,
	}

	res, name := e.run(req)
	if e.observer != nil {
		e.observer(name, time.Since(start))
	}
	return res
}

func (e *Engine) run(req *Request) (models.Resolution, string) {
	if req.Snapshot == nil || req.Text == "" {
		return models.Resolution{}, ""
	}
	for _, r := range e.resolvers {
		res, ok := r.TryResolve(req)
		if !ok {
			continue
		}
		res.Resolver = r.Name()
		e.logger.Debug("resolved",
			zap.String("resolver", r.Name()),
			zap.Bool("retrieved", res.Retrieved),
			zap.Int("context_len", len(res.Context)))
		return res, r.Name()
	}
	e.logger.Debug("no resolver matched", zap.String("text", req.Text))
	return models.Resolution{}, ""
}
