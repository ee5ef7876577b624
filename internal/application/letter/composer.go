package letter

import (
	"sort"
	"strings"
	"time"

	"github.com/turtacn/LienPilot/pkg/errors"
)

// PlaceholderOpen and PlaceholderClose delimit merge fields. A composed
// letter must never contain them.
const (
	PlaceholderOpen  = "{{"
	PlaceholderClose = "}}"
)

// GenericComposerName identifies the fallback composer.
const GenericComposerName = "generic"

// Composer renders one state's notice text.
type Composer interface {
	// Name identifies the composer in logs and metrics.
	Name() string
	// Compose returns the literal letter for d as of today.
	Compose(d *NoticeData, today time.Time) string
}

// ComposerFunc adapts a function to the Composer interface.
type ComposerFunc struct {
	ID string
	Fn func(d *NoticeData, today time.Time) string
}

func (f ComposerFunc) Name() string { return f.ID }

func (f ComposerFunc) Compose(d *NoticeData, today time.Time) string { return f.Fn(d, today) }

// Registry dispatches by state code to a composer, falling back to a
// generic one. Register composers during setup; lookups are safe for
// concurrent use once setup is complete.
type Registry struct {
	composers map[string]Composer
	fallback  Composer
	now       func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock overrides the clock used for days-past-due.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithFallback replaces the generic composer.
func WithFallback(c Composer) RegistryOption {
	return func(r *Registry) {
		if c != nil {
			r.fallback = c
		}
	}
}

// NewEmptyRegistry returns a registry with only the fallback composer.
func NewEmptyRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		composers: make(map[string]Composer),
		fallback:  ComposerFunc{ID: GenericComposerName, Fn: composeGeneric},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRegistry returns a registry with every built-in state composer.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := NewEmptyRegistry(opts...)
	for state, c := range builtinComposers() {
		r.composers[state] = c
	}
	return r
}

func builtinComposers() map[string]Composer {
	return map[string]Composer{
		"CA": ComposerFunc{ID: "california", Fn: composeCalifornia},
		"FL": ComposerFunc{ID: "florida", Fn: composeFlorida},
		"NY": ComposerFunc{ID: "new_york", Fn: composeNewYork},
		"PA": ComposerFunc{ID: "pennsylvania", Fn: composePennsylvania},
		"TX": ComposerFunc{ID: "texas", Fn: composeTexas},
	}
}

// Register adds a composer for state. Registering a state twice is an error.
func (r *Registry) Register(state string, c Composer) error {
	key := strings.ToUpper(strings.TrimSpace(state))
	if len(key) != 2 {
		return errors.New(errors.ErrCodeLienInvalidState, "state must be a two-letter code").WithDetail(state)
	}
	if _, exists := r.composers[key]; exists {
		return errors.New(errors.ErrCodeLetterComposerConflict, "composer already registered").WithDetail(key)
	}
	r.composers[key] = c
	return nil
}

// For returns the composer for state, or the fallback.
func (r *Registry) For(state string) Composer {
	if c, ok := r.composers[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return c
	}
	return r.fallback
}

// States lists states with a dedicated composer, sorted.
func (r *Registry) States() []string {
	out := make([]string, 0, len(r.composers))
	for k := range r.composers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Composition is a composed letter and the composer that produced it.
type Composition struct {
	Text     string `json:"text"`
	Composer string `json:"composer"`
}

// Compose validates d, composes the letter for state and verifies that no
// merge-field delimiters survived.
func (r *Registry) Compose(state string, d *NoticeData) (*Composition, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeLetterInvalidData, "notice data is required")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	c := r.For(state)
	text := c.Compose(d, r.now())
	if strings.Contains(text, PlaceholderOpen) || strings.Contains(text, PlaceholderClose) {
		return nil, errors.New(errors.ErrCodeLetterUnresolvedPlaceholder, "letter contains unresolved placeholders").
			WithDetail("composer=" + c.Name())
	}
	return &Composition{Text: text, Composer: c.Name()}, nil
}

//Personal.AI order the ending
