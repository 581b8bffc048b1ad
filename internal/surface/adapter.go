package surface

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Adapter holds the compiled tables of every surface. It is immutable after
// construction and safe for concurrent use.
type Adapter struct {
	tables   map[Surface]map[string]*compiled
	validate *validator.Validate
	log      *zap.Logger
}

// Translation is the outcome of ToInternal.
type Translation struct {
	Fields  map[string]any // canonical name -> value
	Ignored []string       // unknown external names
	Dropped []string       // external names declared as dropped
}

// New compiles the given tables. Every table is checked for totality; any
// problem is reported at once so a bad table fails at startup.
func New(log *zap.Logger, sets map[Surface][]Table) (*Adapter, error) {
	a := &Adapter{
		tables:   map[Surface]map[string]*compiled{},
		validate: newValidator(),
		log:      log.Named("surface"),
	}
	var errs []error
	for s, tables := range sets {
		a.tables[s] = map[string]*compiled{}
		for _, t := range tables {
			if _, dup := a.tables[s][t.Resource]; dup {
				errs = append(errs, fmt.Errorf("%s: duplicate table for %q", s, t.Resource))
				continue
			}
			c, err := compile(t)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", s, err))
				continue
			}
			a.tables[s][t.Resource] = c
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return a, nil
}

// NewDefault builds the adapter for the mobile and legacy surfaces.
func NewDefault(log *zap.Logger) (*Adapter, error) {
	return New(log, map[Surface][]Table{
		Mobile: MobileTables(),
		Legacy: LegacyTables(),
	})
}

// MustNewDefault panics if the built-in tables are inconsistent.
func MustNewDefault(log *zap.Logger) *Adapter {
	a, err := NewDefault(log)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Adapter) table(s Surface, resource string) (*compiled, error) {
	t, ok := a.tables[s][resource]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnsupported, s, resource)
	}
	return t, nil
}

// Supports reports whether s exposes resource.
func (a *Adapter) Supports(s Surface, resource string) bool {
	_, err := a.table(s, resource)
	return err == nil
}

// ToInternal renames external fields to canonical ones. Unknown fields are
// ignored and logged at debug. When a primary name and an alias for the same
// field are both present the primary wins. A missing, null or blank required
// field yields a *ValidationError listing canonical names; the translation is
// still returned alongside it.
func (a *Adapter) ToInternal(s Surface, resource string, external map[string]any) (Translation, error) {
	t, err := a.table(s, resource)
	if err != nil {
		return Translation{}, err
	}
	tr := Translation{Fields: make(map[string]any, len(external))}

	keys := make([]string, 0, len(external))
	for k := range external {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var aliased []string
	for _, k := range keys {
		canon, ok := t.inbound[k]
		switch {
		case ok && t.primary(k, canon):
			tr.Fields[canon] = external[k]
		case ok:
			aliased = append(aliased, k)
		case t.dropped[k]:
			tr.Dropped = append(tr.Dropped, k)
		default:
			tr.Ignored = append(tr.Ignored, k)
		}
	}
	for _, k := range aliased {
		canon := t.inbound[k]
		if _, set := tr.Fields[canon]; set {
			tr.Ignored = append(tr.Ignored, k)
			continue
		}
		tr.Fields[canon] = external[k]
	}
	sort.Strings(tr.Ignored)

	if len(tr.Ignored) > 0 || len(tr.Dropped) > 0 {
		a.log.Debug("inbound fields not translated",
			zap.String("surface", s.String()),
			zap.String("resource", resource),
			zap.Strings("ignored", tr.Ignored),
			zap.Strings("dropped", tr.Dropped))
	}

	var missing []FieldError
	for _, f := range t.res.Required {
		if blank(tr.Fields[f]) {
			missing = append(missing, FieldError{Field: f, Rule: "required"})
		}
	}
	if len(missing) > 0 {
		return tr, &ValidationError{Resource: resource, Fields: missing}
	}
	return tr, nil
}

// ToExternal renames canonical fields to the surface's names. Hidden fields
// and keys that are not canonical for the resource are left out.
func (a *Adapter) ToExternal(s Surface, resource string, internal map[string]any) (map[string]any, error) {
	t, err := a.table(s, resource)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(internal))
	for k, v := range internal {
		ext, ok := t.Fields[k]
		if !ok {
			if !t.hidden[k] {
				a.log.Debug("outbound field has no external name",
					zap.String("surface", s.String()), zap.String("resource", resource), zap.String("field", k))
			}
			continue
		}
		out[ext] = v
	}
	return out, nil
}

func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}
