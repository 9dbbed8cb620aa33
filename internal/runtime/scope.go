// Package runtime holds the leaf runtime types shared by the evaluator and
// the call dispatcher: scope frames, module registry, thread state, and
// the synchronization hub. It depends on internal/value and internal/ast
// but never on internal/interp, mirroring go-dws's
// internal/interp/runtime leaf layer.
package runtime

import (
	"errors"
	"fmt"
	"sort"

	"github.com/raillang/railway/internal/value"
)

// Sentinel errors distinguishing the scope-layer failure modes described in
// spec.md §7; internal/interp matches these with errors.Is and attaches
// position/construct context when raising a railerr.RailError.
var (
	ErrDuplicateLet    = errors.New("duplicate let")
	ErrUndefinedName   = errors.New("undefined name")
	ErrUnletMismatch   = errors.New("unlet value mismatch")
	ErrImmutableGlobal = errors.New("global is immutable")
)

// Entry is one slot of a Scope: a name, its current value, whether it is
// monodirectional, and whether it is a call-bound alias.
//
// alias is non-nil for a name bound by the call convention (spec.md §4.8):
// such an Entry does not own storage itself — it shares the root Entry's
// val field with the caller, so a Set from either side of the call
// boundary is visible to the other. isParam marks an alias-bound parameter
// so Drain can exempt it from the "callee frame must be empty" check: the
// call convention bound it, not a let the callee is responsible for
// unletting.
type Entry struct {
	name    string
	val     value.Value
	mono    bool
	isParam bool
	alias   *Entry
}

func (e *Entry) value() value.Value {
	if e.alias != nil {
		return e.alias.val
	}
	return e.val
}

func (e *Entry) setValue(v value.Value) {
	if e.alias != nil {
		e.alias.val = v
		return
	}
	e.val = v
}

// Scope is a single function-call frame: a mapping from name to value,
// ordered by introduction, plus a reference to the (read-only) globals
// frame. Per spec.md §3, a function call pushes exactly one fresh Scope;
// if/loop/try bodies share their enclosing function's Scope rather than
// nesting new ones, since let/unlet obligations are tracked per function
// body, not per block.
type Scope struct {
	entries []*Entry
	index   map[string]int
	Globals *Scope

	// ForceMono makes every Let in this frame treat its name as
	// monodirectional regardless of a leading '.' — set on the frame built
	// for a dot-named function's body (spec.md §4.2 "mono rule").
	ForceMono bool

	// rootSnapshot holds the pre-snapshot values of every distinct aliased
	// root this frame's entries reach, populated only on a Scope returned by
	// Snapshot. Restore writes these back into the root Entries themselves,
	// since an Entry's alias field is a pointer shared with the caller's
	// frame — rebuilding entries alone would restore which names are bound
	// but not the aliased storage they were bound to.
	rootSnapshot []rootSnapshot
}

type rootSnapshot struct {
	root *Entry
	val  value.Value
}

// NewScope creates an empty frame enclosed by globals (nil for the root
// globals frame itself).
func NewScope(globals *Scope) *Scope {
	return &Scope{index: make(map[string]int), Globals: globals}
}

// IsMono reports whether name is monodirectional per the leading-'.' rule.
func IsMono(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

// Let introduces name with value v. Returns an error if name is already
// defined in this frame (spec.md §7 ScopeError "duplicate let").
func (s *Scope) Let(name string, v value.Value) error {
	if _, ok := s.index[name]; ok {
		return errDuplicateLet(name)
	}
	s.index[name] = len(s.entries)
	s.entries = append(s.entries, &Entry{name: name, val: v, mono: s.ForceMono || IsMono(name)})
	return nil
}

// Unlet removes name, returning its value. If expected is non-nil, the
// current value must structurally equal it or Unlet returns
// errUnletMismatch; this is the reversibility integrity check of spec.md
// §3/§4.2.
func (s *Scope) Unlet(name string, expected value.Value) (value.Value, error) {
	i, ok := s.index[name]
	if !ok {
		return nil, errUndefined(name)
	}
	cur := s.entries[i].value()
	if expected != nil && !cur.Equal(expected) {
		return nil, errUnletMismatch(name)
	}
	s.remove(i)
	return cur, nil
}

// remove deletes the entry at index i, keeping entries/index consistent.
func (s *Scope) remove(i int) {
	name := s.entries[i].name
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	delete(s.index, name)
	for n, idx := range s.index {
		if idx > i {
			s.index[n] = idx - 1
		}
	}
}

// Get returns the current value of name, searching this frame then
// globals. Globals are read by value (a deep copy), since spec.md §4.9
// globals "are not passed by alias to functions — reads are by value".
func (s *Scope) Get(name string) (value.Value, bool) {
	if i, ok := s.index[name]; ok {
		return s.entries[i].value(), true
	}
	if s.Globals != nil {
		if v, ok := s.Globals.getLocal(name); ok {
			return v.DeepCopy(), true
		}
	}
	return nil, false
}

func (s *Scope) getLocal(name string) (value.Value, bool) {
	if i, ok := s.index[name]; ok {
		return s.entries[i].value(), true
	}
	return nil, false
}

// Has reports whether name is currently bound in this frame or globals.
func (s *Scope) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// HasLocal reports whether name is bound in this frame specifically (not
// globals) — used by the runner to release main's argv binding before the
// drain check.
func (s *Scope) HasLocal(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Set replaces the value of an already-let local name. Globals are
// immutable from inside a function (spec.md §4.9), so a name that only
// resolves in globals cannot be Set.
func (s *Scope) Set(name string, v value.Value) error {
	if i, ok := s.index[name]; ok {
		s.entries[i].setValue(v)
		return nil
	}
	if s.Globals != nil {
		if _, ok := s.Globals.getLocal(name); ok {
			return errImmutableGlobal(name)
		}
	}
	return errUndefined(name)
}

// Ref returns a pointer to the stored value.Value slot for name so callers
// can perform in-place structural mutation (array element assignment)
// through it. Only valid for local (non-global) names. For an alias-bound
// parameter the pointer reaches straight into the root Entry, so the
// mutation is visible across the call boundary.
func (s *Scope) Ref(name string) (*value.Value, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	e := s.entries[i]
	if e.alias != nil {
		return &e.alias.val, true
	}
	return &e.val, true
}

// ResolveRoot returns the root Entry backing name in this frame — itself,
// or (if name is already an alias) the Entry it ultimately aliases. Used by
// the call dispatcher to bind a callee's parameters as aliases of the
// caller's storage, so an alias chain never grows past one hop.
func (s *Scope) ResolveRoot(name string) (*Entry, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	e := s.entries[i]
	if e.alias != nil {
		return e.alias, true
	}
	return e, true
}

// BindAlias introduces name in this frame as an alias of root, sharing its
// storage (spec.md §4.8 borrow/in-out calling convention). The bound entry
// is exempt from Drain's "frame must be empty" leak check.
func (s *Scope) BindAlias(name string, root *Entry) error {
	if _, ok := s.index[name]; ok {
		return errDuplicateLet(name)
	}
	s.index[name] = len(s.entries)
	s.entries = append(s.entries, &Entry{name: name, alias: root, mono: IsMono(name), isParam: true})
	return nil
}

// Promote removes monodirectional name `from` and introduces bidirectional
// name `to` with its value (spec.md §4.4 `promote`).
func (s *Scope) Promote(from, to string) error {
	v, err := s.Unlet(from, nil)
	if err != nil {
		return err
	}
	return s.Let(to, v)
}

// Drain is called at function-call return: every non-mono, non-parameter
// entry must have been unlet already (spec.md §4.8 "the callee's frame
// must be empty"). Mono entries and alias-bound parameters are dropped
// silently. Returns the names of any offending entries still present.
func (s *Scope) Drain() []string {
	var leaked []string
	for _, e := range s.entries {
		if !e.mono && !e.isParam {
			leaked = append(leaked, e.name)
		}
	}
	sort.Strings(leaked)
	s.entries = nil
	s.index = make(map[string]int)
	return leaked
}

// Snapshot captures a deep copy of every currently-bound local entry, for
// try/catch's candidate rollback (spec.md §4.5/§9 "Try's rollback"). A
// frame entering try may already hold alias-bound parameters (the
// enclosing function's own borrow/in-out list) live alongside ordinary
// entries, and the try body's prefix is free to mutate that aliased
// caller storage — spec.md §9 calls this out explicitly ("the search over
// v may touch arbitrary storage, including aliased caller storage"). So
// Snapshot preserves each entry's alias/isParam identity as-is (an alias
// Entry keeps pointing at the same root, not a copy of it) and separately
// records the root's current value, once per distinct root, so Restore can
// roll the actual aliased storage back too.
func (s *Scope) Snapshot() *Scope {
	cp := &Scope{index: make(map[string]int, len(s.index)), Globals: s.Globals, ForceMono: s.ForceMono}
	seen := make(map[*Entry]bool)
	for i, e := range s.entries {
		ne := &Entry{name: e.name, mono: e.mono, isParam: e.isParam}
		if e.alias != nil {
			ne.alias = e.alias
			if !seen[e.alias] {
				seen[e.alias] = true
				cp.rootSnapshot = append(cp.rootSnapshot, rootSnapshot{root: e.alias, val: e.alias.val.DeepCopy()})
			}
		} else {
			ne.val = e.val.DeepCopy()
		}
		cp.entries = append(cp.entries, ne)
		cp.index[e.name] = i
	}
	return cp
}

// Restore replaces this frame's contents with those of a prior Snapshot,
// and writes every recorded root value back into its Entry so that
// mutations made to aliased caller storage since the snapshot was taken
// are undone along with the frame's own local bindings.
func (s *Scope) Restore(snap *Scope) {
	for _, rs := range snap.rootSnapshot {
		rs.root.val = rs.val
	}
	s.entries = snap.entries
	s.index = snap.index
}

// Names returns the currently-bound local names, for diagnostics.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.name)
	}
	return names
}

func errDuplicateLet(name string) error  { return fmt.Errorf("%w: %s", ErrDuplicateLet, name) }
func errUndefined(name string) error     { return fmt.Errorf("%w: %s", ErrUndefinedName, name) }
func errUnletMismatch(name string) error { return fmt.Errorf("%w: %s", ErrUnletMismatch, name) }
func errImmutableGlobal(name string) error {
	return fmt.Errorf("%w: %s", ErrImmutableGlobal, name)
}
