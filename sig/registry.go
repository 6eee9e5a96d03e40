package sig

import "github.com/transactron/transactron/txerr"

// ID is the interned identity of a Signature. Two Intern calls with the
// same name, structurally equal layouts and the same nonexclusive flag
// return the same ID; calls under different names get different IDs even
// when their layouts are equal. Two calls with the same name but a different
// layout fail with txerr.LayoutMismatch instead of silently returning a
// second ID, since
// spec.md §3 requires "two methods with the same signature are still
// distinct identities" but a given identity's signature never changes
// underneath it.
type ID uint32

// Signature is the immutable descriptor behind an ID.
type Signature struct {
	Inputs       Layout
	Outputs      Layout
	Nonexclusive bool
}

// Registry interns Signatures, keyed by a designer-supplied name (the
// method's own identity name — not the layout's structural key — so that
// re-registering the *same* method name with an incompatible layout is
// caught, the way the teacher's callee.go Find() returns the existing
// Callee by (address, signature) key and never silently replaces it).
type Registry struct {
	byName map[string]ID
	sigs   []Signature
	names  []string
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]ID)}
}

// Intern registers name with the given signature, or validates that an
// existing registration under name matches it exactly. where is the
// definition's source location, used only for the LayoutMismatch error.
func (r *Registry) Intern(name string, in, out Layout, nonexclusive bool, where txerr.Location) (ID, *txerr.Error) {
	next := Signature{Inputs: in, Outputs: out, Nonexclusive: nonexclusive}

	if id, ok := r.byName[name]; ok {
		existing := r.sigs[id]
		if !existing.Inputs.Equal(in) || !existing.Outputs.Equal(out) || existing.Nonexclusive != nonexclusive {
			return 0, txerr.New(txerr.LayoutMismatch, where, name,
				"method %q re-registered with incompatible layout (in %s != %s, out %s != %s, nonexclusive %v != %v)",
				name, existing.Inputs.key(), in.key(), existing.Outputs.key(), out.key(), existing.Nonexclusive, nonexclusive)
		}
		return id, nil
	}

	id := ID(len(r.sigs))
	r.sigs = append(r.sigs, next)
	r.names = append(r.names, name)
	r.byName[name] = id
	return id, nil
}

// Lookup returns the Signature behind id. ok is false only for an ID never
// produced by this Registry.
func (r *Registry) Lookup(id ID) (Signature, bool) {
	if int(id) >= len(r.sigs) {
		return Signature{}, false
	}
	return r.sigs[id], true
}

// Name returns the designer-supplied name an ID was interned under.
func (r *Registry) Name(id ID) string {
	if int(id) >= len(r.names) {
		return ""
	}
	return r.names[id]
}

// Len returns the number of distinct names interned so far.
func (r *Registry) Len() int { return len(r.sigs) }
