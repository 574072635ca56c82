// Package surfmap implements the SurfaceMap of spec.md §4.1 (component
// C6): the process-wide registry mapping surface ids/names to Surface
// instances, guarded by a single mutex so that FILL's worker pool can
// register transformed copies concurrently (spec.md §5). Grounded on
// gofem/inp's global id-registry idiom (the same register/lookup shape
// inp.go uses for its DOF and element-tag tables).
package surfmap

import (
	"regexp"
	"sync"

	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/mat"
	"github.com/cpmech/mcgeom/internal/surf"
	"github.com/cpmech/mcgeom/internal/vec3"
)

// Map is the concurrency-safe surface registry.
type Map struct {
	mu      sync.Mutex
	byID    map[int32]surf.Surface
	byName  map[string]int32
	nextSeq int32
}

// New builds an empty Map.
func New() *Map {
	return &Map{byID: map[int32]surf.Surface{}, byName: map[string]int32{}}
}

// Register inserts s by its id, failing with DuplicateId/DuplicateName
// per spec.md §4.1: a conflicting id is always an error; a reused name
// bound to a different id is also an error.
func (m *Map) Register(s surf.Surface) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registerLocked(s)
}

func (m *Map) registerLocked(s surf.Surface) error {
	if _, exists := m.byID[s.ID()]; exists {
		return geomerr.New(geomerr.DuplicateId, "surface id %d is already registered", s.ID())
	}
	if existingID, exists := m.byName[s.Name()]; exists && existingID != s.ID() {
		return geomerr.New(geomerr.DuplicateName, "surface name %q is already bound to id %d", s.Name(), existingID)
	}
	m.byID[s.ID()] = s
	m.byName[s.Name()] = s.ID()
	if s.ID() >= m.nextSeq {
		m.nextSeq = s.ID() + 1
	}
	return nil
}

// Get looks up a surface by id.
func (m *Map) Get(id int32) (surf.Surface, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	return s, ok
}

// GetByName looks up a surface by name.
func (m *Map) GetByName(name string) (surf.Surface, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.byID[id], true
}

// IsForward applies the stored surface's forward test at id.
func (m *Map) IsForward(id int32, p vec3.Vector) (bool, error) {
	s, ok := m.Get(id)
	if !ok {
		return false, geomerr.New(geomerr.BadCard, "surface id %d is not registered", id)
	}
	return s.IsForward(p), nil
}

// RegisterTransformed implements register_transformed (spec.md §4.1):
// deep-copies the surface named oldName, applies aff, names the result
// deterministically from oldName and the outer TRCL-applying cell
// (tredCell), and registers both the forward and reversed instances.
// Returns the new forward name.
func (m *Map) RegisterTransformed(oldName, tredCell string, aff mat.Affine) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byName[oldName]
	if !ok {
		return "", geomerr.New(geomerr.BadCard, "surface %q is not registered", oldName)
	}
	src := m.byID[id]

	newName := oldName + "_t" + tredCell
	if _, exists := m.byName[newName]; exists {
		return newName, nil // already transformed for this anchor cell: idempotent
	}

	fwdID := m.nextSeq
	m.nextSeq++
	revID := m.nextSeq
	m.nextSeq++

	transformed := src.Transform(aff).Renamed(fwdID, newName)
	if err := m.registerLocked(transformed); err != nil {
		return "", err
	}
	reversed := transformed.Reverse().Renamed(revID, "-"+newName)
	if err := m.registerLocked(reversed); err != nil {
		return "", err
	}
	return newName, nil
}

// MakeIndexEquation substitutes every surface name occurring in
// nameEquation with its numeric id, wrapped in a stripped sentinel
// ("*id*") so that a later strip pass cannot confuse a replacement
// digit string with a substring of a longer, not-yet-replaced surface
// name (spec.md §4.1).
func (m *Map) MakeIndexEquation(nameEquation string) (string, error) {
	m.mu.Lock()
	names := make([]string, 0, len(m.byName))
	for n := range m.byName {
		names = append(names, n)
	}
	ids := make(map[string]int32, len(m.byName))
	for n, id := range m.byName {
		ids[n] = id
	}
	m.mu.Unlock()

	// longest names first, so a shorter name that is a substring of a
	// longer one never matches first and fragments it.
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if len(names[j]) > len(names[i]) {
				names[i], names[j] = names[j], names[i]
			}
		}
	}

	out := nameEquation
	for _, n := range names {
		re, err := regexp.Compile(`(^|[^*` + boundaryBlockingClass + `])` + regexp.QuoteMeta(n) + `($|[^*` + boundaryBlockingClass + `])`)
		if err != nil {
			return "", geomerr.New(geomerr.BadCard, "internal: bad name regex for %q: %v", n, err)
		}
		for {
			loc := re.FindStringSubmatchIndex(out)
			if loc == nil {
				break
			}
			pre := out[loc[2]:loc[3]]
			post := out[loc[4]:loc[5]]
			repl := pre + "*" + itoa(ids[n]) + "*" + post
			out = out[:loc[0]] + repl + out[loc[1]:]
		}
	}
	// strip the sentinel markers now that every name has been resolved.
	stripped := make([]byte, 0, len(out))
	for i := 0; i < len(out); i++ {
		if out[i] == '*' {
			continue
		}
		stripped = append(stripped, out[i])
	}
	return string(stripped), nil
}

// boundaryBlockingClass is spec.md §4.1's name character set
// `[-+.,_@<\[\]\w]` minus the leading sign symbols "-"/"+" (those can
// never appear inside an actual surface name: the grammar reserves
// them as the cell-equation reversal/white-cell prefix operators), so
// that a sign character directly preceding or following a name is
// always treated as a true boundary rather than name continuation.
const boundaryBlockingClass = `.,_@<\[\]\w`

func itoa(id int32) string {
	if id == 0 {
		return "0"
	}
	neg := id < 0
	if neg {
		id = -id
	}
	var buf [12]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = byte('0' + id%10)
		id /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
