// Package townnames encodes town-name generator definitions. A Session
// owns the id space and the shared random-seed bit budget for one
// compilation run; Action blocks are prepared against it in source order
// and later serialized through the two-phase length/write protocol.
package townnames

import (
	"github.com/tliron/commonlog"

	"github.com/ottdtools/grfgen/pkg/diag"
)

var log = commonlog.GetLogger("grfgen.townnames")

// TotalIDs is the size of the generator id space. It is a hard engine
// limit, not a tunable.
const TotalIDs = 0x80

// IDState is the derived state of a generator id. It is never stored;
// it follows from the session's registries.
type IDState int

const (
	// IDFree means the id is available for allocation.
	IDFree IDState = iota

	// IDNamed means the id is allocated under a name and safe to
	// reference.
	IDNamed

	// IDNumberedSafe means the id was chosen by the user and its block
	// has been prepared, so references to it are safe.
	IDNumberedSafe

	// IDNumberedUnsafe means the id was claimed by the user but its
	// block is not prepared yet.
	IDNumberedUnsafe

	// IDInvisible means the id belongs to a block without a name or
	// user number and cannot be referenced.
	IDInvisible
)

// Session tracks id allocation and bit-budget state for one compilation
// run. It is not a process singleton: construct one per run and discard
// it (or Reset it) between independent runs.
type Session struct {
	free      map[int]bool
	firstFree int // all ids below this are allocated; never rescans backward
	named     map[string]int
	numbered  map[int]bool
	blocks    map[int]*Action
}

// NewSession creates a session with the whole id space free.
func NewSession() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset returns the session to its initial state. Any previously
// prepared blocks become unknown to it.
func (s *Session) Reset() {
	s.free = make(map[int]bool, TotalIDs)
	for id := 0; id < TotalIDs; id++ {
		s.free[id] = true
	}
	s.firstFree = 0
	s.named = make(map[string]int)
	s.numbered = make(map[int]bool)
	s.blocks = make(map[int]*Action)
}

// AllocateID hands out the smallest unused id. The scan cursor only
// moves forward; ids below it are known to be taken.
func (s *Session) AllocateID(pos diag.Position) (int, error) {
	for !s.free[s.firstFree] {
		s.firstFree++
		if s.firstFree >= TotalIDs {
			return 0, diag.Errorf(diag.ResourceExhausted, pos,
				"too many town name blocks, some of these are autogenerated; please use fewer town names")
		}
	}
	id := s.firstFree
	delete(s.free, id)
	s.firstFree++
	return id, nil
}

// ClaimID takes a user-chosen id out of the free set.
func (s *Session) ClaimID(id int) {
	delete(s.free, id)
}

// RegisterNamed records id under name. The id stays consumed even when
// the name is already taken: redefinition is an authoring error, not a
// transaction to roll back.
func (s *Session) RegisterNamed(name string, id int, pos diag.Position) error {
	if _, exists := s.named[name]; exists {
		return diag.Errorf(diag.DuplicateDefinition, pos,
			"cannot define town name %q, it is already in use", name)
	}
	s.named[name] = id
	return nil
}

// RegisterNumbered marks a user-chosen id as safe to reference.
func (s *Session) RegisterNumbered(id int) {
	s.numbered[id] = true
}

// ResolveNamed returns the id registered under name.
func (s *Session) ResolveNamed(name string, pos diag.Position) (int, error) {
	id, ok := s.named[name]
	if !ok {
		return 0, diag.Errorf(diag.Script, pos, "unknown town name %q", name)
	}
	return id, nil
}

// CheckID reports an error when id is not safe to reference: it must be
// a prepared, user-numbered id or one registered under a name.
func (s *Session) CheckID(id int, pos diag.Position) error {
	if s.numbered[id] {
		return nil
	}
	for _, named := range s.named {
		if named == id {
			return nil
		}
	}
	return diag.Errorf(diag.Script, pos, "town name id %d is not safe to reference here", id)
}

// StateOf derives the logical state of an id from the registries.
func (s *Session) StateOf(id int) IDState {
	if s.free[id] {
		return IDFree
	}
	for _, named := range s.named {
		if named == id {
			return IDNamed
		}
	}
	if s.numbered[id] {
		return IDNumberedSafe
	}
	if _, owned := s.blocks[id]; owned {
		return IDInvisible
	}
	return IDNumberedUnsafe
}

// Stats returns how many ids are consumed out of the total.
func (s *Session) Stats() (used, total int) {
	return TotalIDs - len(s.free), TotalIDs
}

// LogStats logs id usage when any ids are consumed.
func (s *Session) LogStats() {
	used, total := s.Stats()
	if used > 0 {
		log.Infof("town names: %d/%d", used, total)
	}
}

// startBit returns the first seed bit available to a new block: zero for
// the first block, otherwise the highest range end over all prepared
// blocks. Ranges chain monotonically and are never reused.
func (s *Session) startBit() int {
	bit := 0
	for _, block := range s.blocks {
		if block.bitRangeEnd > bit {
			bit = block.bitRangeEnd
		}
	}
	return bit
}
