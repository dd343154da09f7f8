package townnames

import (
	"fmt"

	"github.com/ottdtools/grfgen/pkg/diag"
	"github.com/ottdtools/grfgen/pkg/expr"
	"github.com/ottdtools/grfgen/pkg/lang"
	"github.com/ottdtools/grfgen/pkg/nfo"
)

// actionTag is the record type tag for town-name generator blocks.
const actionTag = 0x0F

// seedBits is the shared random-seed capacity every generator block
// draws its bit range from.
const seedBits = 32

// Identity states how a block can be referenced: not at all, by name, or
// by a user-chosen number.
type Identity interface {
	isIdentity()
}

// Invisible blocks get an id but cannot be referenced afterwards.
type Invisible struct{}

// Named blocks register their id under a globally unique name.
type Named struct {
	Name string
}

// Numbered blocks use an id the user picked as a constant expression.
type Numbered struct {
	Num *expr.ConstantNumeric
}

func (Invisible) isIdentity() {}
func (Named) isIdentity()     {}
func (Numbered) isIdentity()  {}

// Part is one name-part of a generator. Parts are opaque to the block:
// it only needs their reference resolution, bit consumption, serialized
// length, and serialized form.
type Part interface {
	// ResolveReferencedIDs validates references to earlier blocks and
	// returns the ids this part depends on.
	ResolveReferencedIDs(s *Session) ([]int, error)

	// AssignBits packs the part's alternatives starting at the given
	// seed bit and returns how far the running position advances. A
	// part with a single alternative needs no selection bits and
	// returns zero.
	AssignBits(start int) int

	// Length returns the part's serialized byte size.
	Length() int

	// Write emits the part's serialized form.
	Write(w *nfo.Writer) error
}

// StyleEntry is one resolved translation of a block's style name.
type StyleEntry struct {
	Lang int
	Text string
}

// Action is one town-name generator block. Construct it with NewAction,
// call Prepare once in source declaration order, then Length and Write
// follow the two-phase protocol: Length is pure and must agree
// byte-for-byte with what Write emits.
type Action struct {
	Identity Identity
	Parts    []Part
	Pos      diag.Position

	// StyleName is the translatable display-name key, empty for none.
	StyleName string

	id          int
	styleTable  []StyleEntry
	bitRangeEnd int
	prepared    bool
}

// NewAction creates an unprepared block.
func NewAction(identity Identity, styleName string, parts []Part, pos diag.Position) *Action {
	return &Action{
		Identity:  identity,
		StyleName: styleName,
		Parts:     parts,
		Pos:       pos,
	}
}

// ID returns the block's allocated id. Valid after Prepare.
func (a *Action) ID() int { return a.id }

// BitRangeEnd returns the exclusive upper bound of the seed bits this
// block consumes. Valid after Prepare.
func (a *Action) BitRangeEnd() int { return a.bitRangeEnd }

// StyleTable returns the resolved style translations. Valid after
// Prepare.
func (a *Action) StyleTable() []StyleEntry { return a.styleTable }

// Prepare consumes the session: it resolves part references, allocates
// the block's id, reserves its seed bit range, and builds the style
// table. Blocks must be prepared in source declaration order; the bit
// ranges chain off every previously prepared block.
func (a *Action) Prepare(s *Session, svc lang.Service) error {
	if a.prepared {
		return diag.Errorf(diag.Script, a.Pos, "town name block prepared twice")
	}

	for _, part := range a.Parts {
		if _, err := part.ResolveReferencedIDs(s); err != nil {
			return err
		}
	}

	switch identity := a.Identity.(type) {
	case Invisible:
		id, err := s.AllocateID(a.Pos)
		if err != nil {
			return err
		}
		a.id = id
	case Named:
		id, err := s.AllocateID(a.Pos)
		if err != nil {
			return err
		}
		a.id = id
		if err := s.RegisterNamed(identity.Name, id, a.Pos); err != nil {
			return err
		}
	case Numbered:
		a.id = int(identity.Num.Value)
		if a.id < 0 || a.id >= TotalIDs {
			return diag.Errorf(diag.Script, a.Pos, "town name id %d out of range [0, %d)", a.id, TotalIDs)
		}
		s.ClaimID(a.id)
		s.RegisterNumbered(a.id)
	default:
		return diag.Errorf(diag.Script, a.Pos, "unknown town name identity %T", identity)
	}

	// The start bit is fixed before this block joins the registry.
	startBit := s.startBit()
	s.blocks[a.id] = a

	for _, part := range a.Parts {
		startBit += part.AssignBits(startBit)
	}
	a.bitRangeEnd = startBit
	if startBit > seedBits {
		return diag.Errorf(diag.CapacityExceeded, a.Pos,
			"not enough random bits for the town name generation (%d needed, %d available)", startBit, seedBits)
	}

	if err := a.buildStyleTable(svc); err != nil {
		return err
	}
	a.prepared = true
	return nil
}

// StyleTableLength returns the serialized size of the style table: per
// entry a language id byte plus the encoded text, and one terminator
// byte for the whole table. A block without a style table contributes
// nothing, not even the terminator.
func (a *Action) StyleTableLength() int {
	if len(a.styleTable) == 0 {
		return 0
	}
	size := 0
	for _, entry := range a.styleTable {
		size += 1 + lang.StringSize(entry.Text, true)
	}
	return size + 1
}

// PartsLength returns the serialized size of the parts table: the part
// count byte plus each part's own length.
func (a *Action) PartsLength() int {
	size := 1
	for _, part := range a.Parts {
		size += part.Length()
	}
	return size
}

// Length returns the block's total declared frame size: the record tag,
// the identity byte, the style table, and the parts table.
func (a *Action) Length() int {
	return 2 + a.StyleTableLength() + a.PartsLength()
}

// Write emits the block as one sized record frame. The frame size is
// the value Length computes; a disagreement trips the writer's frame
// assertion.
func (a *Action) Write(w *nfo.Writer) error {
	w.StartSprite(2 + a.StyleTableLength() + a.PartsLength())
	if err := w.PrintByteX(actionTag); err != nil {
		return err
	}

	idByte := a.id
	if len(a.styleTable) > 0 {
		idByte |= 0x80
	}
	if err := w.PrintByteX(idByte); err != nil {
		return err
	}
	w.Newline(a.comment())

	if err := a.writeStyles(w); err != nil {
		return err
	}
	if err := a.writeParts(w); err != nil {
		return err
	}
	w.EndSprite()
	return nil
}

// comment returns the human-readable name annotation for the record
// line, empty for invisible blocks.
func (a *Action) comment() string {
	switch identity := a.Identity.(type) {
	case Named:
		return identity.Name
	case Numbered:
		return fmt.Sprintf("%d", identity.Num.Value)
	default:
		return ""
	}
}

func (a *Action) writeStyles(w *nfo.Writer) error {
	if len(a.styleTable) == 0 {
		return nil
	}
	for _, entry := range a.styleTable {
		if err := w.PrintByteX(entry.Lang); err != nil {
			return err
		}
		if err := w.PrintString(entry.Text, true, false); err != nil {
			return err
		}
		w.Newline("")
	}
	if err := w.PrintByteX(0); err != nil {
		return err
	}
	w.Newline("")
	return nil
}

func (a *Action) writeParts(w *nfo.Writer) error {
	if err := w.PrintByteX(len(a.Parts)); err != nil {
		return err
	}
	for _, part := range a.Parts {
		if err := part.Write(w); err != nil {
			return err
		}
		w.Newline("")
	}
	return nil
}
