// Package output drives record serialization into an output file: the
// header legend, the two-phase record pipeline, and the compilation
// cache sidecar used to detect unchanged records across runs.
package output

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/ottdtools/grfgen/manifest"
	"github.com/ottdtools/grfgen/pkg/lang"
	"github.com/ottdtools/grfgen/pkg/nfo"
)

var log = commonlog.GetLogger("grfgen.output")

// Record is one serializable unit of the output container. Write must
// open its own sized frame on the writer and fill it exactly.
type Record interface {
	Write(w *nfo.Writer) error
}

// LoadTranslations loads the project's translation files into a store.
func LoadTranslations(m *manifest.Manifest) (*lang.Store, error) {
	store := lang.NewStore()
	if err := store.LoadDir(m.LanguagesDirPath()); err != nil {
		return nil, err
	}
	return store, nil
}

// headerFormat is the escape-code legend documenting the notation for
// the downstream assembler. The info version is substituted in.
const headerFormat = "// Automatically generated by grfgen. Do not modify!\n" +
	"// (Info version %d)\n" +
	"// Escapes: 2+ 2- 2< 2> 2u< 2u> 2/ 2%% 2u/ 2u%% 2* 2& 2| 2^" +
	" 2sto = 2s 2rst = 2r 2psto 2ror = 2rot 2cmp 2ucmp 2<< 2u>> 2>>\n" +
	"// Escapes: 71 70 7= 7! 7< 7> 7G 7g 7gG 7GG 7gg 7c 7C\n" +
	"// Escapes: D= = DR D+ = DF D- = DC Du* = DM D* = DnF Du<< = DnC D<< = DO D& D| Du/ D/ Du%% D%%\n" +
	"// Format: spritenum imagefile depth xpos ypos xsize ysize xrel yrel zoom flags\n\n"

// File accumulates records for one output file.
type File struct {
	path        string
	infoVersion int
	cacheOn     bool
	runID       string

	w    *nfo.Writer
	meta []RecordMeta
}

// New creates a File configured from the project manifest.
func New(m *manifest.Manifest) *File {
	return &File{
		path:        m.OutputPath(),
		infoVersion: m.Output.InfoVersion,
		cacheOn:     m.Output.Cache,
		runID:       uuid.NewString(),
		w:           nfo.NewWriter(m.Output.StartSprite),
	}
}

// Writer exposes the underlying serialization handle for records that
// are emitted outside the pipeline (e.g. image records).
func (f *File) Writer() *nfo.Writer { return f.w }

// WriteRecords serializes each record in order, tracking the index,
// size, and content hash of every emitted frame for the cache sidecar.
func (f *File) WriteRecords(records []Record) error {
	for _, record := range records {
		index := f.w.SpriteNum()
		before := f.w.TextLen()
		if err := record.Write(f.w); err != nil {
			return fmt.Errorf("record %d: %w", index, err)
		}
		text := f.w.String()[before:]
		sum := sha256.Sum256([]byte(text))
		f.meta = append(f.meta, RecordMeta{Index: index, Size: len(text), Hash: sum[:]})
	}
	log.Debugf("serialized %d records", len(records))
	return nil
}

// Header returns the file header for the configured info version.
func (f *File) Header() string {
	return fmt.Sprintf(headerFormat, f.infoVersion)
}

// Flush writes the header and assembled body to the output path, plus
// the cache sidecar when caching is enabled.
func (f *File) Flush() error {
	content := f.Header() + f.w.Assemble()
	if err := os.WriteFile(f.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	log.Infof("wrote %s (%d records)", f.path, len(f.meta))

	if f.cacheOn {
		cache := &Cache{RunID: f.runID, Records: f.meta}
		if err := SaveCache(CachePath(f.path), cache); err != nil {
			return err
		}
	}
	return nil
}
