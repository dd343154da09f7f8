package lang

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ottdtools/grfgen/pkg/diag"
)

// LoadDir reads every .lng file in dir into the store. Files are loaded
// in name order so diagnostics are stable.
func (s *Store) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read language dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".lng" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.LoadFile(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads one translation file. The file declares its language id
// with a "##grflangid <id>" pragma before any entry; entries are
// "KEY :text" lines. "#" lines are comments.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open language file %s: %w", path, err)
	}
	defer f.Close()

	langID := -1
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		pos := diag.Position{File: path, Line: lineNum}

		if after, ok := strings.CutPrefix(line, "##grflangid"); ok {
			id, err := strconv.ParseInt(strings.TrimSpace(after), 0, 32)
			if err != nil {
				return diag.Errorf(diag.Script, pos, "invalid language id %q", strings.TrimSpace(after))
			}
			if id < 0 || id > DefaultLangID {
				return diag.Errorf(diag.Script, pos, "language id %#x out of range [0, 0x7F]", id)
			}
			langID = int(id)
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, text, ok := strings.Cut(line, ":")
		if !ok {
			return diag.Errorf(diag.Script, pos, "expected \"KEY :text\", got %q", line)
		}
		if langID < 0 {
			return diag.Errorf(diag.Script, pos, "string before ##grflangid pragma")
		}
		s.Add(strings.TrimSpace(key), langID, text)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read language file %s: %w", path, err)
	}
	return nil
}
