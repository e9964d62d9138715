package workbook

import (
	"fmt"
	"os"

	"wbdeps/internal/analysis"
	"wbdeps/pkg/logging"
)

// Save writes the document with edits applied back to its file. Nothing is
// written when edits is empty.
func (d *Document) Save(edits []analysis.Edit) error {
	if len(edits) == 0 {
		return nil
	}
	data, err := d.Patched(edits)
	if err != nil {
		return err
	}
	if d.Path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := WriteFileAtomic(d.Path, data, d.Mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", d.Path, err)
	}
	logging.Info("Workbook", "Wrote %d repairs to %s", len(edits), d.Path)
	return nil
}

// WriteFileAtomic replaces filename with data. Readers see either the old or
// the new content, never a partial file.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}
	return writeFileAtomicImpl(filename, data, perm)
}
