//go:build !windows

package workbook

import (
	"os"

	"github.com/google/renameio/v2"
)

func writeFileAtomicImpl(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}
