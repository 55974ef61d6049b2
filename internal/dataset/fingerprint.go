package dataset

import (
	"encoding/binary"
	"fmt"

	"github.com/spaolacci/murmur3"
)

// Fingerprint computes a murmur3 128-bit content fingerprint of the table:
// column names, kinds, and every cell in row order. Two tables with the same
// columns and values produce the same fingerprint, which the model registry
// uses to tie trained artifacts to the data they were trained on.
func Fingerprint(t *Table) string {
	h := murmur3.New128()

	var rowBuf [8]byte
	binary.LittleEndian.PutUint64(rowBuf[:], uint64(t.NumRows()))
	h.Write(rowBuf[:])

	for _, name := range t.ColumnNames() {
		col, _ := t.Column(name)
		h.Write([]byte(name))
		h.Write([]byte{byte(col.Kind)})
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				h.Write([]byte{0})
				continue
			}
			fmt.Fprintf(h, "%v", col.Value(i))
		}
	}

	hi, lo := h.Sum128()
	return fmt.Sprintf("%016x%016x", hi, lo)
}
