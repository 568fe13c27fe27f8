package xcdat

import (
	"fmt"
	"io"
)

func showSize(w io.Writer, label string, n uint64) {
	fmt.Fprintf(w, "%s %d\n", label, n)
}

func showSizeRatio(w io.Writer, label string, n, total uint64) {
	fmt.Fprintf(w, "%s %d\t%0.3f\n", label, n, float64(n)/float64(total))
}

// WriteStats reports dictionary statistics in a human-readable form.
// The report is diagnostic output, not part of the serialized format.
func (t *Trie) WriteStats(w io.Writer) {
	total := t.SizeInBytes()
	fmt.Fprintf(w, "basic statistics of xcdat.Trie\n")
	showSize(w, "\tnum keys:      ", t.NumKeys())
	showSize(w, "\talphabet size: ", t.AlphabetSize())
	showSize(w, "\tnum nodes:     ", t.NumNodes())
	showSize(w, "\tnum used nodes:", t.NumUsedNodes())
	showSize(w, "\tnum free nodes:", t.NumFreeNodes())
	showSize(w, "\tsize in bytes: ", total)
	fmt.Fprintf(w, "member size statistics of xcdat.Trie\n")
	showSizeRatio(w, "\tbc:            ", t.bc.SizeInBytes(), total)
	showSizeRatio(w, "\tterminal flags:", t.terminal.SizeInBytes(), total)
	showSizeRatio(w, "\ttail:          ", 8+uint64(len(t.tail)), total)
	showSizeRatio(w, "\tboundary flags:", t.boundary.SizeInBytes(), total)
	t.bc.writeStats(w, total)
}
