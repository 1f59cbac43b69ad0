package retrieval

import (
	"fmt"
	"strings"
)

// FormatContext renders retrieved documents as numbered context lines for
// inclusion in a request directive. Returns the empty string for no documents.
func FormatContext(docs []Document) string {
	if len(docs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Here is relevant context:\n")
	for i, doc := range docs {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, doc.Content)
	}
	return b.String()
}
