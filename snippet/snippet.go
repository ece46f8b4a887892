// Package snippet implements the embedded code-snippet finder: it reuses
// the ingester's per-file products and flattens the already
// "krafna"-filtered code blocks across a directory.
package snippet

import (
	"context"

	"github.com/mdql/mdql/ingest"
)

// Find collects every "krafna"-tagged fenced code block under dir. Order
// is unspecified across files but stable within a file.
func Find(ctx context.Context, dir string) ([]string, error) {
	files, err := ingest.Walk(ctx, dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, fi := range files {
		out = append(out, fi.CodeBlocks...)
	}
	return out, nil
}
