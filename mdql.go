// Package mdql ties the parser, executor, and serializer together into
// the two operations the command-line tool exposes: running a query and
// finding embedded snippets. It is the single shared entry point for
// cmd/mdql.
package mdql

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mdql/mdql/executor"
	"github.com/mdql/mdql/parser"
	"github.com/mdql/mdql/serialize"
	"github.com/mdql/mdql/snippet"
)

// Options carries the CLI-level request, independent of output format.
// Select, From, and IncludeFields are nil when the corresponding flag was
// not passed, distinct from being passed with an empty value.
type Options struct {
	Query         string
	Select        *string
	From          *string
	IncludeFields *string
	JSON          bool
}

// Query parses opts.Query, applies any overrides, executes it, and
// renders the result in the requested output format.
func Query(ctx context.Context, opts Options) (string, error) {
	plan, err := parser.Parse(opts.Query)
	if err != nil {
		return "", err
	}

	overrides := executor.Overrides{
		Select:        opts.Select,
		From:          opts.From,
		IncludeFields: opts.IncludeFields,
	}

	fields, rows, err := executor.Run(ctx, *plan, overrides)
	if err != nil {
		return "", err
	}

	if opts.JSON {
		out, err := serialize.ToJSON(fields, rows)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	return serialize.ToTSV(fields, rows), nil
}

// Find lists every "krafna" code snippet under dir, one per line, or as a
// JSON array when asJSON is set.
func Find(ctx context.Context, dir string, asJSON bool) (string, error) {
	blocks, err := snippet.Find(ctx, dir)
	if err != nil {
		return "", err
	}
	if asJSON {
		if blocks == nil {
			blocks = []string{}
		}
		out, err := json.Marshal(blocks)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	return strings.Join(blocks, "\n"), nil
}
