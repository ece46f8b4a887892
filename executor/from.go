package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/mdql/mdql/ingest"
	"github.com/mdql/mdql/mdqlerr"
	"github.com/mdql/mdql/parser"
	"github.com/mdql/mdql/value"
)

// runFrom dispatches call by its upper-cased name (the parser already
// upper-cases FROM call names) to the ingester.
func runFrom(ctx context.Context, call *parser.Call) ([]value.Value, error) {
	dir, err := singleStringArg(call)
	if err != nil {
		return nil, err
	}

	files, err := ingest.Walk(ctx, dir)
	if err != nil {
		return nil, err
	}

	switch call.Name {
	case "FRONTMATTER_DATA":
		return frontmatterRecords(files), nil
	case "MARKDOWN_LINKS":
		return flattenValues(files, func(fi *ingest.FileInfo) []value.Value { return fi.Links }), nil
	case "MARKDOWN_TASKS":
		return flattenValues(files, func(fi *ingest.FileInfo) []value.Value { return fi.Tasks }), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized FROM function %s", mdqlerr.ErrArgument, call.Name)
	}
}

// singleStringArg validates the "exactly one string argument" rule shared
// by every FROM function.
func singleStringArg(call *parser.Call) (string, error) {
	if len(call.Args) != 1 {
		return "", fmt.Errorf("%w: %s expects exactly 1 argument, got %d", mdqlerr.ErrArgument, call.Name, len(call.Args))
	}
	arg := call.Args[0]
	if arg.Kind != parser.TokLiteral {
		return "", fmt.Errorf("%w: %s expects a string literal argument", mdqlerr.ErrArgument, call.Name)
	}
	s, ok := arg.Literal.AsString()
	if !ok {
		return "", fmt.Errorf("%w: %s expects a string argument", mdqlerr.ErrArgument, call.Name)
	}
	return s, nil
}

// frontmatterRecords builds one record per file: its front-matter hash
// (already carrying the synthesized "file" sub-hash) augmented with
// "today"/"now", injected at query time after ingestion.
func frontmatterRecords(files map[string]*ingest.FileInfo) []value.Value {
	now := time.Now()
	today := now.Format("2006-01-02")
	nowStr := now.Format("2006-01-02T15:04:05")

	records := make([]value.Value, 0, len(files))
	for _, fi := range files {
		rec := fi.FrontMatter.Clone()
		rec.Insert("today", value.NewString(today))
		rec.Insert("now", value.NewString(nowStr))
		records = append(records, rec)
	}
	return records
}

func flattenValues(files map[string]*ingest.FileInfo, pick func(*ingest.FileInfo) []value.Value) []value.Value {
	var out []value.Value
	for _, fi := range files {
		out = append(out, pick(fi)...)
	}
	return out
}
