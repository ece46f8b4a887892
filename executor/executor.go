// Package executor orchestrates a parsed query plan into a result set: it
// applies SELECT/FROM overrides, invokes the ingester through the FROM
// dispatch table, filters records with a shunting-yard WHERE evaluator,
// sorts them, and projects the SELECT field list.
package executor

import (
	"context"
	"fmt"

	"github.com/mdql/mdql/mdqlerr"
	"github.com/mdql/mdql/parser"
	"github.com/mdql/mdql/value"
)

// Run executes plan (with overrides folded in first) and returns the
// projected field list alongside the resulting records.
func Run(ctx context.Context, plan parser.Query, overrides Overrides) ([]string, []value.Value, error) {
	effective, err := applyOverrides(plan, overrides)
	if err != nil {
		return nil, nil, err
	}

	if effective.From == nil {
		return nil, nil, fmt.Errorf("%w: a FROM clause is required", mdqlerr.ErrArgument)
	}

	records, err := runFrom(ctx, effective.From)
	if err != nil {
		return nil, nil, err
	}

	filtered, err := filterWhere(effective.Where, records)
	if err != nil {
		return nil, nil, err
	}

	sortRecords(filtered, effective.OrderBy)

	projected := make([]value.Value, len(filtered))
	for i, rec := range filtered {
		projected[i] = projectSelect(effective.Select, rec)
	}

	return effective.Select, projected, nil
}

// filterWhere evaluates expr against every record, first dry-running it
// against the first record alone so structural/type errors surface before
// the full set is scanned.
func filterWhere(expr []parser.ExprToken, records []value.Value) ([]value.Value, error) {
	if len(expr) == 0 {
		return records, nil
	}
	if len(records) == 0 {
		return records, nil
	}

	if _, err := evaluateWhere(expr, records[0]); err != nil {
		return nil, err
	}

	out := make([]value.Value, 0, len(records))
	for _, rec := range records {
		result, err := evaluateWhere(expr, rec)
		if err != nil {
			return nil, err
		}
		if b, ok := result.AsBool(); ok && b {
			out = append(out, rec)
		}
	}
	return out, nil
}
