package receipt

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parsed is the outcome of parsing one receipt in a batch.
type Parsed struct {
	Result   *Result
	Merchant string
	HasName  bool
}

// ParseAll parses several receipts concurrently, at most limit at a time
// (limit <= 0 means no limit). Results are returned in input order. Parsing
// itself cannot fail; the only error is ctx being cancelled.
func ParseAll(ctx context.Context, texts []string, limit int) ([]Parsed, error) {
	out := make([]Parsed, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			merchant, ok := SuggestMerchant(text)
			out[i] = Parsed{
				Result:   Parse(text),
				Merchant: merchant,
				HasName:  ok,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
