// ABOUTME: Copies every document of one collection into another
// ABOUTME: Used to move a workspace between the kv and sql backends
package docstore

import (
	"context"
	"fmt"
)

// CopyResult counts what Copy wrote. Replaced documents already existed in dst.
type CopyResult struct {
	Copied   int
	Replaced int
}

// Copy writes each document of src into dst under the same id. With dryRun
// set nothing is written but the counts are still reported.
func Copy(ctx context.Context, src, dst Collection, dryRun bool) (CopyResult, error) {
	var res CopyResult

	docs, err := src.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list %s: %w", src.Name(), err)
	}

	existing, err := dst.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list %s: %w", dst.Name(), err)
	}
	present := make(map[string]bool, len(existing))
	for _, d := range existing {
		present[d.ID] = true
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if present[doc.ID] {
			res.Replaced++
		}
		res.Copied++
		if dryRun {
			continue
		}
		if err := dst.Set(ctx, doc.ID, cloneFields(doc.Fields)); err != nil {
			return res, fmt.Errorf("copy %s: %w", doc.ID, err)
		}
	}
	return res, nil
}
