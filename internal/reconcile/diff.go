package reconcile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/lherron/todu/internal/cache"
	"github.com/lherron/todu/internal/domain"
)

// ItemDiff returns a unified diff between two versions of an item's
// canonical JSON, or "" when they are identical.
func ItemDiff(before, after *domain.Item) (string, error) {
	a, err := json.MarshalIndent(before, "", "  ")
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(after, "", "  ")
	if err != nil {
		return "", err
	}
	if string(a) == string(b) {
		return "", nil
	}

	key := cache.Key(after)
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a) + "\n"),
		B:        difflib.SplitLines(string(b) + "\n"),
		FromFile: key + " (cached)",
		ToFile:   key + " (fetched)",
		Context:  2,
	}
	return difflib.GetUnifiedDiffString(diff)
}

func writeDiff(w io.Writer, before, after *domain.Item) error {
	text, err := ItemDiff(before, after)
	if err != nil || text == "" {
		return err
	}
	_, err = fmt.Fprint(w, text)
	return err
}
