package cartengine

import (
	"fmt"

	"github.com/rbos-labs/rbos-backend/pkg/types"
)

// ProjectBanners renders one banner per conflict entry in a stable order:
// dropped, then clamped, then merged.
func ProjectBanners(report *types.ConflictReport) []string {
	if report.IsEmpty() {
		return nil
	}
	out := make([]string, 0, report.Len())
	for _, e := range report.Dropped {
		out = append(out, fmt.Sprintf("%s removed - %s", entryName(e), e.Reason))
	}
	for _, e := range report.Clamped {
		out = append(out, fmt.Sprintf("%s reduced to %d (requested %d) - %s",
			entryName(e), e.Applied, e.Requested, e.Reason))
	}
	for _, e := range report.Merged {
		out = append(out, fmt.Sprintf("%s combined into a single line (qty %d)",
			entryName(e), e.Applied))
	}
	return out
}

func entryName(e types.ConflictEntry) string {
	if e.Name != "" {
		return e.Name
	}
	return e.ItemID
}
