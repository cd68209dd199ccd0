package boundary

import "github.com/dshills/squall/internal/snapshot"

// defaultFallback builds the substitute subtree shown when no custom
// fallback is configured. Development mode exposes the failure; production
// mode shows a generic notice.
func defaultFallback(mode Mode, rec Record) *snapshot.Node {
	if mode == ModeProduction {
		return snapshot.El("div",
			snapshot.Attr("class", "error-fallback"),
			snapshot.El("p", snapshot.Text("Something went wrong.")),
		)
	}
	msg := "unknown failure"
	if rec.Err != nil {
		msg = rec.Err.Error()
	}
	return snapshot.El("div",
		snapshot.Attr("class", "error-fallback"),
		snapshot.El("p", snapshot.Text(rec.Phase.String()+" failed: "+msg)),
		snapshot.El("pre", snapshot.Text(rec.Stack)),
	)
}
