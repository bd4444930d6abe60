// Package templates renders the status server's HTML. Edit report.templ and run
// `templ generate`; report_templ.go is generated.
package templates

import (
	"fmt"

	"github.com/bnema/segbench/internal/domain"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func seconds(s float64) string {
	return fmt.Sprintf("%.2fs", s)
}

func ratio(r float64) string {
	return fmt.Sprintf("%.2fx", r)
}

func hasUnfinished(runs []*domain.Run) bool {
	for _, run := range runs {
		if !run.State.IsTerminal() {
			return true
		}
	}
	return false
}
