package templates

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bnema/segbench/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, runs []*domain.Run) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RunsPage(runs).Render(context.Background(), &buf))
	return buf.String()
}

func TestRunsPage_Empty(t *testing.T) {
	html := render(t, nil)
	assert.Contains(t, html, "No runs recorded yet.")
	assert.NotContains(t, html, "<table>")
}

func TestRunsPage_Rows(t *testing.T) {
	ok := domain.NewRun("/in/<clip>.mp4", 10)
	ok.NumSegments = 10
	ok.Sequential = domain.ExecutionReport{Elapsed: 20 * time.Second, Workers: 1, Jobs: 10}
	ok.Parallel = domain.ExecutionReport{Elapsed: 5 * time.Second, Workers: 4, Jobs: 10}
	ok.MarkAsReported("/out/final.mp4", 95, 1024)

	failed := domain.NewRun("/in/bad.mp4", 10)
	failed.MarkAsFailed(domain.NewPhaseError(domain.StateSplit, domain.ErrSourceUnreadable))

	running := domain.NewRun("/in/live.mp4", 10)
	running.State = domain.StateParallelRun

	html := render(t, []*domain.Run{ok, failed, running})

	assert.Contains(t, html, "/runs/"+ok.ID)
	assert.Contains(t, html, "&lt;clip&gt;.mp4", "asset paths are escaped")
	assert.NotContains(t, html, "<clip>")
	assert.Contains(t, html, "<td>4.00x</td>")
	assert.Contains(t, html, `class="excellent"`)
	assert.Contains(t, html, "split phase failed: source unreadable")
	assert.Contains(t, html, `data-run="`+running.ID+`"`)
	assert.Contains(t, html, "new EventSource")
	assert.Contains(t, html, `<span class="phase">parallel</span>`)
	assert.Equal(t, 1, bytes.Count([]byte(html), []byte("<script>")), "one script drives every live row")
}

func TestRunsPage_FinishedRunsHaveNoScript(t *testing.T) {
	failed := domain.NewRun("/in/bad.mp4", 10)
	failed.MarkAsFailed(domain.NewPhaseError(domain.StateMerge, domain.ErrMerge))

	html := render(t, []*domain.Run{failed})

	assert.Contains(t, html, `class="failed"`)
	assert.Contains(t, html, `<td class="muted" colspan="5">-</td>`)
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<progress")
}
