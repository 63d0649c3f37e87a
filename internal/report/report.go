// Package report renders replica outcomes and the batch summary.
package report

import (
	"fmt"
	"io"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"

	"ohttpc/internal/domain"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
)

// Reporter writes successes to stdout and failures to stderr. Styling is
// downsampled to what each writer supports, so pipes and files get plain
// text.
type Reporter struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

// New returns a Reporter. environ is consulted for NO_COLOR, TERM and
// friends; pass os.Environ() in production.
func New(stdout, stderr io.Writer, environ []string) *Reporter {
	return &Reporter{
		stdout: colorprofile.NewWriter(stdout, environ),
		stderr: colorprofile.NewWriter(stderr, environ),
	}
}

// Report renders one outcome. It never fails; write errors are dropped.
func (r *Reporter) Report(o domain.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.Success() {
		_, _ = fmt.Fprintln(r.stdout, successStyle.Render(fmt.Sprintf("Got %d bytes", o.Bytes)))
		return
	}
	_, _ = fmt.Fprintln(r.stderr, failureStyle.Render("Got an error: "+o.Reason()))
}

// Summary renders the success-rate line for a finished batch.
func (r *Reporter) Summary(s domain.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("Success rate is %.0f percent (%d/%d)", s.SuccessRate(), s.Succeeded, s.Requests)
	style := infoStyle
	switch {
	case s.Requests > 0 && s.Succeeded == s.Requests:
		style = successStyle
	case s.Succeeded == 0:
		style = failureStyle
	}
	_, _ = fmt.Fprintln(r.stdout, style.Render(line))
	_, _ = fmt.Fprintln(r.stdout, infoStyle.Render(fmt.Sprintf(
		"%d response bytes, at most %d in flight, %s elapsed", s.ResponseBytes, s.MaxInFlight, s.Elapsed.Round(time.Millisecond))))
}
