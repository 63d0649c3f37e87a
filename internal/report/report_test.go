package report_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ohttpc/internal/domain"
	"ohttpc/internal/report"
)

func newReporter() (*report.Reporter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return report.New(&out, &errOut, []string{"TERM=dumb"}), &out, &errOut
}

func TestReport_Success(t *testing.T) {
	r, out, errOut := newReporter()

	r.Report(domain.Outcome{Replica: 0, Bytes: 10})

	assert.Equal(t, "Got 10 bytes\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestReport_Failure(t *testing.T) {
	r, out, errOut := newReporter()

	r.Report(domain.Outcome{Replica: 1, Err: errors.New("connection refused")})

	assert.Empty(t, out.String())
	assert.Equal(t, "Got an error: connection refused\n", errOut.String())
}

func TestReport_PlainTextOnNonTerminal(t *testing.T) {
	r, out, _ := newReporter()

	r.Report(domain.Outcome{Bytes: 1})

	assert.NotContains(t, out.String(), "\x1b[")
}

func TestSummary(t *testing.T) {
	cases := []struct {
		name string
		sum  domain.Summary
		want string
	}{
		{"all", domain.Summary{Requests: 3, Succeeded: 3}, "Success rate is 100 percent (3/3)"},
		{"some", domain.Summary{Requests: 4, Succeeded: 1, Failed: 3}, "Success rate is 25 percent (1/4)"},
		{"none", domain.Summary{Requests: 2, Failed: 2}, "Success rate is 0 percent (0/2)"},
		{"empty", domain.Summary{}, "Success rate is 0 percent (0/0)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, out, _ := newReporter()
			r.Summary(tc.sum)
			assert.Contains(t, out.String(), tc.want+"\n")
		})
	}
}

func TestSummary_Details(t *testing.T) {
	r, out, _ := newReporter()

	r.Summary(domain.Summary{Requests: 3, Succeeded: 3, ResponseBytes: 30, MaxInFlight: 2, Elapsed: 1500 * time.Millisecond})

	assert.Contains(t, out.String(), "30 response bytes, at most 2 in flight, 1.5s elapsed")
}
