package runner

import (
	"context"
	"strings"
	"sync"
)

// Response scripts the outcome of one matched invocation.
type Response struct {
	// Stdout returned by Output
	Stdout string
	// ExitCode other than zero makes the invocation fail the same way
	// the exec runner reports a non-zero tool exit
	ExitCode int
	// Stderr is folded into the failure message when ExitCode is non-zero
	Stderr string
}

type scriptRule struct {
	prefix string
	resp   Response
}

// Script is a Runner for tests. Invocations are matched by command
// prefix against registered responses, first match wins, anything
// unmatched succeeds with empty output. Every invocation is recorded.
type Script struct {
	mu    sync.Mutex
	rules []scriptRule
	calls []Command
}

// NewScript builds an empty scripted runner where every command succeeds.
func NewScript() *Script {
	return &Script{}
}

// On registers a response for commands whose rendered form starts with
// prefix, e.g. "git tag" or "dotnet build".
func (s *Script) On(prefix string, resp Response) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, scriptRule{prefix: prefix, resp: resp})
	return s
}

func (s *Script) match(cmd Command) Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, cmd)
	rendered := cmd.String()
	for _, rule := range s.rules {
		if strings.HasPrefix(rendered, rule.prefix) {
			return rule.resp
		}
	}
	return Response{}
}

// Run implements Runner.
func (s *Script) Run(ctx context.Context, cmd Command) error {
	resp := s.match(cmd)
	if resp.ExitCode != 0 {
		return ExitFailure(cmd, resp.ExitCode, resp.Stderr)
	}
	return nil
}

// Output implements Runner.
func (s *Script) Output(ctx context.Context, cmd Command) (string, error) {
	resp := s.match(cmd)
	if resp.ExitCode != 0 {
		return "", ExitFailure(cmd, resp.ExitCode, resp.Stderr)
	}
	return resp.Stdout, nil
}

// Calls lists every recorded invocation in order.
func (s *Script) Calls() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Command, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallStrings renders the recorded invocations, one line per call.
func (s *Script) CallStrings() []string {
	calls := s.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.String())
	}
	return out
}
