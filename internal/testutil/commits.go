package testutil

import "sync"

// StubCommitProvider is a scriptable commit-state provider. Head returns
// HeadState; Commit records its arguments and returns CommitState, or
// CommitErr when set.
type StubCommitProvider struct {
	mu          sync.Mutex
	HeadState   string
	HeadErr     error
	CommitState string
	CommitErr   error
	Commits     []StubCommit
}

// StubCommit is one recorded Commit call.
type StubCommit struct {
	Subject string
	Message string
}

func NewStubCommitProvider() *StubCommitProvider {
	return &StubCommitProvider{HeadState: "abc1234", CommitState: "def5678"}
}

func (p *StubCommitProvider) Head() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.HeadState, p.HeadErr
}

func (p *StubCommitProvider) Commit(subject, message string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CommitErr != nil {
		return "", p.CommitErr
	}
	p.Commits = append(p.Commits, StubCommit{Subject: subject, Message: message})
	return p.CommitState, nil
}
