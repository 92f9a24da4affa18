package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/calehh/counterflag/state"
	"github.com/calehh/counterflag/types"
)

// Reader is the chain access the counter needs.
type Reader interface {
	GetPost(ctx context.Context, ref types.PostRef) (*state.Post, error)
	GetAccount(ctx context.Context, name string) (*state.Account, error)
	GetAccountHistory(ctx context.Context, name string, limit uint32) ([]types.HistoryEvent, error)
	GetGlobalState(ctx context.Context) (*state.GlobalChainState, error)
}

var _ Reader = &MockReader{}

// MockReader serves fixed chain data from memory. A non-nil Err is returned
// by every call.
type MockReader struct {
	mtx sync.Mutex

	Posts    map[string]*state.Post
	Accounts map[string]*state.Account
	History  map[string][]types.HistoryEvent
	Global   *state.GlobalChainState
	Err      error

	Calls []string
}

func NewMockReader() *MockReader {
	return &MockReader{
		Posts:    make(map[string]*state.Post),
		Accounts: make(map[string]*state.Account),
		History:  make(map[string][]types.HistoryEvent),
	}
}

func (m *MockReader) AddPost(post *state.Post) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.Posts[types.PostRef{Author: post.Author, Permlink: post.Permlink}.String()] = post
}

func (m *MockReader) called(name string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.Calls = append(m.Calls, name)
	return m.Err
}

func (m *MockReader) GetPost(_ context.Context, ref types.PostRef) (*state.Post, error) {
	if err := m.called("GetPost"); err != nil {
		return nil, err
	}
	post, ok := m.Posts[ref.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrPostNotFound, ref)
	}
	return post, nil
}

func (m *MockReader) GetAccount(_ context.Context, name string) (*state.Account, error) {
	if err := m.called("GetAccount"); err != nil {
		return nil, err
	}
	acct, ok := m.Accounts[name]
	if !ok {
		return nil, fmt.Errorf("%w: account %s not found", types.ErrDataUnavailable, name)
	}
	return acct.Clone(), nil
}

func (m *MockReader) GetAccountHistory(_ context.Context, name string, limit uint32) ([]types.HistoryEvent, error) {
	if err := m.called("GetAccountHistory"); err != nil {
		return nil, err
	}
	events := m.History[name]
	if uint32(len(events)) > limit {
		events = events[uint32(len(events))-limit:]
	}
	return events, nil
}

func (m *MockReader) GetGlobalState(_ context.Context) (*state.GlobalChainState, error) {
	if err := m.called("GetGlobalState"); err != nil {
		return nil, err
	}
	if m.Global == nil {
		return nil, fmt.Errorf("%w: no global state", types.ErrDataUnavailable)
	}
	st := *m.Global
	return &st, nil
}
