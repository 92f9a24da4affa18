package agent

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/calehh/counterflag/state"
	"github.com/calehh/counterflag/tx"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestService(t *testing.T) (*httptest.Server, *fakeSubmitter) {
	store, err := OpenRunStore(filepath.Join(t.TempDir(), "runs.db"), cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	r := newTestReader(state.Vote{Voter: "x", Percent: -10000, Rshares: -1_000_000})
	sub := &fakeSubmitter{result: tx.Result{OK: true}}
	c, _ := newTestCounter(t, r, sub, store)

	srv := httptest.NewServer(NewService("127.0.0.1:0", c, store, cmtlog.NewNopLogger()).Handler())
	t.Cleanup(srv.Close)
	return srv, sub
}

func postJSON(t *testing.T, url string, body interface{}, out interface{}) int {
	dat, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(dat))
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestServiceCounterVote(t *testing.T) {
	srv, sub := newTestService(t)

	var resp CounterVoteResponse
	code := postJSON(t, srv.URL+"/countervote", CounterVoteReq{URL: "https://steemit.com/@alice/p"}, &resp)
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Outcome)
	assert.Equal(t, OutcomeVoted, resp.Outcome.Kind)
	assert.Len(t, sub.ops, 1)

	code = postJSON(t, srv.URL+"/countervote", CounterVoteReq{URL: "https://steemit.com/@alice"}, &resp)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, resp.Error)

	code = postJSON(t, srv.URL+"/countervote", CounterVoteReq{URL: "@alice/nothing"}, &resp)
	assert.Equal(t, http.StatusNotFound, code)

	code = postJSON(t, srv.URL+"/countervote", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Len(t, sub.ops, 1)
}

func TestServiceGetRuns(t *testing.T) {
	srv, _ := newTestService(t)

	for _, u := range []string{"@alice/p", "@alice/missing", "@alice/p"} {
		postJSON(t, srv.URL+"/countervote", CounterVoteReq{URL: u}, nil)
	}

	var resp GetRunsResponse
	code := postJSON(t, srv.URL+"/getRuns", GetRunsReq{Page: 0, PageSize: 2}, &resp)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, resp.Total)
	require.Len(t, resp.Runs, 2)
	assert.Greater(t, resp.Runs[0].Id, resp.Runs[1].Id)

	code = postJSON(t, srv.URL+"/getRuns", GetRunsReq{Outcome: string(OutcomeError)}, &resp)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, resp.Total)
	assert.Equal(t, "missing", resp.Runs[0].Permlink)

	id := resp.Runs[0].Id
	code = postJSON(t, srv.URL+"/getRuns", GetRunsReq{RunId: id}, &resp)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, id, resp.Runs[0].Id)

	code = postJSON(t, srv.URL+"/getRuns", GetRunsReq{RunId: 999}, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServiceMetrics(t *testing.T) {
	srv, _ := newTestService(t)
	postJSON(t, srv.URL+"/countervote", CounterVoteReq{URL: "@alice/p"}, nil)

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `counterflag_runs_total{outcome="voted"}`)
	assert.Contains(t, string(body), "counterflag_last_vote_weight_percent")
}
