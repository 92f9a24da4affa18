package agent

import (
	"errors"
	"net/http"
	"sync"

	"github.com/calehh/counterflag/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Service struct {
	engine     *gin.Engine
	counter    *Counter
	store      *RunStore
	listenAddr string
	logger     cmtlog.Logger

	// one evaluation at a time
	mtx sync.Mutex
}

func NewService(listenAddr string, counter *Counter, store *RunStore, logger cmtlog.Logger) *Service {
	r := gin.Default()
	s := &Service{
		engine:     r,
		counter:    counter,
		store:      store,
		listenAddr: listenAddr,
		logger:     logger.With("module", "service"),
	}
	s.engine.POST("/countervote", s.handleCounterVote)
	s.engine.POST("/getRuns", s.handleGetRuns)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

func (s *Service) Handler() http.Handler {
	return s.engine
}

func (s *Service) Start() error {
	s.logger.Info("service listening", "addr", s.listenAddr)
	return s.engine.Run(s.listenAddr)
}

type CounterVoteReq struct {
	URL string `json:"url" binding:"required"`
}

type CounterVoteResponse struct {
	Outcome *Outcome `json:"outcome"`
	Error   string   `json:"error,omitempty"`
}

func (s *Service) handleCounterVote(c *gin.Context) {
	var requestData CounterVoteReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mtx.Lock()
	out, err := s.counter.Run(c.Request.Context(), requestData.URL)
	s.mtx.Unlock()

	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, types.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, types.ErrPostNotFound):
			status = http.StatusNotFound
		}
		c.JSON(status, CounterVoteResponse{Outcome: out, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, CounterVoteResponse{Outcome: out})
}

type GetRunsReq struct {
	RunId    uint64 `json:"runId"`
	Author   string `json:"author"`
	Outcome  string `json:"outcome"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetRunsResponse struct {
	Runs  []RunRecord `json:"runs"`
	Total uint64      `json:"total"`
}

func (s *Service) handleGetRuns(c *gin.Context) {
	var response GetRunsResponse
	response.Runs = make([]RunRecord, 0)
	var requestData GetRunsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run store disabled"})
		return
	}

	if requestData.RunId != 0 {
		run, err := s.store.GetRunById(requestData.RunId)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrRunNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		response.Runs = append(response.Runs, run)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}

	runs, total, err := s.store.GetRuns(RunFilter{Author: requestData.Author, Outcome: requestData.Outcome}, requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Runs = runs
	response.Total = total
	c.JSON(http.StatusOK, response)
}
