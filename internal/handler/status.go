package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// StatusInfo describes the configured log store
type StatusInfo struct {
	TokenConfigured bool
	RepoOwner       string
	RepoName        string
	FilePath        string
	Backend         string
}

// Pinger checks that the log store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusHandler serves the API self-test
type StatusHandler struct {
	info   StatusInfo
	pinger Pinger
}

// StatusResponse is returned by GET /api/test
type StatusResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	TokenConfigured bool   `json:"tokenConfigured"`
	RepoOwner       string `json:"repoOwner"`
	RepoName        string `json:"repoName"`
	FilePath        string `json:"filePath"`
	Backend         string `json:"backend"`
	RepoReachable   *bool  `json:"repoReachable,omitempty"`
	RepoError       string `json:"repoError,omitempty"`
}

// NewStatusHandler creates a status handler. pinger may be nil if the store
// cannot be checked.
func NewStatusHandler(info StatusInfo, pinger Pinger) *StatusHandler {
	return &StatusHandler{info: info, pinger: pinger}
}

// Test handles GET /api/test requests
//
//	@Summary	Check that the API is working
//	@Tags		status
//	@Produce	json
//	@Param		verify	query		bool	false	"Also check that the repository is reachable"
//	@Success	200		{object}	StatusResponse
//	@Router		/test [get]
func (h *StatusHandler) Test(c *gin.Context) {
	resp := StatusResponse{
		Success:         true,
		Message:         "API is working",
		TokenConfigured: h.info.TokenConfigured,
		RepoOwner:       h.info.RepoOwner,
		RepoName:        h.info.RepoName,
		FilePath:        h.info.FilePath,
		Backend:         h.info.Backend,
	}

	verify, _ := strconv.ParseBool(c.Query("verify"))
	if verify && h.pinger != nil {
		reachable := true
		if err := h.pinger.Ping(c.Request.Context()); err != nil {
			reachable = false
			resp.RepoError = err.Error()
		}
		resp.RepoReachable = &reachable
	}

	c.JSON(http.StatusOK, resp)
}
