package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	proposaldomain "github.com/opendao/assembly/internal/proposal/domain"
)

type createProposalRequest struct {
	Proposer    string `json:"proposer"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ActionType  string `json:"action_type"`
	AmountSats  int64  `json:"amount_sats"`
	Recipient   string `json:"recipient"`
}

func (s *Server) CreateProposal(c *gin.Context) {
	var req createProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.proposalSvc.Create(c.Request.Context(), strings.TrimSpace(c.Param("id")), proposaldomain.CreateProposalRequest{
		Proposer:    strings.TrimSpace(req.Proposer),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		ActionType:  strings.TrimSpace(req.ActionType),
		AmountSats:  req.AmountSats,
		Recipient:   strings.TrimSpace(req.Recipient),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "proposal_id": resp.ID})
}

func (s *Server) ListProposals(c *gin.Context) {
	resp, err := s.proposalSvc.ListByOrg(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProposalByID(c *gin.Context) {
	resp, err := s.proposalSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")), strings.TrimSpace(c.Param("pid")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type castVoteRequest struct {
	Voter string `json:"voter"`
	Vote  string `json:"vote"`
}

func (s *Server) CastVote(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.proposalSvc.Vote(c.Request.Context(), strings.TrimSpace(c.Param("id")), strings.TrimSpace(c.Param("pid")), proposaldomain.VoteRequest{
		Voter:  strings.TrimSpace(req.Voter),
		Choice: strings.TrimSpace(req.Vote),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"votes_for":     resp.VotesFor,
		"votes_against": resp.VotesAgainst,
		"status":        resp.Status,
	})
}
