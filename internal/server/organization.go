package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	organizationdomain "github.com/opendao/assembly/internal/organization/domain"
)

type createOrganizationRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	Creator           string `json:"creator"`
	ApprovalThreshold int    `json:"approval_threshold"`
	SpendLimitSats    int64  `json:"spend_limit_sats"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.organizationSvc.Create(c.Request.Context(), organizationdomain.CreateOrganizationRequest{
		Name:              strings.TrimSpace(req.Name),
		Description:       strings.TrimSpace(req.Description),
		Creator:           strings.TrimSpace(req.Creator),
		ApprovalThreshold: req.ApprovalThreshold,
		SpendLimitSats:    req.SpendLimitSats,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "dao_id": resp.ID, "dao": resp})
}

func (s *Server) ListOrganizations(c *gin.Context) {
	resp, err := s.organizationSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrganizationByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.organizationSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type inviteMemberRequest struct {
	Inviter string `json:"inviter"`
	Address string `json:"address"`
	Role    string `json:"role"`
}

func (s *Server) InviteMember(c *gin.Context) {
	var req inviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.organizationSvc.InviteMember(c.Request.Context(), strings.TrimSpace(c.Param("id")), organizationdomain.InviteMemberRequest{
		Inviter: strings.TrimSpace(req.Inviter),
		Address: strings.TrimSpace(req.Address),
		Role:    strings.TrimSpace(req.Role),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "member": resp})
}

func (s *Server) ListMembers(c *gin.Context) {
	resp, err := s.organizationSvc.ListMembers(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type fundTreasuryRequest struct {
	Funder     string `json:"funder"`
	AmountSats int64  `json:"amount_sats"`
}

func (s *Server) FundTreasury(c *gin.Context) {
	var req fundTreasuryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.organizationSvc.FundTreasury(c.Request.Context(), strings.TrimSpace(c.Param("id")), organizationdomain.FundTreasuryRequest{
		Funder:     strings.TrimSpace(req.Funder),
		AmountSats: req.AmountSats,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "treasury_sats": resp.TreasurySats, "dao": resp})
}
