package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	activitydomain "github.com/opendao/assembly/internal/activity/domain"
	activityrepository "github.com/opendao/assembly/internal/activity/repository"
	activityservice "github.com/opendao/assembly/internal/activity/service"
	"github.com/opendao/assembly/internal/clock"
	"github.com/opendao/assembly/internal/config"
	"github.com/opendao/assembly/internal/events"
	organizationdomain "github.com/opendao/assembly/internal/organization/domain"
	organizationrepository "github.com/opendao/assembly/internal/organization/repository"
	organizationservice "github.com/opendao/assembly/internal/organization/service"
	proposaldomain "github.com/opendao/assembly/internal/proposal/domain"
	proposalrepository "github.com/opendao/assembly/internal/proposal/repository"
	proposalservice "github.com/opendao/assembly/internal/proposal/service"
	dbpkg "github.com/opendao/assembly/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&organizationdomain.Organization{},
		&organizationdomain.Member{},
		&proposaldomain.Proposal{},
		&proposaldomain.Vote{},
		&activitydomain.Activity{},
		&events.GovernanceEvent{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	publisher := events.NewOutboxPublisher(node, clk)
	activitySvc := activityservice.NewService(activityservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  activityrepository.NewRepository(),
	})

	orgRepo := organizationrepository.NewRepository(db)
	orgSvc := organizationservice.NewService(organizationservice.Params{
		DB:        db,
		Repo:      orgRepo,
		Activity:  activitySvc,
		Publisher: publisher,
		GenID:     node,
		Clock:     clk,
	})
	proposalSvc := proposalservice.NewService(proposalservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		Repo:      proposalrepository.NewRepository(db),
		Orgs:      orgRepo,
		Activity:  activitySvc,
		Publisher: publisher,
		GenID:     node,
		Clock:     clk,
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	NewServer(ServerParams{
		Gin:             engine,
		Cfg:             config.Config{},
		DB:              db,
		GenID:           node,
		OrganizationSvc: orgSvc,
		ProposalSvc:     proposalSvc,
		ActivitySvc:     activitySvc,
	})

	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	parsed := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func createDao(t *testing.T, engine *gin.Engine, name, creator string, threshold int) string {
	t.Helper()

	rec, body := doJSON(t, engine, http.MethodPost, "/api/daos", gin.H{
		"name":               name,
		"creator":            creator,
		"approval_threshold": threshold,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := body["dao_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func inviteMember(t *testing.T, engine *gin.Engine, daoID, inviter, address string) {
	t.Helper()

	rec, _ := doJSON(t, engine, http.MethodPost, "/api/daos/"+daoID+"/members", gin.H{
		"inviter": inviter,
		"address": address,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func createProposal(t *testing.T, engine *gin.Engine, daoID, proposer, title string) string {
	t.Helper()

	rec, body := doJSON(t, engine, http.MethodPost, "/api/daos/"+daoID+"/proposals", gin.H{
		"proposer": proposer,
		"title":    title,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := body["proposal_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestCreateOrganizationEndpoint(t *testing.T) {
	engine := newTestServer(t)

	rec, body := doJSON(t, engine, http.MethodPost, "/api/daos", gin.H{
		"name":    "Block Club",
		"creator": "alice",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["dao_id"])

	rec, body = doJSON(t, engine, http.MethodPost, "/api/daos", gin.H{"creator": "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_name", body["error"])

	rec, body = doJSON(t, engine, http.MethodPost, "/api/daos", gin.H{
		"name":    "Block Club",
		"creator": "bob",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_name", body["error"])
}

func TestGetOrganizationEndpoint(t *testing.T) {
	engine := newTestServer(t)
	daoID := createDao(t, engine, "Lookup", "alice", 0)

	rec, body := doJSON(t, engine, http.MethodGet, "/api/daos/"+daoID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	dao, _ := body["data"].(map[string]any)
	require.NotNil(t, dao)
	assert.Equal(t, "Lookup", dao["name"])
	assert.EqualValues(t, 51, dao["approval_threshold"])

	rec, body = doJSON(t, engine, http.MethodGet, "/api/daos/999999999999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "organization_not_found", body["error"])

	// Unparseable identifiers read as absent rows, not bad requests.
	rec, body = doJSON(t, engine, http.MethodGet, "/api/daos/not-an-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "organization_not_found", body["error"])
}

func TestInviteMemberEndpoint(t *testing.T) {
	engine := newTestServer(t)
	daoID := createDao(t, engine, "Invites", "alice", 0)

	inviteMember(t, engine, daoID, "alice", "bob")

	rec, body := doJSON(t, engine, http.MethodPost, "/api/daos/"+daoID+"/members", gin.H{
		"inviter": "bob",
		"address": "carol",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", body["error"])

	rec, body = doJSON(t, engine, http.MethodPost, "/api/daos/"+daoID+"/members", gin.H{
		"inviter": "alice",
		"address": "bob",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_member", body["error"])
}

func TestCreateProposalEndpoint(t *testing.T) {
	engine := newTestServer(t)
	daoID := createDao(t, engine, "Proposals", "alice", 0)

	rec, body := doJSON(t, engine, http.MethodPost, "/api/daos/"+daoID+"/proposals", gin.H{
		"proposer": "alice",
		"title":    "Fund the node",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["proposal_id"])

	rec, body = doJSON(t, engine, http.MethodPost, "/api/daos/"+daoID+"/proposals", gin.H{
		"proposer": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_title", body["error"])

	rec, body = doJSON(t, engine, http.MethodPost, "/api/daos/"+daoID+"/proposals", gin.H{
		"proposer": "mallory",
		"title":    "Outsider proposal",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_a_member", body["error"])

	rec, body = doJSON(t, engine, http.MethodPost, "/api/daos/999999999999/proposals", gin.H{
		"proposer": "alice",
		"title":    "Ghost org",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "organization_not_found", body["error"])
}

func TestVoteEndpoint(t *testing.T) {
	engine := newTestServer(t)
	daoID := createDao(t, engine, "Votes", "alice", 0)
	inviteMember(t, engine, daoID, "alice", "bob")
	inviteMember(t, engine, daoID, "alice", "carol")
	inviteMember(t, engine, daoID, "alice", "dave")
	pid := createProposal(t, engine, daoID, "alice", "Buy the domain")
	votePath := fmt.Sprintf("/api/daos/%s/proposals/%s/vote", daoID, pid)

	rec, body := doJSON(t, engine, http.MethodPost, votePath, gin.H{"voter": "alice", "vote": "yes"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["votes_for"])
	assert.EqualValues(t, 0, body["votes_against"])

	rec, body = doJSON(t, engine, http.MethodPost, votePath, gin.H{"voter": "alice", "vote": "no"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_vote", body["error"])

	rec, body = doJSON(t, engine, http.MethodPost, votePath, gin.H{"voter": "bob", "vote": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_choice", body["error"])

	rec, body = doJSON(t, engine, http.MethodPost, votePath, gin.H{"voter": "mallory", "vote": "yes"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_a_member", body["error"])

	// Second yes reaches quorum of the four members and passes at 100%.
	rec, body = doJSON(t, engine, http.MethodPost, votePath, gin.H{"voter": "bob", "vote": "yes"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["votes_for"])
	assert.Equal(t, "passed", body["status"])

	rec, body = doJSON(t, engine, http.MethodPost, votePath, gin.H{"voter": "carol", "vote": "yes"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "proposal_not_active", body["error"])

	rec, body = doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/daos/%s/proposals/999999999999/vote", daoID),
		gin.H{"voter": "alice", "vote": "yes"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "proposal_not_found", body["error"])
}

func TestTreasuryEndpoint(t *testing.T) {
	engine := newTestServer(t)
	daoID := createDao(t, engine, "Treasury", "alice", 0)

	rec, body := doJSON(t, engine, http.MethodPost, "/api/daos/"+daoID+"/treasury", gin.H{
		"funder":      "alice",
		"amount_sats": 5000,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 5000, body["treasury_sats"])

	rec, body = doJSON(t, engine, http.MethodPost, "/api/daos/"+daoID+"/treasury", gin.H{
		"funder":      "alice",
		"amount_sats": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_amount", body["error"])
}

func TestActivityEndpoint(t *testing.T) {
	engine := newTestServer(t)
	daoID := createDao(t, engine, "Trail", "alice", 0)
	inviteMember(t, engine, daoID, "alice", "bob")
	createProposal(t, engine, daoID, "bob", "Log everything")

	rec, body := doJSON(t, engine, http.MethodGet, "/api/daos/"+daoID+"/activity", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	entries, _ := body["data"].([]any)
	assert.Len(t, entries, 3)

	rec, body = doJSON(t, engine, http.MethodGet, "/api/daos/"+daoID+"/activity?limit=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", body["error"])
}

func TestStatsEndpoint(t *testing.T) {
	engine := newTestServer(t)
	daoID := createDao(t, engine, "Counted", "alice", 0)
	inviteMember(t, engine, daoID, "alice", "bob")
	createProposal(t, engine, daoID, "alice", "Count me")

	rec, body := doJSON(t, engine, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	stats, _ := body["data"].(map[string]any)
	require.NotNil(t, stats)
	assert.EqualValues(t, 1, stats["organizations"])
	assert.EqualValues(t, 2, stats["members"])
	assert.EqualValues(t, 1, stats["proposals"])
}

func TestUIEndpoint(t *testing.T) {
	engine := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Assembly")
}
