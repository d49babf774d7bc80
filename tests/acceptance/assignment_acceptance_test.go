package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/paintlink/paintlink-api/config"
	"github.com/paintlink/paintlink-api/controllers"
	"github.com/paintlink/paintlink-api/models"
	"github.com/paintlink/paintlink-api/services"
	"github.com/paintlink/paintlink-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// AssignmentAcceptanceTestSuite drives the marketplace end to end over HTTP
// against a live test server.
type AssignmentAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
	db     *gorm.DB
	cfg    *config.Config

	customer models.User
	painter1 models.User
	painter2 models.User
	admin    models.User
}

// SetupSuite runs once before all tests
func (suite *AssignmentAcceptanceTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	os.Setenv("GO_ENV", "test")
	os.Setenv("DATABASE_URL", "file::memory:")
	os.Setenv("AUTH0_DOMAIN", "test.auth0.example.com")
	os.Setenv("AUTH0_AUDIENCE", "https://api.paintlink.example.com")
	os.Setenv("PORT", "8080")

	cfg, err := config.Load()
	suite.NoError(err)
	suite.cfg = cfg

	suite.db = testutil.NewTestDB(suite.T())
	config.SetDB(suite.db)

	services.NewMockNotificationService().SetAsMockForTesting()

	suite.server = httptest.NewServer(suite.createRouter())
}

// TearDownSuite runs once after all tests
func (suite *AssignmentAcceptanceTestSuite) TearDownSuite() {
	suite.server.Close()
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// SetupTest runs before each test
func (suite *AssignmentAcceptanceTestSuite) SetupTest() {
	testutil.TruncateAll(suite.db)

	suite.customer = models.User{Auth0ID: "auth0|customer", Name: "Test Customer", Email: "customer@test.com", Role: models.RoleCustomer}
	suite.painter1 = models.User{Auth0ID: "auth0|painter1", Name: "Painter One", Email: "painter1@test.com", Role: models.RolePainter}
	suite.painter2 = models.User{Auth0ID: "auth0|painter2", Name: "Painter Two", Email: "painter2@test.com", Role: models.RolePainter}
	suite.admin = models.User{Auth0ID: "auth0|admin", Name: "Test Admin", Email: "admin@test.com", Role: models.RoleAdmin}
	suite.NoError(suite.db.Create(&suite.customer).Error)
	suite.NoError(suite.db.Create(&suite.painter1).Error)
	suite.NoError(suite.db.Create(&suite.painter2).Error)
	suite.NoError(suite.db.Create(&suite.admin).Error)
}

// createRouter mounts the full API once per authenticated identity so that
// scenarios can switch actors mid-flow against a single live server.
func (suite *AssignmentAcceptanceTestSuite) createRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	identities := map[string][2]string{
		"customer": {"auth0|customer", models.RoleCustomer},
		"painter1": {"auth0|painter1", models.RolePainter},
		"painter2": {"auth0|painter2", models.RolePainter},
		"admin":    {"auth0|admin", models.RoleAdmin},
	}

	for prefix, identity := range identities {
		v1 := router.Group("/api/v1/"+prefix, testutil.MockAuthMiddleware(identity[0], identity[1]))
		{
			v1.POST("/leads", controllers.CreateLead)
			v1.GET("/leads", controllers.ListLeads)
			v1.GET("/leads/:id", controllers.GetLead)
			v1.PUT("/leads/:id/status", controllers.SetLeadStatus)
			v1.POST("/leads/:id/bids", controllers.CreateBid)
			v1.GET("/leads/:id/bids", controllers.ListBids)
			v1.GET("/leads/:id/bids/stats", controllers.GetBidStats)
			v1.POST("/leads/:id/conversation", controllers.GetOrCreateConversation)
			v1.POST("/bids/:id/accept", controllers.AcceptBid)
			v1.POST("/bids/:id/reject", controllers.RejectBid)
			v1.POST("/bids/:id/withdraw", controllers.WithdrawBid)
			v1.POST("/conversations/:id/messages", controllers.SendMessage)
			v1.GET("/conversations/:id/messages", controllers.ListMessages)
		}
	}

	return router
}

// makeRequest performs an HTTP request against the live server as the given
// identity prefix and decodes the JSON body
func (suite *AssignmentAcceptanceTestSuite) makeRequest(as, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyJSON, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyJSON)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req, err := http.NewRequest(method, suite.server.URL+"/api/v1/"+as+path, bodyReader)
	suite.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	suite.NoError(err)

	var responseData map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&responseData)
	suite.NoError(err)
	resp.Body.Close()

	return resp, responseData
}

// TestAcceptBid_AssignsPainterAndKeepsSiblings: a lead with two competing
// bids is assigned when one is accepted; the losing bid stays pending.
func (suite *AssignmentAcceptanceTestSuite) TestAcceptBid_AssignsPainterAndKeepsSiblings() {
	resp, response := suite.makeRequest("customer", http.MethodPost, "/leads", map[string]interface{}{
		"job_title": "Repaint kitchen",
		"postcode":  "LS1 4AP",
	})
	suite.Equal(http.StatusCreated, resp.StatusCode)
	leadID := int(response["data"].(map[string]interface{})["id"].(float64))

	resp, response = suite.makeRequest("painter1", http.MethodPost, fmt.Sprintf("/leads/%d/bids", leadID), map[string]interface{}{
		"bid_amount": 500.0,
	})
	suite.Equal(http.StatusCreated, resp.StatusCode)
	bid1ID := int(response["data"].(map[string]interface{})["id"].(float64))

	resp, response = suite.makeRequest("painter2", http.MethodPost, fmt.Sprintf("/leads/%d/bids", leadID), map[string]interface{}{
		"bid_amount": 650.0,
	})
	suite.Equal(http.StatusCreated, resp.StatusCode)
	bid2ID := int(response["data"].(map[string]interface{})["id"].(float64))

	resp, response = suite.makeRequest("customer", http.MethodPost, fmt.Sprintf("/bids/%d/accept", bid1ID), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), "accepted", response["data"].(map[string]interface{})["status"])

	resp, response = suite.makeRequest("customer", http.MethodGet, fmt.Sprintf("/leads/%d", leadID), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	leadData := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "assigned", leadData["status"])
	assert.Equal(suite.T(), float64(suite.painter1.ID), leadData["assigned_painter_id"])

	resp, response = suite.makeRequest("customer", http.MethodGet, fmt.Sprintf("/leads/%d/bids", leadID), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	for _, item := range response["data"].([]interface{}) {
		bid := item.(map[string]interface{})
		switch int(bid["id"].(float64)) {
		case bid1ID:
			assert.Equal(suite.T(), "accepted", bid["status"])
		case bid2ID:
			assert.Equal(suite.T(), "pending", bid["status"])
		}
	}
}

// TestAcceptBid_OnAssignedLeadFails: accepting a second bid after the lead
// is assigned is refused and changes nothing.
func (suite *AssignmentAcceptanceTestSuite) TestAcceptBid_OnAssignedLeadFails() {
	lead := models.Lead{CustomerID: suite.customer.ID, CustomerName: suite.customer.Name, CustomerEmail: suite.customer.Email, JobTitle: "Paint bedroom", Postcode: "LS1 4AP", Status: models.LeadStatusOpen}
	suite.NoError(suite.db.Create(&lead).Error)

	bid1 := models.Bid{LeadID: lead.ID, PainterID: suite.painter1.ID, BidAmount: 400, Status: models.BidStatusPending}
	bid2 := models.Bid{LeadID: lead.ID, PainterID: suite.painter2.ID, BidAmount: 420, Status: models.BidStatusPending}
	suite.NoError(suite.db.Create(&bid1).Error)
	suite.NoError(suite.db.Create(&bid2).Error)

	resp, _ := suite.makeRequest("customer", http.MethodPost, fmt.Sprintf("/bids/%d/accept", bid1.ID), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)

	resp, response := suite.makeRequest("customer", http.MethodPost, fmt.Sprintf("/bids/%d/accept", bid2.ID), nil)
	suite.Equal(http.StatusConflict, resp.StatusCode)
	assert.False(suite.T(), response["success"].(bool))
	assert.Equal(suite.T(), "LEAD_NOT_OPEN", response["error"].(map[string]interface{})["code"])

	// The losing bid is untouched and the assignment stands
	var unchanged models.Bid
	suite.NoError(suite.db.First(&unchanged, bid2.ID).Error)
	assert.Equal(suite.T(), models.BidStatusPending, unchanged.Status)

	var finalLead models.Lead
	suite.NoError(suite.db.First(&finalLead, lead.ID).Error)
	assert.Equal(suite.T(), suite.painter1.ID, *finalLead.AssignedPainterID)
}

// TestRejectBid_LeavesLeadOpen: rejecting one bid affects neither the lead
// nor the other bids.
func (suite *AssignmentAcceptanceTestSuite) TestRejectBid_LeavesLeadOpen() {
	lead := models.Lead{CustomerID: suite.customer.ID, CustomerName: suite.customer.Name, CustomerEmail: suite.customer.Email, JobTitle: "Paint bathroom", Postcode: "LS1 4AP", Status: models.LeadStatusOpen}
	suite.NoError(suite.db.Create(&lead).Error)

	bid1 := models.Bid{LeadID: lead.ID, PainterID: suite.painter1.ID, BidAmount: 250, Status: models.BidStatusPending}
	bid2 := models.Bid{LeadID: lead.ID, PainterID: suite.painter2.ID, BidAmount: 275, Status: models.BidStatusPending}
	suite.NoError(suite.db.Create(&bid1).Error)
	suite.NoError(suite.db.Create(&bid2).Error)

	resp, response := suite.makeRequest("customer", http.MethodPost, fmt.Sprintf("/bids/%d/reject", bid1.ID), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), "rejected", response["data"].(map[string]interface{})["status"])

	var finalLead models.Lead
	suite.NoError(suite.db.First(&finalLead, lead.ID).Error)
	assert.Equal(suite.T(), models.LeadStatusOpen, finalLead.Status)
	assert.Nil(suite.T(), finalLead.AssignedPainterID)

	var other models.Bid
	suite.NoError(suite.db.First(&other, bid2.ID).Error)
	assert.Equal(suite.T(), models.BidStatusPending, other.Status)
}

// TestConversation_IdempotentAcrossParticipants: both sides asking for the
// lead's conversation get one and the same channel.
func (suite *AssignmentAcceptanceTestSuite) TestConversation_IdempotentAcrossParticipants() {
	lead := models.Lead{CustomerID: suite.customer.ID, CustomerName: suite.customer.Name, CustomerEmail: suite.customer.Email, JobTitle: "Paint hallway", Postcode: "LS1 4AP", Status: models.LeadStatusAssigned, AssignedPainterID: &suite.painter1.ID}
	suite.NoError(suite.db.Create(&lead).Error)

	resp, response := suite.makeRequest("customer", http.MethodPost, fmt.Sprintf("/leads/%d/conversation", lead.ID), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	firstID := response["data"].(map[string]interface{})["id"]

	resp, response = suite.makeRequest("painter1", http.MethodPost, fmt.Sprintf("/leads/%d/conversation", lead.ID), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), firstID, response["data"].(map[string]interface{})["id"])

	conversationID := int(firstID.(float64))

	resp, _ = suite.makeRequest("painter1", http.MethodPost, fmt.Sprintf("/conversations/%d/messages", conversationID), map[string]interface{}{
		"text": "I can start next week",
	})
	suite.Equal(http.StatusCreated, resp.StatusCode)

	resp, response = suite.makeRequest("customer", http.MethodGet, fmt.Sprintf("/conversations/%d/messages", conversationID), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	messages := response["data"].([]interface{})
	suite.Require().Len(messages, 1)
	assert.Equal(suite.T(), "I can start next week", messages[0].(map[string]interface{})["text"])

	// The second painter never gets in
	resp, _ = suite.makeRequest("painter2", http.MethodPost, fmt.Sprintf("/leads/%d/conversation", lead.ID), nil)
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

// TestBidStats_HiddenFromPainters: painters never see competitor pricing,
// while the lead's customer gets the aggregates.
func (suite *AssignmentAcceptanceTestSuite) TestBidStats_HiddenFromPainters() {
	lead := models.Lead{CustomerID: suite.customer.ID, CustomerName: suite.customer.Name, CustomerEmail: suite.customer.Email, JobTitle: "Paint office", Postcode: "LS1 4AP", Status: models.LeadStatusOpen}
	suite.NoError(suite.db.Create(&lead).Error)

	bids := []models.Bid{
		{LeadID: lead.ID, PainterID: suite.painter1.ID, BidAmount: 100, Status: models.BidStatusPending},
		{LeadID: lead.ID, PainterID: suite.painter2.ID, BidAmount: 300, Status: models.BidStatusPending},
	}
	for i := range bids {
		suite.NoError(suite.db.Create(&bids[i]).Error)
	}

	resp, response := suite.makeRequest("customer", http.MethodGet, fmt.Sprintf("/leads/%d/bids/stats", lead.ID), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	stats := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), float64(2), stats["count"])
	assert.Equal(suite.T(), float64(200), stats["mean"])

	// The lead is open, so the painter can see it: the aggregate is
	// refused outright rather than hidden.
	resp, _ = suite.makeRequest("painter1", http.MethodGet, fmt.Sprintf("/leads/%d/bids/stats", lead.ID), nil)
	suite.Equal(http.StatusForbidden, resp.StatusCode)

	// A painter listing the lead's bids sees only their own
	resp, response = suite.makeRequest("painter1", http.MethodGet, fmt.Sprintf("/leads/%d/bids", lead.ID), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	visible := response["data"].([]interface{})
	suite.Require().Len(visible, 1)
	assert.Equal(suite.T(), float64(suite.painter1.ID), visible[0].(map[string]interface{})["painter_id"])
}

// TestAssignmentAcceptanceSuite runs the test suite
func TestAssignmentAcceptanceSuite(t *testing.T) {
	suite.Run(t, new(AssignmentAcceptanceTestSuite))
}
