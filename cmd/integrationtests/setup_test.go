package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bidding "github.com/MaxLisniak/commerce/internal/biddingService"
	catalog "github.com/MaxLisniak/commerce/internal/catalogService"
	"github.com/MaxLisniak/commerce/internal/config"
	"github.com/MaxLisniak/commerce/internal/repository"
	"github.com/MaxLisniak/commerce/internal/server"
	"github.com/MaxLisniak/commerce/services/bidding/helpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPassword  = "correct horse"
	adminUsername = "admin"
)

var testAuth = config.AuthConfig{Secret: "integration-secret", TokenTTL: time.Hour, Admins: []string{adminUsername}}

// SetupTestRouter initializes the router with in-memory repository for integration testing.
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	biddingSvc := bidding.NewBiddingService(repo)
	catalogSvc := catalog.NewCatalogService(repo, biddingSvc,
		catalog.WithAdmins(testAuth.Admins...),
		catalog.WithHashCost(bcrypt.MinCost),
	)
	return server.SetupRouter(biddingSvc, catalogSvc, testAuth)
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		require.NoError(t, err, "failed to marshal body")
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "failed to unmarshal response")
	}
	return resp, w
}

// Data returns the envelope payload as an object
func Data(resp map[string]any) map[string]any {
	data, _ := resp["data"].(map[string]any)
	return data
}

// RegisterUser creates a user and returns its id and bearer token
func RegisterUser(t *testing.T, router *gin.Engine, username string) (string, string) {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/users", "", helpers.RegisterUserRequest{Username: username, Password: testPassword})
	require.Equal(t, http.StatusCreated, w.Code)
	data := Data(resp)
	return data["user_id"].(string), data["token"].(string)
}

// CreateListing opens a listing as the token's user and returns its id
func CreateListing(t *testing.T, router *gin.Engine, token, title string, startingPrice int64) string {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/listings", token, helpers.CreateListingRequest{
		Title:         title,
		Description:   title + " description",
		StartingPrice: startingPrice,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return Data(resp)["listing_id"].(string)
}

// PlaceBid bids as the token's user
func PlaceBid(t *testing.T, router *gin.Engine, token, listingID string, value int64) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	return ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/bids", token, helpers.PlaceBidRequest{Value: &value})
}

// CurrentPrice reads the listing's current price
func CurrentPrice(t *testing.T, router *gin.Engine, listingID string) int64 {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/"+listingID+"/price", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	return int64(Data(resp)["current_price"].(float64))
}
