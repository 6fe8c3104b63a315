package integrationtests

import (
	"net/http"
	"testing"
	"time"

	"github.com/MaxLisniak/commerce/internal/auth"

	"github.com/stretchr/testify/require"
)

// PlaceBidHandler Tests
func TestPlaceBidHandler(t *testing.T) {
	tests := []struct {
		name       string
		request    any
		anonymous  bool
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "Valid_Bid",
			request:    map[string]any{"value": 100},
			wantStatus: http.StatusCreated,
			wantMsg:    "bid placed successfully",
		},
		{
			name:       "Below_Starting_Price",
			request:    map[string]any{"value": 49},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "Your bid must not be lower than the starting one.",
		},
		{
			name:       "Zero_Value",
			request:    map[string]any{"value": 0},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "Your bid must not be lower than the starting one.",
		},
		{
			name:       "Negative_Value",
			request:    map[string]any{"value": -10},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "Your bid must not be lower than the starting one.",
		},
		{
			name:       "Missing_Value",
			request:    map[string]any{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid request payload",
		},
		{
			name:       "Invalid_JSON",
			request:    "{value: 'missing quotes'}",
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid request payload",
		},
		{
			name:       "Anonymous",
			request:    map[string]any{"value": 100},
			anonymous:  true,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := SetupTestRouter()
			_, ownerToken := RegisterUser(t, router, "owner")
			bidderID, bidderToken := RegisterUser(t, router, "bidder")
			listingID := CreateListing(t, router, ownerToken, "Lamp", 50)

			token := bidderToken
			if tt.anonymous {
				token = ""
			}
			resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/bids", token, tt.request)
			require.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, resp["message"], tt.wantMsg)

			if tt.wantStatus == http.StatusCreated {
				data := Data(resp)
				require.Equal(t, listingID, data["listing_id"])
				require.Equal(t, bidderID, data["user_id"])
				require.Equal(t, 100.0, data["value"])
				require.NotEmpty(t, data["bid_id"])

				_, err := time.Parse(time.RFC3339, data["created_at"].(string))
				require.NoError(t, err)
			}
		})
	}
}

func TestAuthentication(t *testing.T) {
	router := SetupTestRouter()
	userID, _ := RegisterUser(t, router, "someone")

	expired, err := auth.GenerateToken(userID, "someone", []byte(testAuth.Secret), -time.Minute)
	require.NoError(t, err)
	forged, err := auth.GenerateToken(userID, "someone", []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{"expired": expired, "forged": forged, "garbage": "abc.def.ghi"} {
		t.Run(name, func(t *testing.T) {
			resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/watchlist", token, nil)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.Contains(t, resp["message"], "unauthorized")
		})
	}
}

// Bid sequence from a fresh listing through closing
func TestAuctionScenario(t *testing.T) {
	router := SetupTestRouter()
	_, ownerToken := RegisterUser(t, router, "owner")
	_, uToken := RegisterUser(t, router, "u")
	vID, vToken := RegisterUser(t, router, "v")
	listingID := CreateListing(t, router, ownerToken, "Telescope", 100)

	require.Equal(t, int64(100), CurrentPrice(t, router, listingID))

	_, w := PlaceBid(t, router, uToken, listingID, 100)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, int64(100), CurrentPrice(t, router, listingID))

	resp, w := PlaceBid(t, router, vToken, listingID, 100)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "Your bid must be higher than the current one.", resp["message"])

	for _, value := range []int64{0, -5, 99} {
		resp, w = PlaceBid(t, router, vToken, listingID, value)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.Equal(t, "Your bid must be higher than the current one.", resp["message"])
	}

	_, w = PlaceBid(t, router, vToken, listingID, 150)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, int64(150), CurrentPrice(t, router, listingID))

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/"+listingID+"/highest", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, vID, Data(resp)["user_id"])

	// only the owner may close
	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/close", uToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "forbidden", resp["message"])

	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/close", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := Data(resp)
	require.Equal(t, false, data["active"])
	notification := data["notification"].(map[string]any)
	require.Equal(t, vID, notification["user_id"])
	require.Equal(t, "/listings/"+listingID, notification["link"])
	require.Equal(t, false, notification["seen"])

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/notifications", vToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	inbox := resp["data"].([]any)
	require.Len(t, inbox, 1)
	require.Equal(t, "Congratulations! You won the bid 'Telescope'!", inbox[0].(map[string]any)["text"])

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/notifications", uToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, resp["data"].([]any))

	// a second close is forbidden and sends nothing new
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/close", ownerToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	_, w = PlaceBid(t, router, uToken, listingID, 500)
	require.Equal(t, http.StatusForbidden, w.Code)

	resp, _ = ExecuteRequestAndParse(t, router, http.MethodGet, "/notifications", vToken, nil)
	require.Len(t, resp["data"].([]any), 1)
}

func TestCloseWithoutBids(t *testing.T) {
	router := SetupTestRouter()
	ownerID, ownerToken := RegisterUser(t, router, "owner")
	listingID := CreateListing(t, router, ownerToken, "Kettle", 20)

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/close", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := Data(resp)
	require.Equal(t, false, data["active"])
	require.Nil(t, data["notification"])

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/notifications", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, resp["data"].([]any))

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/"+listingID, ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listing := Data(resp)["listing"].(map[string]any)
	require.Equal(t, false, listing["active"])
	require.Equal(t, ownerID, listing["owner_id"])

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/"+listingID+"/highest", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, resp, "data")
	require.Nil(t, resp["data"])

	_, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/missing/highest", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogin(t *testing.T) {
	router := SetupTestRouter()
	userID, _ := RegisterUser(t, router, "alice")

	// an expired session is recovered by logging in again
	expired, err := auth.GenerateToken(userID, "alice", []byte(testAuth.Secret), -time.Minute)
	require.NoError(t, err)
	_, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/watchlist", expired, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/login", "", map[string]any{"username": "alice", "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code)
	data := Data(resp)
	require.Equal(t, userID, data["user_id"])
	token := data["token"].(string)

	_, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/watchlist", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/login", "", map[string]any{"username": "alice", "password": "wrong password"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid username and/or password.", resp["message"])
	require.Nil(t, resp["data"])

	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/login", "", map[string]any{"username": "nobody", "password": testPassword})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCategoriesAdminOnly(t *testing.T) {
	router := SetupTestRouter()
	_, adminToken := RegisterUser(t, router, adminUsername)
	_, ownerToken := RegisterUser(t, router, "owner")
	_, strangerToken := RegisterUser(t, router, "stranger")

	_, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/categories", ownerToken, map[string]any{"name": "Home"})
	require.Equal(t, http.StatusForbidden, w.Code)

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/categories", adminToken, map[string]any{"name": "Home"})
	require.Equal(t, http.StatusCreated, w.Code)
	categoryID := Data(resp)["category_id"].(string)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings", ownerToken, map[string]any{
		"title": "Lamp", "description": "Brass", "starting_price": 10, "category_id": categoryID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	listingID := Data(resp)["listing_id"].(string)

	_, w = ExecuteRequestAndParse(t, router, http.MethodDelete, "/categories/"+categoryID, strangerToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/"+listingID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, categoryID, Data(resp)["listing"].(map[string]any)["category_id"])

	_, w = ExecuteRequestAndParse(t, router, http.MethodDelete, "/categories/"+categoryID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

// GetBidsByListingHandler Tests
func TestGetBidsByListingHandler(t *testing.T) {
	tests := []struct {
		name       string
		seedBids   []int64
		missing    bool
		wantCount  int
		wantStatus int
	}{
		{name: "With_Bids", seedBids: []int64{60, 70}, wantCount: 2, wantStatus: http.StatusOK},
		{name: "No_Bids", wantCount: 0, wantStatus: http.StatusOK},
		{name: "Listing_Not_Found", missing: true, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := SetupTestRouter()
			_, ownerToken := RegisterUser(t, router, "owner")
			_, bidderToken := RegisterUser(t, router, "bidder")
			listingID := CreateListing(t, router, ownerToken, "Lamp", 50)

			for _, value := range tt.seedBids {
				_, w := PlaceBid(t, router, bidderToken, listingID, value)
				require.Equal(t, http.StatusCreated, w.Code)
			}
			if tt.missing {
				listingID = "nonexistent"
			}

			resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/"+listingID+"/bids", "", nil)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				require.Len(t, resp["data"].([]any), tt.wantCount)
			}
		})
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	router := SetupTestRouter()
	_, ownerToken := RegisterUser(t, router, "owner")
	_, bidderToken := RegisterUser(t, router, "bidder")
	ownListing := CreateListing(t, router, ownerToken, "Lamp", 10)
	bidderListing := CreateListing(t, router, bidderToken, "Clock", 10)

	_, w := PlaceBid(t, router, bidderToken, ownListing, 30)
	require.Equal(t, http.StatusCreated, w.Code)
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+ownListing+"/comments", bidderToken, map[string]any{"text": "nice"})
	require.Equal(t, http.StatusCreated, w.Code)

	_, w = ExecuteRequestAndParse(t, router, http.MethodDelete, "/users/me", bidderToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, int64(10), CurrentPrice(t, router, ownListing))

	_, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/"+bidderListing, "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/"+ownListing+"/comments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	comments := resp["data"].([]any)
	require.Len(t, comments, 1)
	require.Nil(t, comments[0].(map[string]any)["user_id"])
}
