package integration

import (
	"net/http"
	"testing"

	"unihomes_backend/internal/listing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createListing(t *testing.T, env *testEnv, cookies []*http.Cookie, title string) listing.Response {
	t.Helper()
	rec, body := env.doRequest(t, http.MethodPost, "/api/v1/listings", gin.H{
		"title":         title,
		"description":   "Clean self-contain five minutes from the main gate.",
		"price":         250000,
		"bedrooms":      1,
		"bathrooms":     1,
		"area":          "Akoka",
		"address_area":  "Akoka, near University of Lagos",
		"address_full":  "12 Chapel Street, Akoka, Lagos",
		"contact_name":  "Agent Dayo",
		"contact_phone": "08012345678",
	}, cookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created listing.Response
	body.decodeData(t, &created)
	return created
}

func TestListingCreateRequiresAgentRole(t *testing.T) {
	env := setupTestServer(t)
	studentCookies := env.registerUser(t, "student@unihomes.test", "student")

	rec, _ := env.doRequest(t, http.MethodPost, "/api/v1/listings", gin.H{
		"title":         "Student cannot post this",
		"price":         100000,
		"bedrooms":      1,
		"bathrooms":     1,
		"area":          "Yaba",
		"address_area":  "Yaba, Lagos",
		"address_full":  "1 Example Close, Yaba",
		"contact_name":  "Nobody",
		"contact_phone": "08000000000",
	}, studentCookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListingLockedTierGating(t *testing.T) {
	env := setupTestServer(t)
	agentCookies := env.registerUser(t, "agent@unihomes.test", "agent")
	studentCookies := env.registerUser(t, "viewer@unihomes.test", "student")

	created := createListing(t, env, agentCookies, "Spacious room near campus gate")
	require.NotEmpty(t, created.Slug)

	// Anonymous browsers get the public tier only.
	rec, body := env.doRequest(t, http.MethodGet, "/api/v1/listings/"+created.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var anonView listing.Response
	body.decodeData(t, &anonView)
	assert.False(t, anonView.IsUnlocked)
	assert.Nil(t, anonView.Locked)

	// A signed-in student without an unlock sees the same.
	rec, body = env.doRequest(t, http.MethodGet, "/api/v1/listings/"+created.ID.String(), nil, studentCookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var studentView listing.Response
	body.decodeData(t, &studentView)
	assert.False(t, studentView.IsUnlocked)
	assert.Nil(t, studentView.Locked)

	// The owner always sees the locked tier.
	rec, body = env.doRequest(t, http.MethodGet, "/api/v1/listings/"+created.ID.String(), nil, agentCookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var ownerView listing.Response
	body.decodeData(t, &ownerView)
	assert.True(t, ownerView.IsUnlocked)
	require.NotNil(t, ownerView.Locked)
	assert.Equal(t, "12 Chapel Street, Akoka, Lagos", ownerView.Locked.AddressFull)
	assert.Equal(t, "08012345678", ownerView.Locked.ContactPhone)
}

func TestListingUpdateByNonOwnerForbidden(t *testing.T) {
	env := setupTestServer(t)
	ownerCookies := env.registerUser(t, "owner-agent@unihomes.test", "agent")
	otherCookies := env.registerUser(t, "other-agent@unihomes.test", "agent")

	created := createListing(t, env, ownerCookies, "Room only the owner may edit")

	rec, _ := env.doRequest(t, http.MethodPatch, "/api/v1/listings/"+created.ID.String(), gin.H{
		"price": 300000,
	}, otherCookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = env.doRequest(t, http.MethodPatch, "/api/v1/listings/"+created.ID.String(), gin.H{
		"price": 300000,
	}, ownerCookies)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestListingDeleteDisappearsFromBrowse(t *testing.T) {
	env := setupTestServer(t)
	agentCookies := env.registerUser(t, "deleter@unihomes.test", "agent")

	created := createListing(t, env, agentCookies, "Short-lived listing posting")

	rec, _ := env.doRequest(t, http.MethodDelete, "/api/v1/listings/"+created.ID.String(), nil, agentCookies)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec, _ = env.doRequest(t, http.MethodGet, "/api/v1/listings/"+created.ID.String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoommateListingLifecycle(t *testing.T) {
	env := setupTestServer(t)
	posterCookies := env.registerUser(t, "poster@unihomes.test", "student")
	otherCookies := env.registerUser(t, "stranger@unihomes.test", "student")

	rec, body := env.doRequest(t, http.MethodPost, "/api/v1/roommates", gin.H{
		"title":  "Looking for a tidy roommate in Yaba",
		"budget": 120000,
		"area":   "Yaba",
		"preferences": gin.H{
			"cleanliness": "tidy",
			"smoking":     false,
		},
	}, posterCookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	body.decodeData(t, &created)

	// Public browse works anonymously.
	rec, _ = env.doRequest(t, http.MethodGet, "/api/v1/roommates/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Only the poster can delete.
	rec, _ = env.doRequest(t, http.MethodDelete, "/api/v1/roommates/"+created.ID, nil, otherCookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = env.doRequest(t, http.MethodDelete, "/api/v1/roommates/"+created.ID, nil, posterCookies)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
