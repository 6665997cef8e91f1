package integration

import (
	"net/http"
	"testing"

	"unihomes_backend/internal/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitProof(t *testing.T, env *testEnv, cookies []*http.Cookie, listingID string) (*http.Response, payment.Response) {
	t.Helper()
	rec, body := env.doRequest(t, http.MethodPost, "/api/v1/payments", gin.H{
		"listing_id": listingID,
		"reference":  "TRX-20260825-0001",
		"image_url":  "https://cdn.unihomes.test/proofs/receipt.png",
		"amount":     5000,
	}, cookies)

	var proof payment.Response
	if rec.Code == http.StatusCreated {
		body.decodeData(t, &proof)
	}
	return rec.Result(), proof
}

func adminCookies(t *testing.T, env *testEnv, email string) []*http.Cookie {
	t.Helper()
	env.registerUser(t, email, "student")
	env.promoteToAdmin(t, email)
	// The role rides in the JWT claims, so a fresh login is needed.
	res, cookies := login(t, env, email, "password123")
	require.Equal(t, http.StatusOK, res.StatusCode)
	return cookies
}

func TestPaymentRejectFlow(t *testing.T) {
	env := setupTestServer(t)
	agent := env.registerUser(t, "seller@unihomes.test", "agent")
	student := env.registerUser(t, "buyer@unihomes.test", "student")
	admin := adminCookies(t, env, "reviewer@unihomes.test")

	created := createListing(t, env, agent, "Self-contain with payment gate")

	res, proof := submitProof(t, env, student, created.ID.String())
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "pending", proof.Status)

	// A second pending proof for the same listing is refused.
	res, _ = submitProof(t, env, student, created.ID.String())
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	// The submitter sees it in their own history.
	rec, body := env.doRequest(t, http.MethodGet, "/api/v1/payments/me", nil, student)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []payment.Response
	body.decodeData(t, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, proof.ID, mine[0].ID)

	// The review queue is admin-only.
	rec, _ = env.doRequest(t, http.MethodGet, "/api/v1/admin/payments", nil, student)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = env.doRequest(t, http.MethodPatch, "/api/v1/admin/payments/"+proof.ID.String()+"/review", gin.H{
		"action":           "reject",
		"rejection_reason": "The receipt image does not match the stated reference.",
	}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rejected payment.Response
	body.decodeData(t, &rejected)
	assert.Equal(t, "rejected", rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "The receipt image does not match the stated reference.", *rejected.RejectionReason)
	require.NotNil(t, rejected.ReviewedBy)
	require.NotNil(t, rejected.ReviewedAt)

	// A resolved proof cannot be reviewed twice.
	rec, _ = env.doRequest(t, http.MethodPatch, "/api/v1/admin/payments/"+proof.ID.String()+"/review", gin.H{
		"action":           "reject",
		"rejection_reason": "Trying to reject the same proof again.",
	}, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// After the rejection the student may submit again.
	res, _ = submitProof(t, env, student, created.ID.String())
	assert.Equal(t, http.StatusCreated, res.StatusCode)
}

func TestPaymentRejectionReasonTooShort(t *testing.T) {
	env := setupTestServer(t)
	agent := env.registerUser(t, "seller2@unihomes.test", "agent")
	student := env.registerUser(t, "buyer2@unihomes.test", "student")
	admin := adminCookies(t, env, "reviewer2@unihomes.test")

	created := createListing(t, env, agent, "Listing with fussy reviewer")
	res, proof := submitProof(t, env, student, created.ID.String())
	require.Equal(t, http.StatusCreated, res.StatusCode)

	rec, _ := env.doRequest(t, http.MethodPatch, "/api/v1/admin/payments/"+proof.ID.String()+"/review", gin.H{
		"action":           "reject",
		"rejection_reason": "too short",
	}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentProofOwnershipGate(t *testing.T) {
	env := setupTestServer(t)
	agent := env.registerUser(t, "seller3@unihomes.test", "agent")
	student := env.registerUser(t, "buyer3@unihomes.test", "student")
	stranger := env.registerUser(t, "nosy@unihomes.test", "student")

	created := createListing(t, env, agent, "Listing with nosy neighbour")
	res, proof := submitProof(t, env, student, created.ID.String())
	require.Equal(t, http.StatusCreated, res.StatusCode)

	// Another student cannot read someone else's proof.
	rec, _ := env.doRequest(t, http.MethodGet, "/api/v1/payments/"+proof.ID.String(), nil, stranger)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The submitter can.
	rec, _ = env.doRequest(t, http.MethodGet, "/api/v1/payments/"+proof.ID.String(), nil, student)
	assert.Equal(t, http.StatusOK, rec.Code)
}
