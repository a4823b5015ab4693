package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilemo/bilemo/internal/httpcache"
	"github.com/bilemo/bilemo/internal/model"
	"github.com/bilemo/bilemo/internal/testutil"
)

func (a *testAPI) send(t *testing.T, method, target, key, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func seedUsers(t *testing.T, api *testAPI, customerID string, n int) []*model.User {
	t.Helper()
	users := make([]*model.User, n)
	for i := range users {
		users[i] = testutil.NewTestUser(t, customerID)
		api.addUser(users[i])
	}
	return users
}

func TestUsers_RequireAuthentication(t *testing.T) {
	api := newTestAPI(t)

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/users"},
		{http.MethodGet, "/api/users/" + testutil.UniqueID()},
		{http.MethodDelete, "/api/users/" + testutil.UniqueID()},
	} {
		rec := api.send(t, tc.method, tc.target, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.target)
		assert.JSONEq(t, `{"code":401,"message":"Invalid or missing API key"}`, rec.Body.String())
	}

	rec := api.send(t, http.MethodGet, "/api/users", "bm_test_000000_00000000000000000000000000000000", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_ListScopedToPrincipal(t *testing.T) {
	api := newTestAPI(t)
	customerA, customerB := testutil.UniqueID(), testutil.UniqueID()
	keyA := api.issueKey(t, customerA)
	seedUsers(t, api, customerA, 12)
	seedUsers(t, api, customerB, 3)

	rec := api.send(t, http.MethodGet, "/api/users?page=2&limit=5", keyA, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeMap(t, rec)
	items := body["items"].([]any)
	assert.Len(t, items, 5)
	assert.Equal(t, map[string]any{
		"limit":        float64(5),
		"current_page": float64(2),
		"total_pages":  float64(3),
		"total_items":  float64(12),
	}, body["meta"])

	for _, item := range items {
		doc := item.(map[string]any)
		user, err := api.store.GetUserByID(context.Background(), doc["id"].(string))
		require.NoError(t, err)
		assert.Equal(t, customerA, user.CustomerID)
		assert.NotContains(t, doc, "email", "email is show-only")
	}
	assert.Contains(t, rec.Header().Values("Vary"), httpcache.VaryCredentials)
}

func TestUsers_ListOutOfRange(t *testing.T) {
	api := newTestAPI(t)
	customer := testutil.UniqueID()
	key := api.issueKey(t, customer)
	seedUsers(t, api, customer, 3)

	rec := api.send(t, http.MethodGet, "/api/users?page=2&limit=5", key, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"code":404,"message":"Page parameter can't be superior to the last page : 1"}`, rec.Body.String())
}

func TestUsers_Create(t *testing.T) {
	api := newTestAPI(t)
	customer := testutil.UniqueID()
	key := api.issueKey(t, customer)

	rec := api.send(t, http.MethodPost, "/api/users", key,
		`{"firstname":"Jane","lastname":"Doe","email":"jane.doe@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeMap(t, rec)
	id := body["id"].(string)
	assert.Equal(t, "Jane", body["firstname"])
	assert.Equal(t, "jane.doe@example.com", body["email"])
	assert.Equal(t, customer, body["customer"])
	assert.Equal(t, testBaseURL+"/api/users/"+id, rec.Header().Get("Location"))
	assert.Empty(t, rec.Header().Get("ETag"), "writes are not cacheable")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	links := body["_links"].([]any)
	rels := make([]string, 0, len(links))
	for _, l := range links {
		rels = append(rels, l.(map[string]any)["rel"].(string))
	}
	assert.Equal(t, []string{"self", "update", "delete"}, rels)
}

func TestUsers_CreateValidation(t *testing.T) {
	api := newTestAPI(t)
	key := api.issueKey(t, testutil.UniqueID())

	rec := api.send(t, http.MethodPost, "/api/users", key, `{"firstname":"","lastname":"Doe","email":"jane@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{
		"code": 400,
		"message": "Validation failed",
		"violations": [{"property_path": "firstname", "message": "Can not be blank"}]
	}`, rec.Body.String())

	rec = api.send(t, http.MethodPost, "/api/users", key, `{"firstname":"J","lastname":"","email":"nope"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeMap(t, rec)
	assert.Len(t, body["violations"], 3, "every violation is reported")

	assert.Empty(t, api.store.users)
}

func TestUsers_CreateDuplicateEmail(t *testing.T) {
	api := newTestAPI(t)
	existing := seedUsers(t, api, testutil.UniqueID(), 1)[0]
	key := api.issueKey(t, testutil.UniqueID())

	rec := api.send(t, http.MethodPost, "/api/users", key,
		fmt.Sprintf(`{"firstname":"Jane","lastname":"Doe","email":%q}`, existing.Email))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please change your email because: "+existing.Email+" is not available")
}

func TestUsers_CreateMalformedBody(t *testing.T) {
	api := newTestAPI(t)
	key := api.issueKey(t, testutil.UniqueID())

	for _, body := range []string{`{"firstname":`, `[]`, ``} {
		rec := api.send(t, http.MethodPost, "/api/users", key, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.JSONEq(t, `{"code":400,"message":"Invalid JSON body"}`, rec.Body.String())
	}
}

func TestUsers_ShowOwnership(t *testing.T) {
	api := newTestAPI(t)
	owner, other := testutil.UniqueID(), testutil.UniqueID()
	ownerKey, otherKey := api.issueKey(t, owner), api.issueKey(t, other)
	u := seedUsers(t, api, owner, 1)[0]

	rec := api.send(t, http.MethodGet, "/api/users/"+u.ID, ownerKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, u.Email, body["email"])
	assert.Contains(t, body, "created_at")

	rec = api.send(t, http.MethodGet, "/api/users/"+u.ID, otherKey, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"code":401,"message":"You can't see this content because you are not the owner"}`, rec.Body.String())

	rec = api.send(t, http.MethodGet, "/api/users/"+testutil.UniqueID(), ownerKey, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"code":404,"message":"No users found with this ID"}`, rec.Body.String())
}

func TestUsers_Update(t *testing.T) {
	api := newTestAPI(t)
	owner := testutil.UniqueID()
	key := api.issueKey(t, owner)
	u := seedUsers(t, api, owner, 1)[0]

	rec := api.send(t, http.MethodPut, "/api/users/"+u.ID, key, `{"firstname":"Grace"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeMap(t, rec)
	assert.Equal(t, "Grace", body["firstname"])
	assert.Equal(t, u.Lastname, body["lastname"], "absent fields are untouched")
	assert.Equal(t, u.Email, body["email"])

	rec = api.send(t, http.MethodPut, "/api/users/"+u.ID, key, `{"email":"broken"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsers_DeleteByOtherCustomer(t *testing.T) {
	api := newTestAPI(t)
	owner, other := testutil.UniqueID(), testutil.UniqueID()
	otherKey := api.issueKey(t, other)
	u := seedUsers(t, api, owner, 1)[0]

	rec := api.send(t, http.MethodDelete, "/api/users/"+u.ID, otherKey, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"code":401,"message":"You can't delete this content because you are not the owner"}`, rec.Body.String())

	_, err := api.store.GetUserByID(context.Background(), u.ID)
	assert.NoError(t, err, "user must survive a denied delete")
	assert.Equal(t, uint64(1), api.recorder.Snapshot().AccessDenied)
}

func TestUsers_Delete(t *testing.T) {
	api := newTestAPI(t)
	owner := testutil.UniqueID()
	key := api.issueKey(t, owner)
	u := seedUsers(t, api, owner, 1)[0]

	rec := api.send(t, http.MethodDelete, "/api/users/"+u.ID, key, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":200,"message":"User has been deleted"}`, rec.Body.String())

	rec = api.send(t, http.MethodDelete, "/api/users/"+u.ID, key, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsers_ShowWithAPIKeyHeader(t *testing.T) {
	api := newTestAPI(t)
	owner := testutil.UniqueID()
	key := api.issueKey(t, owner)
	u := seedUsers(t, api, owner, 1)[0]

	rec := api.do(t, http.MethodGet, "/api/users/"+u.ID, http.Header{"X-API-Key": {key}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Values("Vary"), httpcache.VaryCredentials,
		"responses must vary on the header that carried the key")

	head := api.do(t, http.MethodHead, "/api/users/"+u.ID, http.Header{"X-API-Key": {key}})
	assert.Equal(t, http.StatusOK, head.Code)
	assert.Equal(t, rec.Header().Get("ETag"), head.Header().Get("ETag"))
	assert.Empty(t, head.Body.Bytes())
}
