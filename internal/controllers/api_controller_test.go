package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"susrolld/internal/gacha"
	"susrolld/internal/models"
	"susrolld/internal/services"
	"susrolld/internal/structures"
	"susrolld/internal/testutil"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type controllerFixture struct {
	ac      *ApiController
	service services.AccountServiceInterface
	fetcher *testutil.MockFetcher
	cache   *testutil.MockCache
}

func newControllerFixture(queue ...models.Character) *controllerFixture {
	conf := &structures.Config{
		Gacha: structures.GachaConfig{
			MaxRolls: 10,
			// keep pending rolls unrevealed for the whole test
			RevealDelay: time.Hour,
		},
	}
	service := services.NewAccountService(conf)
	fetcher := &testutil.MockFetcher{Queue: queue, ExhaustedErr: gacha.ErrFetchExhausted}
	session := gacha.NewSession(service, fetcher, &testutil.MockSaver{}, conf, &testutil.MockLogger{}, testutil.NewMockMetrics())
	cache := testutil.NewMockCache()
	return &controllerFixture{
		ac:      NewApiController(&testutil.MockLogger{}, session, service, cache),
		service: service,
		fetcher: fetcher,
		cache:   cache,
	}
}

func (fx *controllerFixture) createAccount(t *testing.T, name string) {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"username":"`+name+`"}`))
	fx.ac.CreateAccount(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

func TestCreateAccount_ReturnsFriendCode(t *testing.T) {
	fx := newControllerFixture()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"username":"alice"}`))
	fx.ac.CreateAccount(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp struct {
		Username   string `json:"username"`
		FriendCode string `json:"friend_code"`
	}
	decodeInto(t, rr, &resp)
	assert.Equal(t, "alice", resp.Username)
	assert.NotEmpty(t, resp.FriendCode)
}

func TestCreateAccount_Duplicate(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"username":"alice"}`))
	fx.ac.CreateAccount(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCreateAccount_EmptyUsername(t *testing.T) {
	fx := newControllerFixture()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"username":"  "}`))
	fx.ac.CreateAccount(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateAccount_InvalidJSON(t *testing.T) {
	fx := newControllerFixture()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{bad`))
	fx.ac.CreateAccount(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRoll_WithoutUser(t *testing.T) {
	fx := newControllerFixture()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/roll", nil)
	fx.ac.Roll(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoll_ReturnsCharacter(t *testing.T) {
	fx := newControllerFixture(models.Character{ID: 7, Name: "A", Image: "img"})
	fx.createAccount(t, "alice")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/roll", nil)
	fx.ac.Roll(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var ch models.Character
	decodeInto(t, rr, &ch)
	assert.Equal(t, 7, ch.ID)
}

func TestRoll_SourceExhausted(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/roll", nil)
	fx.ac.Roll(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRollBatch_InvalidCount(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/roll/batch", strings.NewReader(`{"count":0}`))
	fx.ac.RollBatch(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRollBatch_ReturnsCharacters(t *testing.T) {
	fx := newControllerFixture(
		models.Character{ID: 1, Name: "A", Image: "img"},
		models.Character{ID: 2, Name: "B", Image: "img"},
	)
	fx.createAccount(t, "alice")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/roll/batch", strings.NewReader(`{"count":2}`))
	fx.ac.RollBatch(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var out []models.Character
	decodeInto(t, rr, &out)
	assert.Len(t, out, 2)
}

func TestClaim_FullFlow(t *testing.T) {
	fx := newControllerFixture(models.Character{ID: 7, Name: "A", Image: "img"})
	fx.createAccount(t, "alice")

	rr := httptest.NewRecorder()
	fx.ac.Roll(rr, httptest.NewRequest(http.MethodPost, "/roll", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	fx.ac.Claim(rr, httptest.NewRequest(http.MethodPost, "/claim", strings.NewReader(`{"id":7}`)))
	require.Equal(t, http.StatusOK, rr.Code)

	var state struct {
		ClaimedID *int `json:"claimed_id"`
	}
	decodeInto(t, rr, &state)
	require.NotNil(t, state.ClaimedID)
	assert.Equal(t, 7, *state.ClaimedID)

	// second claim in the same period is rejected
	rr = httptest.NewRecorder()
	fx.ac.Claim(rr, httptest.NewRequest(http.MethodPost, "/claim", strings.NewReader(`{"id":7}`)))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestClaim_NotRolled(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")

	rr := httptest.NewRecorder()
	fx.ac.Claim(rr, httptest.NewRequest(http.MethodPost, "/claim", strings.NewReader(`{"id":99}`)))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetSession_HidesUnrevealedRolls(t *testing.T) {
	fx := newControllerFixture(models.Character{ID: 7, Name: "A", Image: "img"})
	fx.createAccount(t, "alice")

	rr := httptest.NewRecorder()
	fx.ac.Roll(rr, httptest.NewRequest(http.MethodPost, "/roll", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	fx.ac.GetSession(rr, httptest.NewRequest(http.MethodGet, "/session", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var state struct {
		Username       string             `json:"username"`
		AvailableRolls int                `json:"available_rolls"`
		MaxRolls       int                `json:"max_rolls"`
		Rolled         []models.Character `json:"rolled"`
		PendingReveals int                `json:"pending_reveals"`
		Countdown      string             `json:"countdown"`
	}
	decodeInto(t, rr, &state)
	assert.Equal(t, "alice", state.Username)
	assert.Equal(t, 9, state.AvailableRolls)
	assert.Equal(t, 10, state.MaxRolls)
	assert.Empty(t, state.Rolled)
	assert.Equal(t, 1, state.PendingReveals)
	assert.Contains(t, state.Countdown, ":")
}

func TestGetCollection_SortedAndCached(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")
	require.NoError(t, fx.service.WithAccount("alice", func(acc *models.Account) error {
		acc.Collection = append(acc.Collection,
			models.CollectionEntry{Character: models.Character{ID: 1, Name: "B"}, Level: 1},
			models.CollectionEntry{Character: models.Character{ID: 2, Name: "A"}, Level: 2},
		)
		return nil
	}))

	rr := httptest.NewRecorder()
	fx.ac.GetCollection(rr, httptest.NewRequest(http.MethodGet, "/collection?sort=name", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var entries []models.CollectionEntry
	decodeInto(t, rr, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].Name)

	_, cached := fx.cache.Get("collection:alice:name")
	assert.True(t, cached)
}

func TestGetCollection_OtherUser(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")
	fx.createAccount(t, "bob")

	rr := httptest.NewRecorder()
	fx.ac.GetCollection(rr, httptest.NewRequest(http.MethodGet, "/collection?user=alice", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetCollection_UnknownUser(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")

	rr := httptest.NewRecorder()
	fx.ac.GetCollection(rr, httptest.NewRequest(http.MethodGet, "/collection?user=ghost", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRemoveFromCollection(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")
	require.NoError(t, fx.service.WithAccount("alice", func(acc *models.Account) error {
		acc.Collection = append(acc.Collection, models.CollectionEntry{Character: models.Character{ID: 5}, Level: 1})
		return nil
	}))

	rr := httptest.NewRecorder()
	fx.ac.RemoveFromCollection(rr, httptest.NewRequest(http.MethodPost, "/collection/remove", strings.NewReader(`{"id":5}`)))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	fx.ac.RemoveFromCollection(rr, httptest.NewRequest(http.MethodPost, "/collection/remove", strings.NewReader(`{"id":5}`)))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSwitchAccount(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")
	fx.createAccount(t, "bob")

	rr := httptest.NewRecorder()
	fx.ac.SwitchAccount(rr, httptest.NewRequest(http.MethodPost, "/accounts/switch", strings.NewReader(`{"username":"alice"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", fx.service.CurrentUser())
}

func TestSwitchAccount_Unknown(t *testing.T) {
	fx := newControllerFixture()
	rr := httptest.NewRecorder()
	fx.ac.SwitchAccount(rr, httptest.NewRequest(http.MethodPost, "/accounts/switch", strings.NewReader(`{"username":"ghost"}`)))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListAccounts(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")
	fx.createAccount(t, "bob")

	rr := httptest.NewRecorder()
	fx.ac.ListAccounts(rr, httptest.NewRequest(http.MethodGet, "/accounts", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var accounts []struct {
		Username   string `json:"username"`
		FriendCode string `json:"friend_code"`
	}
	decodeInto(t, rr, &accounts)
	assert.Len(t, accounts, 2)
}

func TestFriends_AddAndList(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")
	fx.createAccount(t, "bob")

	code := fx.service.FriendCode("alice")
	rr := httptest.NewRecorder()
	fx.ac.AddFriend(rr, httptest.NewRequest(http.MethodPost, "/friends", strings.NewReader(`{"code":"`+code+`"}`)))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Friend  string `json:"friend"`
		Already bool   `json:"already"`
	}
	decodeInto(t, rr, &resp)
	assert.Equal(t, "alice", resp.Friend)
	assert.False(t, resp.Already)

	rr = httptest.NewRecorder()
	fx.ac.GetFriends(rr, httptest.NewRequest(http.MethodGet, "/friends", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var friends []struct {
		Username string `json:"username"`
	}
	decodeInto(t, rr, &friends)
	require.Len(t, friends, 1)
	assert.Equal(t, "alice", friends[0].Username)
}

func TestAddFriend_SelfCode(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")

	code := fx.service.FriendCode("alice")
	rr := httptest.NewRecorder()
	fx.ac.AddFriend(rr, httptest.NewRequest(http.MethodPost, "/friends", strings.NewReader(`{"code":"`+code+`"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWipe_ClearsAccountsAndCache(t *testing.T) {
	fx := newControllerFixture()
	fx.createAccount(t, "alice")
	fx.cache.Set("collection:alice:", []byte(`[]`))

	rr := httptest.NewRecorder()
	fx.ac.Wipe(rr, httptest.NewRequest(http.MethodPost, "/wipe", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, fx.service.Usernames())
	_, ok := fx.cache.Get("collection:alice:")
	assert.False(t, ok)
}
