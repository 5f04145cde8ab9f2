package controllers

import (
	"errors"
	"net/http"
	"strings"
	"susrolld/internal/gacha"
	"susrolld/internal/models"
	"susrolld/internal/providers"
	"susrolld/internal/services"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	session *gacha.Session
	service services.AccountServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, session *gacha.Session, service services.AccountServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		session: session,
		service: service,
		cache:   cache,
	}
}

type accountInfo struct {
	Username       string `json:"username"`
	FriendCode     string `json:"friend_code"`
	CollectionSize int    `json:"collection_size"`
}

// card decorates a character with its display rarity tier.
type card struct {
	models.Character
	Rarity models.Rarity `json:"rarity"`
}

type collectionCard struct {
	card
	Level int `json:"level"`
}

type sessionState struct {
	Username       string `json:"username"`
	FriendCode     string `json:"friend_code"`
	AvailableRolls int    `json:"available_rolls"`
	MaxRolls       int    `json:"max_rolls"`
	Rolled         []card `json:"rolled"`
	PendingReveals int    `json:"pending_reveals"`
	ClaimedID      *int   `json:"claimed_id,omitempty"`
	RollCount      int    `json:"roll_count"`
	Countdown      string `json:"countdown"`
}

func toCards(characters []models.Character) []card {
	cards := make([]card, len(characters))
	for i, ch := range characters {
		cards[i] = card{Character: ch, Rarity: models.RarityOf(&ch)}
	}
	return cards
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gacha.ErrNotLoggedIn) || errors.Is(err, services.ErrNoCurrentUser):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrUserNotFound) ||
		errors.Is(err, services.ErrFriendCodeNotFound) ||
		errors.Is(err, services.ErrNotInCollection) ||
		errors.Is(err, gacha.ErrNotRolled):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrUsernameTaken) ||
		errors.Is(err, gacha.ErrAlreadyClaimed) ||
		errors.Is(err, gacha.ErrRollInFlight) ||
		errors.Is(err, gacha.ErrNoRollsRemaining):
		status = http.StatusConflict
	case errors.Is(err, services.ErrCannotAddSelf):
		status = http.StatusBadRequest
	case errors.Is(err, gacha.ErrFetchExhausted):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		writeError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	name := strings.TrimSpace(payload.Username)
	if name == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := ac.session.CreateAccount(name); err != nil {
		writeError(w, err)
		return
	}
	ac.logger.Infof(providers.GetLogTypeByRequestType(r.Method), "Account created: %s", name)
	writeJSON(w, http.StatusCreated, accountInfo{
		Username:   name,
		FriendCode: ac.service.FriendCode(name),
	})
}

func (ac *ApiController) SwitchAccount(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	if err := ac.session.BindUser(payload.Username); err != nil {
		writeError(w, err)
		return
	}
	ac.writeSessionState(w)
}

func (ac *ApiController) ListAccounts(w http.ResponseWriter, r *http.Request) {
	sizes := ac.service.CollectionSizes()
	accounts := make([]accountInfo, 0, len(sizes))
	for _, name := range ac.service.Usernames() {
		accounts = append(accounts, accountInfo{
			Username:       name,
			FriendCode:     ac.service.FriendCode(name),
			CollectionSize: sizes[name],
		})
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (ac *ApiController) Roll(w http.ResponseWriter, r *http.Request) {
	character, err := ac.session.Roll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card{Character: character, Rarity: models.RarityOf(&character)})
}

func (ac *ApiController) RollBatch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Count int `json:"count"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Count < 1 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	characters, err := ac.session.RollBatch(r.Context(), payload.Count)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCards(characters))
}

func (ac *ApiController) Claim(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID int `json:"id"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	if err := ac.session.Claim(payload.ID); err != nil {
		writeError(w, err)
		return
	}
	ac.cache.Clear()
	ac.writeSessionState(w)
}

func (ac *ApiController) RemoveFromCollection(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID int `json:"id"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	user := ac.service.CurrentUser()
	if user == "" {
		writeError(w, services.ErrNoCurrentUser)
		return
	}
	if err := ac.service.RemoveFromCollection(user, payload.ID); err != nil {
		writeError(w, err)
		return
	}
	ac.session.Save()
	ac.cache.Clear()
	w.WriteHeader(http.StatusOK)
}

// GetCollection serves a sorted collection view. The user query
// parameter may name any existing account, so friends' collections are
// viewable; it defaults to the current user.
func (ac *ApiController) GetCollection(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		user = ac.service.CurrentUser()
		if user == "" {
			writeError(w, services.ErrNoCurrentUser)
			return
		}
	}
	sortBy := r.URL.Query().Get("sort")

	ac.serveFromCacheOrCompute(w, "collection:"+user+":"+sortBy, func() (any, error) {
		entries, err := ac.service.SortedCollection(user, sortBy)
		if err != nil {
			return nil, err
		}
		cards := make([]collectionCard, len(entries))
		for i, e := range entries {
			cards[i] = collectionCard{
				card:  card{Character: e.Character, Rarity: models.RarityOf(&e.Character)},
				Level: e.Level,
			}
		}
		return cards, nil
	})
}

func (ac *ApiController) GetSession(w http.ResponseWriter, r *http.Request) {
	ac.writeSessionState(w)
}

func (ac *ApiController) AddFriend(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	friend, already, err := ac.service.AddFriend(payload.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	if !already {
		ac.session.Save()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"friend":  friend,
		"already": already,
	})
}

func (ac *ApiController) GetFriends(w http.ResponseWriter, r *http.Request) {
	if ac.service.CurrentUser() == "" {
		writeError(w, services.ErrNoCurrentUser)
		return
	}
	sizes := ac.service.CollectionSizes()
	friends := make([]accountInfo, 0)
	for _, name := range ac.service.Friends() {
		friends = append(friends, accountInfo{
			Username:       name,
			FriendCode:     ac.service.FriendCode(name),
			CollectionSize: sizes[name],
		})
	}
	writeJSON(w, http.StatusOK, friends)
}

func (ac *ApiController) Wipe(w http.ResponseWriter, r *http.Request) {
	ac.session.Wipe()
	ac.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) writeSessionState(w http.ResponseWriter) {
	user := ac.service.CurrentUser()
	if user == "" {
		writeError(w, services.ErrNoCurrentUser)
		return
	}

	state := sessionState{
		Username:   user,
		FriendCode: ac.service.FriendCode(user),
		MaxRolls:   ac.session.MaxRolls(),
		Countdown:  ac.session.Countdown(),
	}
	err := ac.service.WithAccount(user, func(acc *models.Account) error {
		state.AvailableRolls = acc.Session.AvailableRolls
		state.Rolled = toCards(acc.Session.Rolled[:acc.Session.RevealIndex])
		state.PendingReveals = len(acc.Session.Rolled) - acc.Session.RevealIndex
		if acc.Session.ClaimedID != nil {
			id := *acc.Session.ClaimedID
			state.ClaimedID = &id
		}
		state.RollCount = acc.RollCount
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
