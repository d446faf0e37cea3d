package https_server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"usermanagement_server/internal/config"
	"usermanagement_server/internal/dao/memory"
	"usermanagement_server/internal/handler"
	"usermanagement_server/internal/model"
	"usermanagement_server/internal/service"
	"usermanagement_server/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type api struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, handler.InitTrans("en"))

	conf := config.Default()
	svc, err := service.NewServices(context.Background(), conf, service.WithStore(memory.New()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })

	engine := Init(conf, handler.NewHandlers(svc.Dispatcher, svc.Conns), svc.Dispatcher)
	return &api{t: t, engine: engine}
}

func (a *api) do(method, path string, userId int64, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userId != 0 {
		req.Header.Set(constants.USER_ID_HEADER, strconv.FormatInt(userId, 10))
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *api) result(w *httptest.ResponseRecorder) envelope {
	a.t.Helper()
	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestMissingIdentityIsRejected(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/user", 0, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set(constants.USER_ID_HEADER, "not-a-number")
	w = httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFirstRequestCreatesUser(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/user", 11, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(constants.REQUEST_ID_HEADER))

	env := a.result(w)
	require.True(t, env.Success)
	var view model.PublicUserInfo
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.True(t, strings.HasPrefix(view.Name, constants.DEFAULT_USERNAME_PREFIX))
}

func TestRequestIdIsEchoed(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set(constants.USER_ID_HEADER, "5")
	req.Header.Set(constants.REQUEST_ID_HEADER, "req-123")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(constants.REQUEST_ID_HEADER))
}

func TestRegistrationAndRename(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/user", 2, `{"username":"bob"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/user", 2, `{"username":"bobby"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, []string{"ALREADY_EXISTS"}, a.result(w).Errors)

	w = a.do(http.MethodPost, "/user", 3, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPut, "/user/username", 2, `{"username":"b!"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"TOO_SHORT", "INVALID_CHARACTERS"}, a.result(w).Errors)

	w = a.do(http.MethodPut, "/user/username", 2, `{"username":"robert"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"errors":[]}`, w.Body.String())

	w = a.do(http.MethodGet, "/user/robert/id", 9, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `2`, string(a.result(w).Data))

	w = a.do(http.MethodGet, "/user/bob/id", 9, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{"USER_UNDEFINED"}, a.result(w).Errors)

	w = a.do(http.MethodGet, "/user/robert", 9, "")
	require.Equal(t, http.StatusOK, w.Code)
	var view model.PublicUserInfo
	require.NoError(t, json.Unmarshal(a.result(w).Data, &view))
	assert.Equal(t, "robert", view.Name)
}

func TestFriendFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/user", 1, `{"username":"alice"}`).Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/user", 2, `{"username":"bob"}`).Code)

	w := a.do(http.MethodPost, "/user/friends/requests/outgoing/nobody", 1, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/user/friends/requests/outgoing/bob", 1, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = a.do(http.MethodPost, "/user/friends/requests/outgoing/alice", 2, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, []string{"REQUEST_ALREADY"}, a.result(w).Errors)

	w = a.do(http.MethodGet, "/user/notifications", 2, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"type":"REQUEST_RECEIVED","data":{"from":"alice"}}]`, string(a.result(w).Data))

	w = a.do(http.MethodGet, "/user/friends/requests", 2, "")
	require.Equal(t, http.StatusOK, w.Code)
	var incoming []model.PublicUserInfo
	require.NoError(t, json.Unmarshal(a.result(w).Data, &incoming))
	require.Len(t, incoming, 1)
	assert.Equal(t, "alice", incoming[0].Name)

	w = a.do(http.MethodPut, "/user/friends/requests/alice", 2, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/user/friends", 1, "")
	require.Equal(t, http.StatusOK, w.Code)
	var friends []model.PublicUserInfo
	require.NoError(t, json.Unmarshal(a.result(w).Data, &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].Name)

	w = a.do(http.MethodDelete, "/user", 2, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/user/friends", 1, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(a.result(w).Data))

	w = a.do(http.MethodGet, "/user/notifications", 1, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(a.result(w).Data), `"FRIEND_REMOVED"`)
}

func TestAdminAndMetrics(t *testing.T) {
	a := newAPI(t)
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/user", 4, "").Code)

	w := a.do(http.MethodPost, "/admin/cache/clear", 0, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `[]`, string(a.result(w).Data))

	w = a.do(http.MethodGet, "/metrics", 0, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "command_results_total")
	assert.Contains(t, w.Body.String(), "identity_cache_size")
}
