package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/skedule/internal/service"
)

var testSecret = []byte("test-secret")

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func newTestServer(t *testing.T, ping error) *Server {
	t.Helper()
	return NewServer(&Options{
		Service:        service.New(nil, service.Options{}),
		DB:             fakePinger{err: ping},
		JWTSecret:      testSecret,
		DisableReqLogs: true,
	})
}

func token(t *testing.T, l Level) string {
	t.Helper()
	tok, err := MintToken(testSecret, l, time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

type httpTest struct {
	name   string
	method string
	path   string
	body   string
	token  string
	code   int
	// fields: ключи, которые должны быть в JSON-ответе
	fields []string
}

func (tt httpTest) run(t *testing.T, s *Server) {
	t.Helper()
	var body io.Reader
	if tt.body != "" {
		body = strings.NewReader(tt.body)
	}
	req := httptest.NewRequest(tt.method, tt.path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if tt.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, tt.code, rec.Code, rec.Body.String())
	if len(tt.fields) == 0 {
		return
	}
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got), rec.Body.String())
	for _, f := range tt.fields {
		assert.Contains(t, got, f)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	httpTest{name: "ok", method: http.MethodGet, path: "/healthz", code: http.StatusOK}.run(t, s)

	s = newTestServer(t, errors.New("connection refused"))
	httpTest{name: "db down", method: http.MethodGet, path: "/healthz", code: http.StatusServiceUnavailable}.run(t, s)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	_, err := uuid.Parse(rec.Header().Get(echo.HeaderXRequestID))
	assert.NoError(t, err)
}

func TestAuthGate(t *testing.T) {
	s := newTestServer(t, nil)

	expired, err := MintToken(testSecret, LevelAdmin, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	foreign, err := MintToken([]byte("other"), LevelAdmin, time.Hour, time.Now())
	require.NoError(t, err)

	tests := []httpTest{
		{name: "no token", method: http.MethodGet, path: "/api/stats", code: http.StatusUnauthorized, fields: []string{"error"}},
		{name: "garbage", method: http.MethodGet, path: "/api/stats", token: "nope", code: http.StatusUnauthorized},
		{name: "expired", method: http.MethodGet, path: "/api/stats", token: expired, code: http.StatusUnauthorized},
		{name: "foreign secret", method: http.MethodGet, path: "/api/stats", token: foreign, code: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { tt.run(t, s) })
	}
}

func TestAccessTable(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []httpTest{
		{name: "website cannot create schools", method: http.MethodPost, path: "/api/schools", body: `{"name":"x"}`, token: token(t, LevelWebsite), code: http.StatusForbidden},
		{name: "telegram cannot create lessons", method: http.MethodPost, path: "/api/lessons", body: `{}`, token: token(t, LevelTelegram), code: http.StatusForbidden},
		{name: "parser cannot read stats", method: http.MethodGet, path: "/api/stats", token: token(t, LevelParser), code: http.StatusForbidden},
		{name: "parser cannot register", method: http.MethodPost, path: "/api/registration/student", body: `{}`, token: token(t, LevelParser), code: http.StatusForbidden},
		{name: "website cannot list telegram ids", method: http.MethodGet, path: "/api/accounts", token: token(t, LevelWebsite), code: http.StatusForbidden},
		{name: "telegram cannot list telegram ids", method: http.MethodGet, path: "/api/accounts", token: token(t, LevelTelegram), code: http.StatusForbidden},
		{name: "website cannot read history", method: http.MethodGet, path: "/api/announcements/history/1", token: token(t, LevelWebsite), code: http.StatusForbidden},
		{name: "website cannot broadcast", method: http.MethodPost, path: "/api/announcements/toall", body: `{}`, token: token(t, LevelWebsite), code: http.StatusForbidden},
		{name: "telegram cannot set premium", method: http.MethodPut, path: "/api/accounts/5/premium", body: `{}`, token: token(t, LevelTelegram), code: http.StatusForbidden},
		{name: "website cannot read info", method: http.MethodGet, path: "/api/schools", token: token(t, LevelWebsite), code: http.StatusForbidden},
		{name: "website cannot query lessons", method: http.MethodGet, path: "/api/schools/1/lessons/day?day=1&teacher_id=1", token: token(t, LevelWebsite), code: http.StatusForbidden},
		{name: "unknown level", method: http.MethodGet, path: "/api/schools", token: token(t, Level(9)), code: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { tt.run(t, s) })
	}
}

func TestAllowed(t *testing.T) {
	for _, l := range []Level{LevelAdmin, LevelTelegram, LevelParser} {
		assert.True(t, allowed(groupInfo, l), l.String())
	}
	assert.False(t, allowed(groupInfo, LevelWebsite))
	assert.True(t, allowed(groupEntities, LevelParser))
	assert.False(t, allowed(groupEntities, LevelWebsite))
	assert.True(t, allowed(groupStats, LevelWebsite))
	assert.False(t, allowed(groupBroadcast, LevelTelegram))
	assert.True(t, allowed(groupPremium, LevelAdmin))
}

func TestRequestValidation(t *testing.T) {
	s := newTestServer(t, nil)
	admin := token(t, LevelAdmin)

	tests := []httpTest{
		{name: "empty school name", method: http.MethodPost, path: "/api/schools", body: `{"name":""}`, token: admin, code: http.StatusBadRequest, fields: []string{"name"}},
		{name: "blank school name", method: http.MethodPost, path: "/api/schools", body: `{"name":"   "}`, token: admin, code: http.StatusBadRequest, fields: []string{"name"}},
		{name: "unknown role", method: http.MethodPost, path: "/api/registration/wizard", body: `{"telegram_id":1}`, token: admin, code: http.StatusBadRequest, fields: []string{"role"}},
		{name: "student without subclass", method: http.MethodPost, path: "/api/registration/student", body: `{"telegram_id":555}`, token: admin, code: http.StatusBadRequest, fields: []string{"subclass_id"}},
		{name: "teacher without teacher id", method: http.MethodPost, path: "/api/roles/change/teacher", body: `{"telegram_id":555}`, token: admin, code: http.StatusBadRequest, fields: []string{"teacher_id"}},
		{name: "registration without telegram id", method: http.MethodPost, path: "/api/registration/parent", body: `{}`, token: admin, code: http.StatusBadRequest, fields: []string{"telegram_id"}},
		{name: "lesson without subclasses", method: http.MethodPost, path: "/api/lessons", body: `{"cabinet_id":1,"teacher_id":1,"lesson_number_id":1,"day_of_week":1,"subject":"Физика","subclass_ids":[]}`, token: admin, code: http.StatusBadRequest, fields: []string{"subclass_ids"}},
		{name: "bad path id", method: http.MethodGet, path: "/api/schools/abc", token: admin, code: http.StatusBadRequest, fields: []string{"id"}},
		{name: "day is required", method: http.MethodGet, path: "/api/schools/1/lessons/day?teacher_id=1", token: admin, code: http.StatusBadRequest, fields: []string{"day"}},
		{name: "remove child needs telegram id", method: http.MethodDelete, path: "/api/roles/children/3", token: admin, code: http.StatusBadRequest, fields: []string{"telegram_id"}},
		{name: "unknown filter type", method: http.MethodPost, path: "/api/announcements/preview", body: `{"school_id":1,"title":"t","text":"x","filters":[{"type":"planet"}]}`, token: admin, code: http.StatusBadRequest, fields: []string{"filters[0].type"}},
		{name: "teacher filter without name", method: http.MethodPost, path: "/api/announcements/preview", body: `{"school_id":1,"title":"t","text":"x","filters":[{"type":"teacher"}]}`, token: admin, code: http.StatusBadRequest, fields: []string{"filters[0].name"}},
		{name: "malformed json", method: http.MethodPost, path: "/api/schools", body: `{"name":`, token: admin, code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { tt.run(t, s) })
	}
}

func TestErrorHandler_ServiceKinds(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{service.NotFoundf("Subclass with id %d does not exist", 7), http.StatusNotFound, "Subclass with id 7 does not exist"},
		{service.Conflictf("User with telegram id %d already exists", 555), http.StatusConflict, "User with telegram id 555 already exists"},
		{service.Validationf("You must specify a subclass_id or a teacher_id"), http.StatusUnprocessableEntity, "You must specify a subclass_id or a teacher_id"},
		{&service.Error{Kind: service.KindInvariant, Msg: "Invalid user 1"}, http.StatusConflict, "Invalid user 1"},
		{&service.Error{Kind: service.KindBadContent, Msg: "Invalid HTML: tag script"}, http.StatusBadRequest, "Invalid HTML: tag script"},
		{&service.Error{Kind: service.KindDownstream, Msg: "Can not post your announcement", Err: errors.New("http 502")}, http.StatusInternalServerError, "Can not post your announcement"},
		{errors.New("boom"), http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := s.app.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			s.errorHandler(tt.err, c)

			require.Equal(t, tt.code, rec.Code)
			var got map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.msg, got["error"])
		})
	}
}

func TestErrorHandler_Head(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	c := s.app.NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)
	s.errorHandler(service.NotFoundf("School with id 1 does not exist"), c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestTokenRoundTrip(t *testing.T) {
	tok := token(t, LevelParser)
	l, err := ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, LevelParser, l)

	// без срока действия
	tok, err = MintToken(testSecret, LevelWebsite, 0, time.Now())
	require.NoError(t, err)
	l, err = ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, LevelWebsite, l)

	_, err = MintToken(nil, LevelAdmin, time.Hour, time.Now())
	assert.Error(t, err)
}

func TestParseToken_RejectsNone(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Access: int(LevelAdmin)}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, raw)
	assert.Error(t, err)
}
