package api

import (
	"appliance-intake-service/internal/adapters/geocode"
	"appliance-intake-service/internal/adapters/history"
	"appliance-intake-service/internal/adapters/repositories"
	"appliance-intake-service/internal/api/dto"
	"appliance-intake-service/internal/api/handlers"
	"appliance-intake-service/internal/domain"
	"appliance-intake-service/internal/platform/db"
	"appliance-intake-service/internal/services"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompany = "인천 서구 청마로34번길 32-9"
	adminToken  = "s3cret"
)

type testServer struct {
	handler  http.Handler
	geocoder *geocode.MockGeocoder
	intakes  *repositories.SqliteIntakeRepository
}

func newTestServer(t *testing.T, rps float64, burst int, opts ...func(*Deps)) *testServer {
	t.Helper()

	conn, err := db.OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(conn))

	g := geocode.NewMockGeocoder([]geocode.MockPlace{
		{Address: testCompany, X: 126.6734, Y: 37.5219, Label: testCompany},
		{Address: "서울 강남구 역삼동", X: 127.0366, Y: 37.5006, Label: "서울 강남구 역삼동"},
		{Address: "제주 한라산", X: 126.53, Y: 33.36, Label: "제주특별자치도 제주시 한라산"},
	})
	g.Fail("부산", &domain.UpstreamError{Op: "kakao address search", Kind: domain.UpstreamStatus, Status: 500})

	store := history.NewMemoryStore()
	repo := repositories.NewSqliteIntakeRepository(conn)
	resolver := services.NewResolver(g, store, repo, domain.DefaultNavigationConfig(), services.ResolverOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>intake</h1>"), 0o644))

	deps := Deps{
		Geocoder:       g,
		Resolver:       resolver,
		History:        store,
		Intakes:        repo,
		StaticDir:      static,
		AdminToken:     adminToken,
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testServer{
		handler:  NewRouter(deps),
		geocoder: g,
		intakes:  repo,
	}
}

func (s *testServer) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 0, 0)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestGeocodeEndpoint(t *testing.T) {
	s := newTestServer(t, 0, 0)

	tests := []struct {
		name     string
		address  string
		wantCode int
		wantBody string
	}{
		{"hit", "서울 강남구 역삼동", http.StatusOK, `{"x":127.0366,"y":37.5006,"address_name":"서울 강남구 역삼동"}`},
		{"empty", "  ", http.StatusBadRequest, `{"error":"주소를 입력해주세요."}`},
		{"not found", "없는곳", http.StatusNotFound, `{"error":"검색 결과가 없습니다. 주소를 더 정확히 입력해주세요."}`},
		{"upstream failure", "부산", http.StatusInternalServerError, `{"error":"서버 에러가 발생했습니다."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/geocode?address="+url.QueryEscape(tt.address), nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestGeocodeEndpointMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, 0, 0)

	rec := s.do(t, httptest.NewRequest(http.MethodPost, "/api/geocode?address=x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestGeocodeEndpointRateLimited(t *testing.T) {
	s := newTestServer(t, 0.001, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/geocode?address="+url.QueryEscape("서울 강남구 역삼동"), nil)
		req.RemoteAddr = "203.0.113.7:5555"
		codes = append(codes, s.do(t, req).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodGet, "/api/geocode?address="+url.QueryEscape("서울 강남구 역삼동"), nil)
	other.RemoteAddr = "198.51.100.1:5555"
	assert.Equal(t, http.StatusOK, s.do(t, other).Code, "limits are per client IP")
}

func TestGeocodeEndpointIgnoresForwardedForByDefault(t *testing.T) {
	s := newTestServer(t, 0.001, 1)

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/geocode?address="+url.QueryEscape("서울 강남구 역삼동"), nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		codes = append(codes, s.do(t, req).Code)
	}
	assert.Equal(t, []int{
		http.StatusOK,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes, "a rotating X-Forwarded-For must not reset the peer's bucket")
}

func TestGeocodeEndpointTrustedProxyUsesForwardedFor(t *testing.T) {
	s := newTestServer(t, 0.001, 1, func(d *Deps) { d.TrustProxy = true })

	codes := make([]int, 0, 3)
	for _, client := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/geocode?address="+url.QueryEscape("서울 강남구 역삼동"), nil)
		req.RemoteAddr = "192.0.2.10:443"
		req.Header.Set("X-Forwarded-For", client)
		codes = append(codes, s.do(t, req).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestIntakeSearchInService(t *testing.T) {
	s := newTestServer(t, 0, 0)

	rec := s.do(t, jsonRequest(http.MethodPost, "/api/intake/search", `{"q":"서울 강남구 역삼동","type":"gas"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.IntakeResponse](t, rec)
	assert.Equal(t, "in_service", res.Status)
	assert.True(t, res.Opened)
	assert.True(t, strings.HasPrefix(res.OpenURL, "https://map.naver.com/v5/directions/126.6734,37.5219,"))
	assert.Equal(t, "installation_gas.html?q="+domain.EncodeComponent("서울 강남구 역삼동")+"&type=gas&inService=1", res.NavigateTo)
	assert.Equal(t, res.NavigateTo, res.NextURL)
	require.Len(t, res.Actions, 2)
	assert.Equal(t, "open", res.Actions[0].Kind)

	sid := cookieNamed(rec, handlers.SessionCookie)
	require.NotNil(t, sid)
	assert.True(t, sid.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, sid.SameSite)
	ct := cookieNamed(rec, handlers.ConsultTypeCookie)
	require.NotNil(t, ct)
	assert.Equal(t, "gas", ct.Value)

	hist := s.do(t, httptest.NewRequest(http.MethodGet, "/api/history", nil), sid)
	require.Equal(t, http.StatusOK, hist.Code)
	entries := decode[dto.HistoryResponse](t, hist).Entries
	require.Len(t, entries, 2)
	assert.Equal(t, "지역(서비스내): 서울 강남구 역삼동", entries[0].Label)
	assert.Equal(t, "다음단계 이동: 서울 강남구 역삼동", entries[1].Label)
}

func TestIntakeSearchFormPopupRefused(t *testing.T) {
	s := newTestServer(t, 0, 0)

	form := url.Values{"q": {"서울 강남구 역삼동"}, "popup": {"false"}}
	req := httptest.NewRequest(http.MethodPost, "/api/intake/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// The consultation type comes from the remembered cookie.
	rec := s.do(t, req, &http.Cookie{Name: handlers.ConsultTypeCookie, Value: "boiler"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.IntakeResponse](t, rec)
	assert.False(t, res.Opened)
	assert.Empty(t, res.OpenURL)
	assert.True(t, strings.HasPrefix(res.NavigateTo, "https://map.naver.com/v5/directions/"))
	assert.Equal(t, "installation_boiler.html?q="+domain.EncodeComponent("서울 강남구 역삼동")+"&type=boiler&inService=1", res.NextURL)
}

func TestIntakeSearchOutOfService(t *testing.T) {
	s := newTestServer(t, 0, 0)

	rec := s.do(t, jsonRequest(http.MethodPost, "/api/intake/search", `{"q":"제주 한라산","type":"dryer"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[dto.IntakeResponse](t, rec)
	assert.Equal(t, "out_of_service", res.Status)
	assert.Equal(t, "connection.html?q="+domain.EncodeComponent("제주 한라산")+"&type=dryer&inService=0", res.NavigateTo)
	assert.Empty(t, res.OpenURL)
}

func TestIntakeSearchErrors(t *testing.T) {
	s := newTestServer(t, 0, 0)

	rec := s.do(t, jsonRequest(http.MethodPost, "/api/intake/search", `{"q":"   "}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.EmptyInputPrompt, decode[map[string]string](t, rec)["error"])

	rec = s.do(t, jsonRequest(http.MethodPost, "/api/intake/search", `{"q":"부산"}`))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.True(t, strings.HasPrefix(decode[map[string]string](t, rec)["error"], "처리 중 오류가 발생했어요.\n"))

	rec = s.do(t, jsonRequest(http.MethodPost, "/api/intake/search", `{"q":"서울","bogus":1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/intake/search", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestIntakeSearchEmptyInputLeavesNoCookies(t *testing.T) {
	s := newTestServer(t, 0, 0)

	rec := s.do(t, jsonRequest(http.MethodPost, "/api/intake/search", `{"q":" \t ","type":"boiler"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.EmptyInputPrompt, decode[map[string]string](t, rec)["error"])
	assert.Empty(t, rec.Result().Cookies(), "a rejected search must not issue a session or remember the type")
	assert.Empty(t, s.geocoder.Calls())
}

func TestIntakeSkip(t *testing.T) {
	s := newTestServer(t, 0, 0)

	rec := s.do(t, jsonRequest(http.MethodPost, "/api/intake/skip", `{"type":"elec"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[dto.IntakeResponse](t, rec)
	assert.Equal(t, "skipped", res.Status)
	assert.Equal(t, "installation_elec.html?skipMap=1&type=elec", res.NavigateTo)
	assert.Empty(t, s.geocoder.Calls())
}

func TestHistoryEndpoint(t *testing.T) {
	s := newTestServer(t, 0, 0)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())
	assert.Nil(t, cookieNamed(rec, handlers.SessionCookie), "reading history does not issue a session")

	rec = s.do(t, jsonRequest(http.MethodPost, "/api/history", `{"label":"보일러 상담","url":"installation_boiler.html"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	sid := cookieNamed(rec, handlers.SessionCookie)
	require.NotNil(t, sid)
	assert.Len(t, decode[dto.HistoryResponse](t, rec).Entries, 1)

	rec = s.do(t, jsonRequest(http.MethodPost, "/api/history", `{"label":" ","url":"x"}`), sid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/history", nil), sid)
	entries := decode[dto.HistoryResponse](t, rec).Entries
	require.Len(t, entries, 1)
	assert.Equal(t, "보일러 상담", entries[0].Label)
	assert.NotZero(t, entries[0].TS)

	rec = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/history", nil), sid)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/history", nil), sid)
	assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())

	rec = s.do(t, httptest.NewRequest(http.MethodPut, "/api/history", nil), sid)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIntakesAdmin(t *testing.T) {
	s := newTestServer(t, 0, 0)

	s.do(t, jsonRequest(http.MethodPost, "/api/intake/search", `{"q":"제주 한라산"}`))
	s.do(t, jsonRequest(http.MethodPost, "/api/intake/search", `{"q":"서울 강남구 역삼동"}`))

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/intakes", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/intakes?limit=10", nil)
	req.Header.Set(handlers.AdminTokenHeader, adminToken)
	rec = s.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[dto.ListIntakesResponse](t, rec)
	require.Len(t, res.Intakes, 2)
	outcomes := []string{res.Intakes[0].Outcome, res.Intakes[1].Outcome}
	assert.ElementsMatch(t, []string{"in_service", "out_of_service"}, outcomes)

	bad := httptest.NewRequest(http.MethodGet, "/api/intakes?limit=zero", nil)
	bad.Header.Set(handlers.AdminTokenHeader, adminToken)
	assert.Equal(t, http.StatusBadRequest, s.do(t, bad).Code)
}

func TestStaticFiles(t *testing.T) {
	s := newTestServer(t, 0, 0)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	// FileServer redirects /index.html to /.
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "intake")
}
