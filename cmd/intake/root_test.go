package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeProxy(t *testing.T) *httptest.Server {
	t.Helper()

	places := map[string]map[string]any{
		"인천 서구 청마로34번길 32-9": {"x": "126.6734", "y": "37.5219", "address_name": "인천 서구 청마로34번길 32-9"},
		"수원시 팔달구":            {"x": "127.0196", "y": "37.2829", "address_name": "경기 수원시 팔달구"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := places[r.URL.Query().Get("address")]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "검색 결과가 없습니다."})
			return
		}
		_ = json.NewEncoder(w).Encode(p)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSearchInService(t *testing.T) {
	srv := fakeProxy(t)

	out, err := execute(t, "search", "--server", srv.URL, "--type", "boiler", "수원시", "팔달구")
	require.NoError(t, err)

	assert.Contains(t, out, "outcome: in_service")
	assert.Contains(t, out, "matched: 수원")
	assert.Contains(t, out, "open: https://map.naver.com/v5/directions/126.6734,37.5219,")
	assert.Contains(t, out, "navigate: installation_boiler.html?q=")
	assert.Contains(t, out, "history: 지역(서비스내): 수원시 팔달구")
}

func TestSearchPopupRefused(t *testing.T) {
	srv := fakeProxy(t)

	out, err := execute(t, "search", "--server", srv.URL, "--popup=false", "수원시 팔달구")
	require.NoError(t, err)

	assert.Contains(t, out, "navigate: https://map.naver.com/v5/directions/")
	assert.Contains(t, out, "then: installation_gas2.html?q=")
}

func TestSearchOutOfService(t *testing.T) {
	srv := fakeProxy(t)

	out, err := execute(t, "search", "--server", srv.URL, "제주")
	require.NoError(t, err)
	assert.Contains(t, out, "outcome: out_of_service")
	assert.Contains(t, out, "navigate: connection.html?q=%EC%A0%9C%EC%A3%BC&type=&inService=0")
}

func TestSkip(t *testing.T) {
	out, err := execute(t, "skip", "--server", "http://127.0.0.1:1", "--type", "sash")
	require.NoError(t, err)
	assert.Contains(t, out, "navigate: installation_sash.html?skipMap=1&type=sash")
	assert.Contains(t, out, "history: 지도 검색 건너뜀")
}

func TestGeocode(t *testing.T) {
	srv := fakeProxy(t)

	out, err := execute(t, "geocode", "--server", srv.URL, "수원시 팔달구")
	require.NoError(t, err)
	assert.Equal(t, "127.0196,37.2829\t경기 수원시 팔달구\n", out)

	out, err = execute(t, "geocode", "--server", srv.URL, "없는곳")
	require.NoError(t, err)
	assert.Equal(t, "no match\n", out)
}

func TestSearchEmptyInput(t *testing.T) {
	_, err := execute(t, "search", "--server", "http://127.0.0.1:1", "  ")
	assert.Error(t, err)
}
