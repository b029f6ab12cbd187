// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/forge/api/restutil"
	"github.com/questforge/forge/builtin"
	"github.com/questforge/forge/forge"
	"github.com/questforge/forge/log"
	"github.com/questforge/forge/metrics"
	"github.com/questforge/forge/test/testchain"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func newServer(t *testing.T) (*httptest.Server, *testchain.Chain, *testchain.Scenario) {
	chain, err := testchain.NewDefault()
	require.NoError(t, err)
	scenario, err := chain.SeedScenario()
	require.NoError(t, err)

	handler, closeSubs := New(chain.Runtime(), chain.LogDB(), Options{
		AllowedOrigins: "*",
		BacktraceLimit: 100,
		LogsLimit:      100,
		EnableMetrics:  true,
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		ts.Close()
		closeSubs()
		chain.Close()
	})
	return ts, chain, scenario
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func getJSON(t *testing.T, url string) restutil.M {
	body, code := httpGet(t, url)
	require.Equal(t, http.StatusOK, code, string(body))
	var m restutil.M
	require.NoError(t, json.Unmarshal(body, &m))
	return m
}

func TestQuestRoutes(t *testing.T) {
	ts, _, s := newServer(t)

	body, code := httpGet(t, ts.URL+"/quests")
	require.Equal(t, http.StatusOK, code)
	var list []restutil.M
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, s.Quest.String(), list[0]["address"])
	assert.Equal(t, "active", list[0]["status"])

	body, code = httpGet(t, ts.URL+"/quests?creator="+s.User.String())
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]\n", string(body))

	detail := getJSON(t, ts.URL+"/quests/"+s.Quest.String())
	assert.Equal(t, "Run a marathon", detail["config"].(map[string]any)["title"])
	assert.Equal(t, s.Creator.String(), detail["record"].(map[string]any)["creator"])
	assert.Len(t, detail["milestones"], 1)

	p := getJSON(t, ts.URL+"/quests/"+s.Quest.String()+"/participants/"+s.User.String())
	assert.Equal(t, "completed", p["status"])

	sub := getJSON(t, ts.URL+"/quests/"+s.Quest.String()+"/submissions/"+s.Submission.String())
	assert.Equal(t, s.User.String(), sub["submitter"])

	_, code = httpGet(t, ts.URL+"/quests/"+forge.BytesToAddress([]byte("nobody")).String())
	assert.Equal(t, http.StatusNotFound, code)
	_, code = httpGet(t, ts.URL+"/quests/0x12")
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpGet(t, ts.URL+"/quests/"+s.Quest.String()+"/participants/"+s.Validator.String())
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLedgerRoutes(t *testing.T) {
	ts, _, s := newServer(t)

	p := getJSON(t, ts.URL+"/quests/"+s.Quest.String()+"/participants/"+s.User.String())
	stake := getJSON(t, ts.URL+"/ledger/stakes/"+p["stakeId"].(string))
	assert.Equal(t, s.User.String(), stake["owner"])
	assert.Equal(t, s.Quest.String(), stake["quest"])
	assert.Equal(t, false, stake["active"], "released on completion")

	pool := getJSON(t, ts.URL+"/ledger/pools/"+s.Quest.String())
	assert.Equal(t, s.Quest.String(), pool["quest"])
	assert.Equal(t, true, pool["managed"])

	claim := getJSON(t, ts.URL+"/ledger/claims/"+forge.NativeAsset.String()+"/"+s.User.String())
	assert.Equal(t, s.User.String(), claim["owner"])
	assert.Equal(t, float64(0), claim["claimable"])

	pool = getJSON(t, ts.URL+"/ledger/pools/"+builtin.Oracle.Address.String())
	assert.Equal(t, true, pool["managed"])

	totals := getJSON(t, ts.URL+"/ledger/totals/"+forge.NativeAsset.String())
	assert.Equal(t, true, totals["supported"])
	assert.NotNil(t, totals["totals"])

	_, code := httpGet(t, ts.URL+"/ledger/stakes/"+forge.Bytes32{}.String())
	assert.Equal(t, http.StatusNotFound, code)
	_, code = httpGet(t, ts.URL+"/ledger/stakes")
	assert.Equal(t, http.StatusBadRequest, code)

	body, code := httpGet(t, ts.URL+"/ledger/stakes?owner="+s.Validator.String())
	assert.Equal(t, http.StatusOK, code)
	var stakes []restutil.M
	require.NoError(t, json.Unmarshal(body, &stakes))
	assert.NotNil(t, stakes)
}

func TestOracleRoutes(t *testing.T) {
	ts, _, s := newServer(t)

	v := getJSON(t, ts.URL+"/oracle/validators/"+s.Validator.String())
	assert.Equal(t, "active", v["status"])
	assert.Equal(t, s.Validator.String(), v["address"])
	assert.NotNil(t, v["votingPower"])

	ev := getJSON(t, ts.URL+"/oracle/evidence/"+s.Submission.String())
	assert.Equal(t, "approved", ev["status"])
	require.Len(t, ev["votes"], 1)
	assert.Nil(t, ev["dispute"])

	body, code := httpGet(t, ts.URL+"/oracle/validators")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), s.Validator.String())

	body, code = httpGet(t, ts.URL+"/oracle/evidence")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]\n", string(body), "nothing left pending")

	_, code = httpGet(t, ts.URL+"/oracle/disputes/"+s.Submission.String())
	assert.Equal(t, http.StatusNotFound, code)
	_, code = httpGet(t, ts.URL+"/oracle/validators/"+s.User.String())
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBlockRoutes(t *testing.T) {
	ts, chain, _ := newServer(t)

	best := getJSON(t, ts.URL+"/blocks/best")
	assert.Equal(t, float64(chain.Runtime().Best().Number), best["number"])

	genesis := getJSON(t, ts.URL+"/blocks/0?expanded=true")
	assert.Equal(t, chain.Genesis().ID().String(), genesis["header"].(map[string]any)["id"])
	assert.NotEmpty(t, genesis["receipts"])

	body, code := httpGet(t, ts.URL+"/blocks/1000")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "null\n", string(body))

	_, code = httpGet(t, ts.URL+"/blocks/0?expanded=1")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLogRoutes(t *testing.T) {
	ts, _, s := newServer(t)

	filter := strings.NewReader(`{"criteriaSet":[{"address":"` + s.Quest.String() + `","name":"ParticipantCompleted"}],"options":{"limit":10,"includeIndexes":true}}`)
	res, err := http.Post(ts.URL+"/logs/event", "application/json", filter)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var events []restutil.M
	require.NoError(t, json.NewDecoder(res.Body).Decode(&events))
	require.Len(t, events, 1)
	meta := events[0]["meta"].(map[string]any)
	assert.Equal(t, s.Validator.String(), meta["txOrigin"])
	assert.NotNil(t, meta["logIndex"])

	res, err = http.Post(ts.URL+"/logs/event", "application/json", strings.NewReader(`{"options":{"limit":1000}}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, err = http.Post(ts.URL+"/logs/event", "application/json", strings.NewReader(`{"unknown":1}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestMetricsMiddleware(t *testing.T) {
	ts, _, s := newServer(t)

	httpGet(t, ts.URL+"/quests/"+s.Quest.String())
	httpGet(t, ts.URL+"/quests/0x12")

	body, _ := httpGet(t, ts.URL+"/metrics")
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)

	family, ok := families["forge_api_request_count"]
	require.True(t, ok)
	codes := map[string]bool{}
	for _, m := range family.GetMetric() {
		labels := map[string]string{}
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		if labels["name"] == "GET /quests/{address}" {
			codes[labels["code"]] = true
		}
	}
	assert.True(t, codes["200"])
	assert.True(t, codes["400"])
}

func TestRequestLogger(t *testing.T) {
	out, restore := log.Capture()
	defer restore()

	enabled := &atomic.Bool{}
	handler := RequestLoggerMiddleware(logger, enabled, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))

	serve := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/logs/event", strings.NewReader(`{"order":"desc"}`))
		if id != "" {
			req.Header.Set(requestIDHeader, id)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := serve("")
	assert.Empty(t, rec.Header().Get(requestIDHeader), "disabled logger is a pass through")
	assert.NotContains(t, out.String(), "API Request")

	enabled.Store(true)
	rec = serve("")
	assert.Equal(t, `{"order":"desc"}`, rec.Body.String(), "the body reaches the handler")
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)
	assert.Contains(t, out.String(), "API Request")

	id := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	rec = serve(id)
	assert.Equal(t, id, rec.Header().Get(requestIDHeader))
}
