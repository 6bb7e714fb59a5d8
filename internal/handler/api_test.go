package handler_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leakbox/internal/analysis"
	"leakbox/internal/handler"
	"leakbox/internal/lead"
	"leakbox/internal/llmclient"
	"leakbox/internal/server"
	"leakbox/internal/session"
	"leakbox/internal/wizard"
)

const testChannelURL = "http://pf.kakao.com/_test"

func newTestServer(t *testing.T, report, relevance *llmclient.FakeClient) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(server.NewRouter(&server.Container{
		Sessions: session.NewStore(wizard.DefaultFlow(), 16, time.Minute),
		Pipeline: &analysis.Pipeline{
			Report:           report,
			Relevance:        relevance,
			RelevanceEnabled: relevance != nil,
		},
		Hub:            handler.NewEventHub(),
		Ledger:         lead.NewLedger(lead.OpenFile(filepath.Join(t.TempDir(), "leads.json")), nil),
		ChannelURL:     testChannelURL,
		AnalyzeTimeout: 10 * time.Second,
		AdminID:        "admin",
		AdminPassword:  "secret",
	}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		out = nil
	}
	return resp.StatusCode, out
}

func jpegDataURL() string {
	magic := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(magic)
}

func reportJSON() json.RawMessage {
	return json.RawMessage(`{
		"riskScore": 72,
		"summary": "천장 배관 누수가 의심됩니다.",
		"detectionCost": "15만원 ~ 30만원",
		"repairCostInfo": "배관 교체 시 30만원 ~ 80만원",
		"overchargeThreshold": "100만원 이상이면 과잉 청구를 의심하세요.",
		"causes": [
			{"probability": "High", "title": "윗집 배관 파손", "description": "천장 얼룩 위치가 배관 경로와 일치합니다."}
		],
		"expertGuide": "방문 전 단수 후 계량기를 확인하세요.",
		"scamCheckQuestions": ["질문:탐지 장비는 무엇을 쓰나요?|위험답변:장비 없이 바로 철거하자고 함|판단근거:장비 없는 진단은 근거가 없습니다."],
		"insurance": {"probability": "Medium", "prepList": ["사진 보관"], "disclaimer": "보장 여부는 약관에 따라 다릅니다."}
	}`)
}

func stepIndex(t *testing.T, view map[string]interface{}) int {
	t.Helper()
	idx, ok := view["stepIndex"].(float64)
	require.True(t, ok, "stepIndex missing in %v", view)
	return int(idx)
}

func TestDiagnosisEndToEnd(t *testing.T) {
	report := llmclient.NewFakeClient(llmclient.FakeResponse{JSON: reportJSON()})
	relevance := llmclient.NewFakeClient(llmclient.FakeResponse{JSON: json.RawMessage(`{"isRelevant": true}`)})
	srv := newTestServer(t, report, relevance)

	status, view := doJSON(t, "POST", srv.URL+"/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, status)
	id := view["id"].(string)
	require.NotEmpty(t, id)
	base := srv.URL + "/v1/sessions/" + id

	// Safety gate: advancing before confirming every hazard check is blocked.
	status, _ = doJSON(t, "POST", base+"/advance", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = doJSON(t, "POST", base+"/answers", map[string]interface{}{"hazardChecks": []bool{true, true, true}}, "")
	require.Equal(t, http.StatusOK, status)
	status, view = doJSON(t, "POST", base+"/advance", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, stepIndex(t, view))

	// Single-select steps auto-advance.
	for i, value := range []string{"CEILING", "TODAY", "UPPER", "NONE", "APARTMENT"} {
		status, view = doJSON(t, "POST", base+"/answers", map[string]string{"value": value}, "")
		require.Equal(t, http.StatusOK, status, "answer %q", value)
		assert.Equal(t, i+2, stepIndex(t, view))
	}

	// Symptoms: toggle then explicit continue.
	status, _ = doJSON(t, "POST", base+"/answers", map[string]string{"toggle": "DRIPPING"}, "")
	require.Equal(t, http.StatusOK, status)
	status, view = doJSON(t, "POST", base+"/advance", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 7, stepIndex(t, view))

	status, view = doJSON(t, "POST", base+"/answers", map[string]string{"value": "MEDIUM"}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 8, stepIndex(t, view))

	// The note is optional.
	status, view = doJSON(t, "POST", base+"/advance", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 9, stepIndex(t, view))

	// No photos yet: analysis must not start and no model call may happen.
	status, _ = doJSON(t, "POST", base+"/analyze", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Zero(t, report.Calls())
	assert.Zero(t, relevance.Calls())

	status, view = doJSON(t, "POST", base+"/photos", map[string]string{"dataUrl": jpegDataURL()}, "")
	require.Equal(t, http.StatusOK, status)
	photos := view["answers"].(map[string]interface{})["photos"].([]interface{})
	require.Len(t, photos, 1)

	status, view = doJSON(t, "POST", base+"/analyze", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(analysis.PhaseSucceeded), view["phase"])
	assert.Equal(t, true, view["hasReport"])
	assert.Equal(t, 1, report.Calls())
	assert.Equal(t, 1, relevance.Calls())

	// Report is gated: preview only until the channel flow completes.
	status, view = doJSON(t, "GET", base+"/report", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, view["locked"])
	preview := view["preview"].(map[string]interface{})
	assert.Equal(t, float64(72), preview["riskScore"])
	assert.Nil(t, view["report"])

	// Confirming before visiting the channel is rejected.
	status, _ = doJSON(t, "POST", base+"/unlock/confirm", nil, "")
	assert.Equal(t, http.StatusConflict, status)

	status, view = doJSON(t, "POST", base+"/unlock/channel", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, testChannelURL, view["channelUrl"])

	status, _ = doJSON(t, "POST", base+"/unlock/confirm", nil, "")
	require.Equal(t, http.StatusOK, status)

	status, view = doJSON(t, "GET", base+"/report", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, view["locked"])
	full := view["report"].(map[string]interface{})
	causes := full["causes"].([]interface{})
	require.Len(t, causes, 1)
	assert.Equal(t, "High", causes[0].(map[string]interface{})["probability"])
	checklist := view["checklist"].([]interface{})
	require.Len(t, checklist, 1)
	assert.Equal(t, "탐지 장비는 무엇을 쓰나요?", checklist[0].(map[string]interface{})["question"])

	// Restart wipes the run and relocks the report.
	status, view = doJSON(t, "POST", base+"/restart", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, stepIndex(t, view))
	assert.Equal(t, false, view["hasReport"])
	status, _ = doJSON(t, "GET", base+"/report", nil, "")
	assert.Equal(t, http.StatusConflict, status)
}

func TestAnalyzeRelevanceRejectionRewindsToPhotos(t *testing.T) {
	report := llmclient.NewFakeClient()
	relevance := llmclient.NewFakeClient(llmclient.FakeResponse{JSON: json.RawMessage(`{"isRelevant": false}`)})
	srv := newTestServer(t, report, relevance)

	_, view := doJSON(t, "POST", srv.URL+"/v1/sessions", nil, "")
	base := srv.URL + "/v1/sessions/" + view["id"].(string)

	doJSON(t, "POST", base+"/answers", map[string]interface{}{"hazardChecks": []bool{true, true, true}}, "")
	doJSON(t, "POST", base+"/advance", nil, "")
	for _, value := range []string{"CEILING", "TODAY", "UPPER", "NONE", "APARTMENT"} {
		doJSON(t, "POST", base+"/answers", map[string]string{"value": value}, "")
	}
	doJSON(t, "POST", base+"/answers", map[string]string{"toggle": "MOLD"}, "")
	doJSON(t, "POST", base+"/advance", nil, "")
	doJSON(t, "POST", base+"/answers", map[string]string{"value": "SMALL"}, "")
	doJSON(t, "POST", base+"/advance", nil, "")
	doJSON(t, "POST", base+"/photos", map[string]string{"dataUrl": jpegDataURL()}, "")

	status, view := doJSON(t, "POST", base+"/analyze", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(analysis.PhaseRelevanceRejected), view["phase"])
	assert.Equal(t, analysis.MsgIrrelevantPhotos, view["failureMessage"])
	assert.Equal(t, false, view["complete"], "wizard reopens at the photo step")
	assert.Equal(t, 9, stepIndex(t, view))
	photos := view["answers"].(map[string]interface{})["photos"].([]interface{})
	assert.Len(t, photos, 1, "rejected photos stay so the user can replace them")
	assert.Zero(t, report.Calls(), "report model never called after rejection")
}

func TestLeadAndAdminFlow(t *testing.T) {
	srv := newTestServer(t, llmclient.NewFakeClient(), nil)

	status, body := doJSON(t, "POST", srv.URL+"/v1/leads", map[string]string{
		"region":  "서울 강남구",
		"phone":   "01012345678",
		"message": "상담 부탁드립니다",
	}, "")
	require.Equal(t, http.StatusCreated, status)
	leadID := body["id"].(string)
	assert.Equal(t, "010-1234-5678", body["phone"])

	status, _ = doJSON(t, "POST", srv.URL+"/v1/leads", map[string]string{"phone": "02-555-1234"}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, "POST", srv.URL+"/v1/leads", map[string]string{"region": "   ", "phone": "01012345678"}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	// Operator surface requires a login token.
	status, _ = doJSON(t, "GET", srv.URL+"/v1/admin/leads", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, "POST", srv.URL+"/v1/admin/login", map[string]string{"id": "admin", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = doJSON(t, "POST", srv.URL+"/v1/admin/login", map[string]string{"id": "admin", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, status)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	status, body = doJSON(t, "GET", srv.URL+"/v1/admin/leads", nil, token)
	require.Equal(t, http.StatusOK, status)
	leads := body["leads"].([]interface{})
	require.Len(t, leads, 1)
	assert.Equal(t, string(lead.StatusUnconfirmed), leads[0].(map[string]interface{})["status"])

	status, body = doJSON(t, "PATCH", srv.URL+"/v1/admin/leads/"+leadID, map[string]string{"status": "in_progress"}, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(lead.StatusInProgress), body["status"])

	status, body = doJSON(t, "GET", srv.URL+"/v1/admin/leads?status=in_progress", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["leads"], 1)

	status, body = doJSON(t, "GET", srv.URL+"/v1/admin/leads?status=done", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["leads"])

	status, _ = doJSON(t, "GET", srv.URL+"/v1/admin/leads?status=bogus", nil, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, "DELETE", srv.URL+"/v1/admin/leads/"+leadID, nil, token)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, "GET", srv.URL+"/v1/admin/leads", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["leads"], "soft-deleted leads hidden by default")

	status, body = doJSON(t, "GET", srv.URL+"/v1/admin/leads?includeDeleted=true", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["leads"], 1)
}

func TestSessionNavigationHistory(t *testing.T) {
	srv := newTestServer(t, llmclient.NewFakeClient(), nil)

	_, view := doJSON(t, "POST", srv.URL+"/v1/sessions", nil, "")
	base := srv.URL + "/v1/sessions/" + view["id"].(string)

	for _, v := range []string{"WIZARD", "REPORT"} {
		status, _ := doJSON(t, "POST", base+"/navigate", map[string]string{"view": v}, "")
		require.Equal(t, http.StatusOK, status)
	}

	status, body := doJSON(t, "POST", base+"/back", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "REPORT", body["view"])

	status, body = doJSON(t, "POST", base+"/back", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "WIZARD", body["view"])

	// History exhausted: every further back lands on the landing screen.
	for i := 0; i < 2; i++ {
		status, body = doJSON(t, "POST", base+"/back", nil, "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "LANDING", body["view"], "back %d", i)
	}
}

func TestRetreatAtFirstStepFallsBackToHistory(t *testing.T) {
	srv := newTestServer(t, llmclient.NewFakeClient(), nil)

	_, view := doJSON(t, "POST", srv.URL+"/v1/sessions", nil, "")
	base := srv.URL + "/v1/sessions/" + view["id"].(string)

	status, _ := doJSON(t, "POST", base+"/navigate", map[string]string{"view": "WIZARD"}, "")
	require.Equal(t, http.StatusOK, status)

	// No wizard step behind step 0, so retreat answers from the history.
	status, body := doJSON(t, "POST", base+"/retreat", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "WIZARD", body["view"])
	require.NotNil(t, body["session"])

	status, body = doJSON(t, "POST", base+"/retreat", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "LANDING", body["view"])
}

func TestUnknownSession(t *testing.T) {
	srv := newTestServer(t, llmclient.NewFakeClient(), nil)
	for _, tc := range []struct{ method, path string }{
		{"GET", "/v1/sessions/ghost"},
		{"POST", "/v1/sessions/ghost/advance"},
		{"POST", "/v1/sessions/ghost/analyze"},
		{"GET", "/v1/sessions/ghost/report"},
	} {
		status, _ := doJSON(t, tc.method, srv.URL+tc.path, nil, "")
		assert.Equal(t, http.StatusNotFound, status, "%s %s", tc.method, tc.path)
	}
}

func TestPhotoUploadOutsidePhotoStep(t *testing.T) {
	srv := newTestServer(t, llmclient.NewFakeClient(), nil)
	_, view := doJSON(t, "POST", srv.URL+"/v1/sessions", nil, "")
	base := srv.URL + "/v1/sessions/" + view["id"].(string)

	status, _ := doJSON(t, "POST", base+"/photos", map[string]string{"dataUrl": jpegDataURL()}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = doJSON(t, "POST", base+"/photos", map[string]string{"dataUrl": "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hi"))}, "")
	assert.Equal(t, http.StatusUnsupportedMediaType, status)
}
