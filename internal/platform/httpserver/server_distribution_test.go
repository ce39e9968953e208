package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	distributionhttp "agentdesk/contexts/list-distribution/distribution-service/transport/http"
	"agentdesk/internal/platform/metrics"
)

func uploadRequest(t *testing.T, token string, fileName string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/lists/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return authorized(req, token)
}

func contactsCSV(n int) []byte {
	var b strings.Builder
	b.WriteString("FirstName,Phone,Notes\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "name-%d,+1555000%04d,note %d\n", i, i, i)
	}
	return []byte(b.String())
}

func TestUploadDistributesAndExports(t *testing.T) {
	env := newTestServer(t, Options{})
	env.seedAgents(t, 6)
	token := env.login(t, testAdminEmail, testAdminPassword)

	rr := env.do(uploadRequest(t, token, "leads.csv", contactsCSV(7)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var uploaded distributionhttp.UploadListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	batch := uploaded.Batch
	if batch.TotalItems != 7 || len(batch.Shares) != 5 {
		t.Fatalf("unexpected batch totals %+v", batch)
	}
	wantAgents := []string{"agent_6", "agent_5", "agent_4", "agent_3", "agent_2"}
	wantSizes := []int{2, 2, 1, 1, 1}
	for i, share := range batch.Shares {
		if share.AgentID != wantAgents[i] || share.RecordCount != wantSizes[i] {
			t.Fatalf("share %d: expected %s/%d, got %s/%d", i, wantAgents[i], wantSizes[i], share.AgentID, share.RecordCount)
		}
	}
	if batch.Shares[0].Items[0].FirstName != "name-1" || batch.Shares[4].Items[0].FirstName != "name-7" {
		t.Fatalf("records not assigned in file order %+v", batch.Shares)
	}

	rr = env.do(authorized(httptest.NewRequest(http.MethodGet, "/api/lists/distributed", nil), token))
	var listed distributionhttp.ListBatchesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listed.Pagination.Total != 1 || listed.Pagination.Page != 1 || listed.Pagination.Limit != 10 || listed.Pagination.Pages != 1 {
		t.Fatalf("unexpected pagination %+v", listed.Pagination)
	}
	if len(listed.Items) != 1 || listed.Items[0].BatchID != batch.BatchID {
		t.Fatalf("unexpected list items %+v", listed.Items)
	}

	rr = env.do(authorized(httptest.NewRequest(http.MethodGet, "/api/lists/distributed/"+batch.BatchID, nil), token))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = env.do(authorized(httptest.NewRequest(http.MethodGet, "/api/lists/distributed/"+batch.BatchID+"/export", nil), token))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on export, got %d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "leads.csv_distributed.csv") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 8 || strings.TrimSpace(lines[0]) != "AgentID,Agent,FirstName,Phone,Notes" {
		t.Fatalf("unexpected export body %q", rr.Body.String())
	}

	rr = env.do(authorized(httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil), token))
	var summary distributionhttp.DashboardSummaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.AgentCount != 6 || summary.BatchCount != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestUploadRejections(t *testing.T) {
	cases := []struct {
		name     string
		agents   int
		fileName string
		content  []byte
		status   int
		code     string
	}{
		{name: "unsupported type", agents: 5, fileName: "leads.pdf", content: contactsCSV(3), status: http.StatusBadRequest, code: "unsupported_file_type"},
		{name: "no valid rows", agents: 5, fileName: "leads.csv", content: []byte("FirstName,Phone\n,\n"), status: http.StatusBadRequest, code: "empty_result"},
		{name: "not enough agents", agents: 3, fileName: "leads.csv", content: contactsCSV(3), status: http.StatusBadRequest, code: "insufficient_agents"},
		{name: "too large", agents: 5, fileName: "leads.csv", content: contactsCSV(40), status: http.StatusRequestEntityTooLarge, code: "file_too_large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestServer(t, Options{MaxUploadBytes: 512})
			env.seedAgents(t, tc.agents)
			token := env.login(t, testAdminEmail, testAdminPassword)

			rr := env.do(uploadRequest(t, token, tc.fileName, tc.content))
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d body=%s", tc.status, rr.Code, rr.Body.String())
			}
			if got := decodeError(t, rr).Code; got != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, got)
			}
		})
	}
}

func TestUploadRequiresFileField(t *testing.T) {
	env := newTestServer(t, Options{})
	token := env.login(t, testAdminEmail, testAdminPassword)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("note", "no file here")
	_ = writer.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/lists/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := env.do(authorized(req, token))
	if rr.Code != http.StatusBadRequest || decodeError(t, rr).Code != "file_required" {
		t.Fatalf("expected file_required, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAgentCannotUpload(t *testing.T) {
	env := newTestServer(t, Options{})
	env.seedAgents(t, 5)
	token := env.login(t, "agent1@example.com", testAgentPassword)

	rr := env.do(uploadRequest(t, token, "leads.csv", contactsCSV(3)))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestListBatchesValidatesPagination(t *testing.T) {
	env := newTestServer(t, Options{})
	token := env.login(t, testAdminEmail, testAdminPassword)

	for _, query := range []string{"?limit=abc", "?page=-1", "?limit=101"} {
		rr := env.do(authorized(httptest.NewRequest(http.MethodGet, "/api/lists/distributed"+query, nil), token))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", query, rr.Code, rr.Body.String())
		}
	}
}

func TestGetUnknownBatch(t *testing.T) {
	env := newTestServer(t, Options{})
	token := env.login(t, testAdminEmail, testAdminPassword)

	rr := env.do(authorized(httptest.NewRequest(http.MethodGet, "/api/lists/distributed/missing", nil), token))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = env.do(authorized(httptest.NewRequest(http.MethodGet, "/api/lists/distributed/missing/export", nil), token))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on export, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	env := newTestServer(t, Options{Metrics: metrics.NewRegistry("agentdesk")})
	env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rr := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `agentdesk_http_requests_total{method="GET",route="/healthz",status="200"} 1`) {
		t.Fatalf("expected healthz request counter in %s", rr.Body.String())
	}
}
