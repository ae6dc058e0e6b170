package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RichoDemus/payments-engine/pkg/engine"
	"go.uber.org/zap"
)

type accountEnvelope struct {
	Account accountResponse `json:"account"`
}

type accountsEnvelope struct {
	Accounts []accountResponse `json:"accounts"`
}

func newTestServer(test *testing.T) *httptest.Server {
	test.Helper()
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		test.Fatalf("config: %v", err)
	}
	server := NewServer(engine.NewEngine(), zap.NewNop())
	testServer := httptest.NewServer(server.Router(cfg))
	test.Cleanup(testServer.Close)
	return testServer
}

func postTransaction(test *testing.T, server *httptest.Server, payload map[string]any) *http.Response {
	test.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		test.Fatalf("marshal: %v", err)
	}
	response, err := http.Post(server.URL+"/v1/transactions", "application/json", bytes.NewReader(body))
	if err != nil {
		test.Fatalf("post: %v", err)
	}
	return response
}

func decodeBody[T any](test *testing.T, response *http.Response) T {
	test.Helper()
	defer response.Body.Close()
	var decoded T
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		test.Fatalf("decode: %v", err)
	}
	return decoded
}

func TestSubmitDepositAndFetchAccount(test *testing.T) {
	server := newTestServer(test)

	response := postTransaction(test, server, map[string]any{
		"type": "deposit", "client": 1, "tx": 1, "amount": "5.0",
	})
	if response.StatusCode != http.StatusAccepted {
		test.Fatalf("expected 202, got %d", response.StatusCode)
	}
	envelope := decodeBody[accountEnvelope](test, response)
	if envelope.Account.Available != "5.0000" || envelope.Account.Total != "5.0000" {
		test.Fatalf("unexpected account after deposit: %+v", envelope.Account)
	}

	getResponse, err := http.Get(server.URL + "/v1/accounts/1")
	if err != nil {
		test.Fatalf("get: %v", err)
	}
	if getResponse.StatusCode != http.StatusOK {
		test.Fatalf("expected 200, got %d", getResponse.StatusCode)
	}
	fetched := decodeBody[accountEnvelope](test, getResponse)
	if fetched.Account.Client != 1 || fetched.Account.Held != "0.0000" || fetched.Account.Locked {
		test.Fatalf("unexpected fetched account: %+v", fetched.Account)
	}
}

func TestRuleViolationsAreAcceptedWithoutStateChange(test *testing.T) {
	server := newTestServer(test)

	postTransaction(test, server, map[string]any{"type": "deposit", "client": 1, "tx": 1, "amount": "5.0"}).Body.Close()

	// Overdraw: accepted at the HTTP boundary, ignored by the engine.
	response := postTransaction(test, server, map[string]any{"type": "withdrawal", "client": 1, "tx": 2, "amount": "9.0"})
	if response.StatusCode != http.StatusAccepted {
		test.Fatalf("expected 202, got %d", response.StatusCode)
	}
	envelope := decodeBody[accountEnvelope](test, response)
	if envelope.Account.Available != "5.0000" {
		test.Fatalf("expected unchanged balance, got %+v", envelope.Account)
	}
}

func TestDisputeLifecycleOverHTTP(test *testing.T) {
	server := newTestServer(test)

	postTransaction(test, server, map[string]any{"type": "deposit", "client": 1, "tx": 1, "amount": "5.0"}).Body.Close()
	response := postTransaction(test, server, map[string]any{"type": "dispute", "client": 1, "tx": 1})
	envelope := decodeBody[accountEnvelope](test, response)
	if envelope.Account.Available != "0.0000" || envelope.Account.Held != "5.0000" {
		test.Fatalf("unexpected account after dispute: %+v", envelope.Account)
	}

	response = postTransaction(test, server, map[string]any{"type": "chargeback", "client": 1, "tx": 1})
	envelope = decodeBody[accountEnvelope](test, response)
	if envelope.Account.Total != "0.0000" || !envelope.Account.Locked {
		test.Fatalf("expected frozen empty account, got %+v", envelope.Account)
	}
}

func TestListAccountsSortedByClient(test *testing.T) {
	server := newTestServer(test)

	postTransaction(test, server, map[string]any{"type": "deposit", "client": 2, "tx": 1, "amount": "2.0"}).Body.Close()
	postTransaction(test, server, map[string]any{"type": "deposit", "client": 1, "tx": 2, "amount": "1.0"}).Body.Close()

	response, err := http.Get(server.URL + "/v1/accounts")
	if err != nil {
		test.Fatalf("get: %v", err)
	}
	envelope := decodeBody[accountsEnvelope](test, response)
	if len(envelope.Accounts) != 2 {
		test.Fatalf("expected 2 accounts, got %d", len(envelope.Accounts))
	}
	if envelope.Accounts[0].Client != 1 || envelope.Accounts[1].Client != 2 {
		test.Fatalf("expected accounts sorted by client, got %+v", envelope.Accounts)
	}
}

func TestRejectsMalformedRequests(test *testing.T) {
	server := newTestServer(test)
	testCases := []struct {
		name    string
		payload map[string]any
	}{
		{name: "unknown type", payload: map[string]any{"type": "transfer", "client": 1, "tx": 1, "amount": "1.0"}},
		{name: "missing amount", payload: map[string]any{"type": "deposit", "client": 1, "tx": 1}},
		{name: "bad amount", payload: map[string]any{"type": "deposit", "client": 1, "tx": 1, "amount": "ten"}},
		{name: "negative amount", payload: map[string]any{"type": "deposit", "client": 1, "tx": 1, "amount": "-1.0"}},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			response := postTransaction(test, server, testCase.payload)
			defer response.Body.Close()
			if response.StatusCode != http.StatusBadRequest {
				test.Fatalf("expected 400, got %d", response.StatusCode)
			}
		})
	}
}

func TestUnknownAccountReturns404(test *testing.T) {
	server := newTestServer(test)
	response, err := http.Get(fmt.Sprintf("%s/v1/accounts/%d", server.URL, 42))
	if err != nil {
		test.Fatalf("get: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusNotFound {
		test.Fatalf("expected 404, got %d", response.StatusCode)
	}
}
