package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/heronbank/account-service/internal/cqrs"
	"github.com/heronbank/account-service/internal/models"
)

// ---- mock implementations ----

type mockAccountCommander struct {
	createFn   func(cqrs.CreateAccountCommand) (*models.Account, error)
	updateFn   func(cqrs.UpdateAccountCommand) (*models.Account, error)
	deleteFn   func(cqrs.DeleteAccountCommand) error
	transferFn func(cqrs.TransferCommand) (*models.Account, error)
}

func (m *mockAccountCommander) CreateAccount(_ context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockAccountCommander) UpdateAccount(_ context.Context, cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
	if m.updateFn != nil {
		return m.updateFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockAccountCommander) DeleteAccount(_ context.Context, cmd cqrs.DeleteAccountCommand) error {
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return fmt.Errorf("not configured")
}
func (m *mockAccountCommander) Transfer(_ context.Context, cmd cqrs.TransferCommand) (*models.Account, error) {
	if m.transferFn != nil {
		return m.transferFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockAccountQuerier struct {
	getFn  func(cqrs.GetAccountQuery) (*models.AccountView, error)
	listFn func(cqrs.ListAccountsQuery) ([]models.AccountView, error)
}

func (m *mockAccountQuerier) GetAccount(_ context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockAccountQuerier) ListAccounts(_ context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func newAccountTestRouter(cmds AccountCommander, qrys AccountQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAccountHandler(cmds, qrys)
	v1 := r.Group("/v1/accounts")
	v1.POST("", h.CreateAccount)
	v1.GET("", h.ListAccounts)
	v1.GET("/:id", h.GetAccount)
	v1.PUT("/:id", h.UpdateAccount)
	v1.DELETE("/:id", h.DeleteAccount)
	v1.POST("/:id/payee/:payeeId", h.Transfer)
	return r
}

func acctDoRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- test data ----

var aTestAccount = &models.Account{
	ID: 1, Name: "Jessica Abigail", Currency: "EUR",
	Balance: decimal.NewFromInt(5000), Treasury: false,
	CreatedAt: time.Now(), UpdatedAt: time.Now(),
}

var aTestAccountView = &models.AccountView{
	ID: 1, Name: "Jessica Abigail", Currency: "EUR",
	Balance: decimal.NewFromInt(5000), Treasury: false,
	CreatedAt: time.Now(), UpdatedAt: time.Now(),
}

func aValidCreateBody() map[string]interface{} {
	return map[string]interface{}{"name": "Jessica Abigail", "currency": "EUR", "balance": 5000, "treasury": false}
}

func aValidUpdateBody(id int64) map[string]interface{} {
	return map[string]interface{}{"id": id, "name": "Jessica A.", "currency": "EUR", "balance": 4000, "treasury": false}
}

func aValidTransferBody(origin, payee int64, amount int64) map[string]interface{} {
	return map[string]interface{}{"origin": origin, "payee": payee, "amountToTransfer": amount}
}

// ---- tests ----

func TestCreateAccountHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(cqrs.CreateAccountCommand) (*models.Account, error)
		expectedStatus int
	}{
		{
			name:           "created - valid account",
			body:           aValidCreateBody(),
			createFn:       func(cmd cqrs.CreateAccountCommand) (*models.Account, error) { return aTestAccount, nil },
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - missing required fields",
			body:           map[string]interface{}{"balance": 100},
			createFn:       nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - treasury flag not set",
			body:           map[string]interface{}{"name": "A", "currency": "EUR", "balance": 100},
			createFn:       nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - negative balance on non-treasury account",
			body: aValidCreateBody(),
			createFn: func(cmd cqrs.CreateAccountCommand) (*models.Account, error) {
				return nil, models.NewPolicyViolation("treasury profile not allowed to create account with negative balance")
			},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockAccountCommander{createFn: tt.createFn}
			router := newAccountTestRouter(cmds, &mockAccountQuerier{})
			w := acctDoRequest(router, http.MethodPost, "/v1/accounts", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListAccountsHandler(t *testing.T) {
	views := []models.AccountView{*aTestAccountView}
	listFn := func(q cqrs.ListAccountsQuery) ([]models.AccountView, error) { return views, nil }
	router := newAccountTestRouter(&mockAccountCommander{}, &mockAccountQuerier{listFn: listFn})
	w := acctDoRequest(router, http.MethodGet, "/v1/accounts", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}
	var resp ListAccountsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Accounts) != 1 || resp.Accounts[0].ID != 1 {
		t.Errorf("unexpected accounts payload: %+v", resp.Accounts)
	}
}

func TestGetAccountHandler(t *testing.T) {
	tests := []struct {
		name           string
		accountID      string
		getFn          func(cqrs.GetAccountQuery) (*models.AccountView, error)
		expectedStatus int
	}{
		{
			name:           "ok - existing account",
			accountID:      "1",
			getFn:          func(q cqrs.GetAccountQuery) (*models.AccountView, error) { return aTestAccountView, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found - account does not exist",
			accountID:      "99",
			getFn:          func(q cqrs.GetAccountQuery) (*models.AccountView, error) { return nil, models.ErrAccountNotFound },
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - non-numeric id",
			accountID:      "abc",
			getFn:          nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountCommander{}, &mockAccountQuerier{getFn: tt.getFn})
			w := acctDoRequest(router, http.MethodGet, "/v1/accounts/"+tt.accountID, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateAccountHandler(t *testing.T) {
	tests := []struct {
		name           string
		accountID      string
		body           interface{}
		updateFn       func(cqrs.UpdateAccountCommand) (*models.Account, error)
		expectedStatus int
	}{
		{
			name:           "ok - valid update",
			accountID:      "1",
			body:           aValidUpdateBody(1),
			updateFn:       func(cmd cqrs.UpdateAccountCommand) (*models.Account, error) { return aTestAccount, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - body id does not match path id",
			accountID:      "1",
			body:           aValidUpdateBody(2),
			updateFn:       nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "bad request - treasury value changed",
			accountID: "1",
			body:      aValidUpdateBody(1),
			updateFn: func(cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
				return nil, models.NewPolicyViolation("treasury value changed")
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "not found - account does not exist",
			accountID: "1",
			body:      aValidUpdateBody(1),
			updateFn: func(cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
				return nil, models.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockAccountCommander{updateFn: tt.updateFn}
			router := newAccountTestRouter(cmds, &mockAccountQuerier{})
			w := acctDoRequest(router, http.MethodPut, "/v1/accounts/"+tt.accountID, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestDeleteAccountHandler(t *testing.T) {
	tests := []struct {
		name           string
		accountID      string
		deleteFn       func(cqrs.DeleteAccountCommand) error
		expectedStatus int
	}{
		{
			name:           "no content - account deleted",
			accountID:      "1",
			deleteFn:       func(cmd cqrs.DeleteAccountCommand) error { return nil },
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "not found - account does not exist",
			accountID:      "99",
			deleteFn:       func(cmd cqrs.DeleteAccountCommand) error { return models.ErrAccountNotFound },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockAccountCommander{deleteFn: tt.deleteFn}
			router := newAccountTestRouter(cmds, &mockAccountQuerier{})
			w := acctDoRequest(router, http.MethodDelete, "/v1/accounts/"+tt.accountID, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestTransferHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		body           interface{}
		transferFn     func(cqrs.TransferCommand) (*models.Account, error)
		expectedStatus int
	}{
		{
			name:           "ok - valid transfer returns origin account",
			url:            "/v1/accounts/1/payee/2",
			body:           aValidTransferBody(1, 2, 1500),
			transferFn:     func(cmd cqrs.TransferCommand) (*models.Account, error) { return aTestAccount, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - body origin does not match path origin",
			url:            "/v1/accounts/1/payee/2",
			body:           aValidTransferBody(3, 2, 1500),
			transferFn:     nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - body payee does not match path payee",
			url:            "/v1/accounts/1/payee/2",
			body:           aValidTransferBody(1, 3, 1500),
			transferFn:     nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - insufficient balance on non-treasury origin",
			url:  "/v1/accounts/1/payee/2",
			body: aValidTransferBody(1, 2, 999999),
			transferFn: func(cmd cqrs.TransferCommand) (*models.Account, error) {
				return nil, models.NewPolicyViolation("treasury profile does not accept negative balance")
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not found - origin account does not exist",
			url:  "/v1/accounts/1/payee/2",
			body: aValidTransferBody(1, 2, 1500),
			transferFn: func(cmd cqrs.TransferCommand) (*models.Account, error) {
				return nil, models.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockAccountCommander{transferFn: tt.transferFn}
			router := newAccountTestRouter(cmds, &mockAccountQuerier{})
			w := acctDoRequest(router, http.MethodPost, tt.url, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
