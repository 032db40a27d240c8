package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "juntos/internal/errors"
	"juntos/internal/models"
	"juntos/internal/services"
)

const (
	testAccountID  = "0190a1b2-c3d4-7e5f-8a9b-000000000001"
	testAccountID2 = "0190a1b2-c3d4-7e5f-8a9b-000000000002"
)

// --- mock account service ---

type mockAccountService struct {
	createAccountFn   func(userID string, input services.AccountInput) (*models.Account, error)
	getUserAccountsFn func(userID string, accountType *models.AccountType) (*services.AccountList, error)
	getAccountByIDFn  func(userID, accountID string) (*models.Account, error)
	updateAccountFn   func(userID, accountID string, fields services.AccountUpdateFields) (*models.Account, error)
	deleteAccountFn   func(userID, accountID string) error
	getAccountStatsFn func(userID string) (*services.AccountStats, error)
	transferFn        func(userID string, req services.TransferRequest) (*services.TransferResult, error)
}

func (m *mockAccountService) CreateAccount(userID string, input services.AccountInput) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(userID, input)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) GetUserAccounts(userID string, accountType *models.AccountType) (*services.AccountList, error) {
	if m.getUserAccountsFn != nil {
		return m.getUserAccountsFn(userID, accountType)
	}
	return &services.AccountList{Accounts: []models.Account{}}, nil
}

func (m *mockAccountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(userID, accountID)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) UpdateAccount(userID, accountID string, fields services.AccountUpdateFields) (*models.Account, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(userID, accountID, fields)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) DeleteAccount(userID, accountID string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(userID, accountID)
	}
	return nil
}

func (m *mockAccountService) GetAccountStats(userID string) (*services.AccountStats, error) {
	if m.getAccountStatsFn != nil {
		return m.getAccountStatsFn(userID)
	}
	return &services.AccountStats{}, nil
}

func (m *mockAccountService) Transfer(userID string, req services.TransferRequest) (*services.TransferResult, error) {
	if m.transferFn != nil {
		return m.transferFn(userID, req)
	}
	return &services.TransferResult{Amount: req.Amount}, nil
}

// verify interface compliance
var _ services.AccountServicer = (*mockAccountService)(nil)

func setupAccountRouter(handler *AccountHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/accounts", handler.GetUserAccounts)
	auth.GET("/accounts/stats", handler.GetAccountStats)
	auth.POST("/accounts", handler.CreateAccount)
	auth.POST("/accounts/transfer", handler.Transfer)
	auth.GET("/accounts/:id", handler.GetAccountByID)
	auth.PUT("/accounts/:id", handler.UpdateAccount)
	auth.DELETE("/accounts/:id", handler.DeleteAccount)
	return r
}

func TestAccountHandler_CreateAccount(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.AccountInput
		acctSvc := &mockAccountService{
			createAccountFn: func(userID string, input services.AccountInput) (*models.Account, error) {
				got = input
				return &models.Account{
					Base:    models.Base{ID: testAccountID},
					UserID:  userID,
					Name:    input.Name,
					Type:    input.Type,
					Balance: input.InitialBalance,
				}, nil
			},
		}
		audit := &mockAuditService{}
		handler := NewAccountHandler(acctSvc, audit)
		r := setupAccountRouter(handler)

		rec := doRequest(r, "POST", "/accounts",
			`{"name":"Nubank","type":"checking","initial_balance":1500.50}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		data := parseData(t, rec)
		if data["name"] != "Nubank" {
			t.Errorf("expected Nubank, got %v", data["name"])
		}
		if !got.InitialBalance.Equal(decimal.RequireFromString("1500.50")) {
			t.Errorf("expected initial balance 1500.50, got %s", got.InitialBalance)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "CREATE_ACCOUNT" || audit.entries[0].resourceID != testAccountID {
			t.Errorf("unexpected audit entries: %v", audit.entries)
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		handler := NewAccountHandler(&mockAccountService{}, &mockAuditService{})
		r := setupAccountRouter(handler)

		rec := doRequest(r, "POST", "/accounts", `{"type":"checking"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		handler := NewAccountHandler(&mockAccountService{}, &mockAuditService{})
		r := setupAccountRouter(handler)

		rec := doRequest(r, "POST", "/accounts", `{"name":"Wallet","type":"crypto"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate name", func(t *testing.T) {
		acctSvc := &mockAccountService{
			createAccountFn: func(_ string, _ services.AccountInput) (*models.Account, error) {
				return nil, apperrors.ErrDuplicateAccountName
			},
		}
		handler := NewAccountHandler(acctSvc, &mockAuditService{})
		r := setupAccountRouter(handler)

		rec := doRequest(r, "POST", "/accounts", `{"name":"Nubank","type":"checking"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_ACCOUNT")
	})
}

func TestAccountHandler_GetUserAccounts(t *testing.T) {
	t.Run("passes the type filter", func(t *testing.T) {
		var gotType *models.AccountType
		acctSvc := &mockAccountService{
			getUserAccountsFn: func(_ string, accountType *models.AccountType) (*services.AccountList, error) {
				gotType = accountType
				return &services.AccountList{
					Accounts:     []models.Account{{Base: models.Base{ID: testAccountID}, Name: "Poupança", Type: models.AccountTypeSavings}},
					TotalBalance: decimal.NewFromInt(200),
				}, nil
			},
		}
		handler := NewAccountHandler(acctSvc, &mockAuditService{})
		r := setupAccountRouter(handler)

		rec := doRequest(r, "GET", "/accounts?type=savings", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotType == nil || *gotType != models.AccountTypeSavings {
			t.Errorf("expected savings filter, got %v", gotType)
		}
		data := parseData(t, rec)
		if accounts := data["accounts"].([]interface{}); len(accounts) != 1 {
			t.Errorf("expected 1 account, got %d", len(accounts))
		}
		if data["total_balance"] != "200" {
			t.Errorf("expected total_balance 200, got %v", data["total_balance"])
		}
	})

	t.Run("returns 400 on invalid type filter", func(t *testing.T) {
		handler := NewAccountHandler(&mockAccountService{}, &mockAuditService{})
		r := setupAccountRouter(handler)

		rec := doRequest(r, "GET", "/accounts?type=crypto", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAccountHandler_GetAccountByID(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		acctSvc := &mockAccountService{
			getAccountByIDFn: func(userID, accountID string) (*models.Account, error) {
				return &models.Account{Base: models.Base{ID: accountID}, UserID: userID, Name: "Nubank"}, nil
			},
		}
		handler := NewAccountHandler(acctSvc, &mockAuditService{})
		r := setupAccountRouter(handler)

		rec := doRequest(r, "GET", "/accounts/"+testAccountID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if data := parseData(t, rec); data["id"] != testAccountID {
			t.Errorf("expected id %s, got %v", testAccountID, data["id"])
		}
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		handler := NewAccountHandler(&mockAccountService{}, &mockAuditService{})
		r := setupAccountRouter(handler)

		rec := doRequest(r, "GET", "/accounts/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		acctSvc := &mockAccountService{
			getAccountByIDFn: func(_, _ string) (*models.Account, error) {
				return nil, apperrors.ErrAccountNotFound
			},
		}
		handler := NewAccountHandler(acctSvc, &mockAuditService{})
		r := setupAccountRouter(handler)

		rec := doRequest(r, "GET", "/accounts/"+testAccountID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_NOT_FOUND")
	})
}

func TestAccountHandler_UpdateAccount(t *testing.T) {
	t.Run("ignores balance in the payload", func(t *testing.T) {
		var got services.AccountUpdateFields
		acctSvc := &mockAccountService{
			updateAccountFn: func(_, accountID string, fields services.AccountUpdateFields) (*models.Account, error) {
				got = fields
				return &models.Account{Base: models.Base{ID: accountID}, Name: *fields.Name}, nil
			},
		}
		handler := NewAccountHandler(acctSvc, &mockAuditService{})
		r := setupAccountRouter(handler)

		rec := doRequest(r, "PUT", "/accounts/"+testAccountID, `{"name":"Inter","balance":99999}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Name == nil || *got.Name != "Inter" || got.Type != nil {
			t.Errorf("unexpected fields: %+v", got)
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		handler := NewAccountHandler(&mockAccountService{}, &mockAuditService{})
		r := setupAccountRouter(handler)

		rec := doRequest(r, "PUT", "/accounts/"+testAccountID, `{"type":"loan"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAccountHandler_DeleteAccount(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		handler := NewAccountHandler(&mockAccountService{}, audit)
		r := setupAccountRouter(handler)

		rec := doRequest(r, "DELETE", "/accounts/"+testAccountID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "DELETE_ACCOUNT" {
			t.Errorf("unexpected audit entries: %v", audit.entries)
		}
	})

	t.Run("returns 400 when transactions exist", func(t *testing.T) {
		acctSvc := &mockAccountService{
			deleteAccountFn: func(_, _ string) error { return apperrors.ErrAccountHasTransactions },
		}
		handler := NewAccountHandler(acctSvc, &mockAuditService{})
		r := setupAccountRouter(handler)

		rec := doRequest(r, "DELETE", "/accounts/"+testAccountID, "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_HAS_TRANSACTIONS")
	})
}

func TestAccountHandler_GetAccountStats(t *testing.T) {
	acctSvc := &mockAccountService{
		getAccountStatsFn: func(_ string) (*services.AccountStats, error) {
			return &services.AccountStats{TotalAccounts: 3, TotalBalance: decimal.NewFromInt(900)}, nil
		},
	}
	handler := NewAccountHandler(acctSvc, &mockAuditService{})
	r := setupAccountRouter(handler)

	rec := doRequest(r, "GET", "/accounts/stats", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if data := parseData(t, rec); data["total_accounts"] != float64(3) {
		t.Errorf("expected 3 accounts, got %v", data["total_accounts"])
	}
}

func TestAccountHandler_Transfer(t *testing.T) {
	t.Run("returns 200 and audits the transfer", func(t *testing.T) {
		var got services.TransferRequest
		acctSvc := &mockAccountService{
			transferFn: func(_ string, req services.TransferRequest) (*services.TransferResult, error) {
				got = req
				return &services.TransferResult{Amount: req.Amount, Description: "Transfer from A to B"}, nil
			},
		}
		audit := &mockAuditService{}
		handler := NewAccountHandler(acctSvc, audit)
		r := setupAccountRouter(handler)

		rec := doRequest(r, "POST", "/accounts/transfer",
			`{"from_account_id":"`+testAccountID+`","to_account_id":"`+testAccountID2+`","amount":250}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.FromAccountID != testAccountID || got.ToAccountID != testAccountID2 || !got.Amount.Equal(decimal.NewFromInt(250)) {
			t.Errorf("unexpected transfer request: %+v", got)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "TRANSFER" {
			t.Errorf("unexpected audit entries: %v", audit.entries)
		}
	})

	t.Run("returns 400 on non-positive amount", func(t *testing.T) {
		handler := NewAccountHandler(&mockAccountService{}, &mockAuditService{})
		r := setupAccountRouter(handler)

		rec := doRequest(r, "POST", "/accounts/transfer",
			`{"from_account_id":"`+testAccountID+`","to_account_id":"`+testAccountID2+`","amount":-5}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on insufficient funds", func(t *testing.T) {
		acctSvc := &mockAccountService{
			transferFn: func(_ string, _ services.TransferRequest) (*services.TransferResult, error) {
				return nil, apperrors.ErrInsufficientFunds
			},
		}
		audit := &mockAuditService{}
		handler := NewAccountHandler(acctSvc, audit)
		r := setupAccountRouter(handler)

		rec := doRequest(r, "POST", "/accounts/transfer",
			`{"from_account_id":"`+testAccountID+`","to_account_id":"`+testAccountID2+`","amount":5000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INSUFFICIENT_FUNDS")
		if len(audit.entries) != 0 {
			t.Error("failed transfers must not be audited")
		}
	})
}
