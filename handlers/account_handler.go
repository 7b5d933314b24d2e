package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/repository"
)

type AccountHandler struct {
	Repo repository.AccountRepository
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var account models.CustomerAccount
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: err.Error()})
		return
	}
	if account.AccountCode == "" {
		writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: "account code is required"})
		return
	}

	if err := h.Repo.Create(r.Context(), &account); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "Account created", Data: account})
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request, accountCode string) {
	account, err := h.Repo.GetByCode(r.Context(), accountCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: account})
}
