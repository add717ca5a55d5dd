package http

import (
	"net/http"
)

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.RequireFields("user_id", "date", "description", "amount"); err != nil {
		writeError(w, r, err)
		return
	}

	ownerID, ok := req.Int64("user_id")
	if !ok {
		writeError(w, r, errBadBody)
		return
	}

	expenseID, err := s.ledger.AddExpense(r.Context(), ownerID,
		req.String("date"), req.String("description"), req.String("amount"), req.String("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Expense added!",
		"expense_id": expenseID,
	})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	views, err := s.ledger.GetExpenses(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenseID, err := pathID(r, "expenseID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledger.DeleteExpense(r.Context(), ownerID, expenseID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Deleted!"})
}

func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	total, err := s.ledger.GetTotal(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"total": total})
}

func (s *Server) handleTotalBetween(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	req, err := DecodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.RequireFields("start", "end"); err != nil {
		writeError(w, r, err)
		return
	}

	total, err := s.ledger.GetTotalBetween(r.Context(), ownerID, req.String("start"), req.String("end"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"total": total})
}
