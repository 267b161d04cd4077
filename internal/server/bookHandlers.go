package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"bookswap/internal/model"
)

// bookDelete raises the canonical deleted flag; the trigger core
// soft-deletes every conversation about the book from there.
func (s Server) bookDelete() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("bookDelete: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		bid := mux.Vars(r)["bid"]

		if err = s.Store.WriteAs(r.Context(), uc.uid, model.BookFlag(bid, "deleted"), true); err != nil {
			s.Logger.Errorf("bookDelete: Error writing deleted flag, BookID: %s, err: %v", bid, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}
