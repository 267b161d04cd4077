package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"bookswap/internal/model"
)

// conversationMessage appends a chat message. The write fires onNewMessage,
// which maintains unread counters, conversation lists, and the push
// notification; none of that happens here.
func (s Server) conversationMessage() http.HandlerFunc {
	type request struct {
		Recipient string `json:"recipient"`
		Text      string `json:"text"`
	}
	type response struct {
		MessageID string `json:"message_id"`
		Timestamp int64  `json:"timestamp"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("conversationMessage: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		cid := mux.Vars(r)["cid"]

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("conversationMessage: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Recipient == "" || req.Text == "" {
			http.Error(w, "Recipient and text are required", http.StatusBadRequest)
			return
		}

		m := model.Message{
			Recipient: req.Recipient,
			Timestamp: time.Now().UnixMilli(),
			Text:      req.Text,
		}
		mid := uuid.NewString()
		if err = s.Store.WriteAs(r.Context(), uc.uid, model.ConversationMessage(cid, mid), m); err != nil {
			s.Logger.Errorf("conversationMessage: Error writing message, ConversationID: %s, err: %v", cid, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			MessageID: mid,
			Timestamp: m.Timestamp,
		}, http.StatusCreated)
	}
}

func (s Server) conversationArchive() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("conversationArchive: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		cid := mux.Vars(r)["cid"]

		if err = s.Store.WriteAs(r.Context(), uc.uid, model.ConversationFlag(cid, "archived"), true); err != nil {
			s.Logger.Errorf("conversationArchive: Error writing flag, ConversationID: %s, err: %v", cid, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) conversationBorrowing() http.HandlerFunc {
	return s.conversationStateWrite("borrowingState")
}

func (s Server) conversationReturn() http.HandlerFunc {
	return s.conversationStateWrite("returnState")
}

func (s Server) conversationStateWrite(flag string) http.HandlerFunc {
	type request struct {
		State int64 `json:"state"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("conversationStateWrite: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		cid := mux.Vars(r)["cid"]

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("conversationStateWrite: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		if err = s.Store.WriteAs(r.Context(), uc.uid, model.ConversationFlag(cid, flag), req.State); err != nil {
			s.Logger.Errorf("conversationStateWrite: Error writing %s, ConversationID: %s, err: %v", flag, cid, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

// conversationRating writes the caller's rating on their own side of the
// conversation; the trigger core credits it to the other user.
func (s Server) conversationRating() http.HandlerFunc {
	type request struct {
		Score   float64 `json:"score"`
		Comment string  `json:"comment"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("conversationRating: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		cid := mux.Vars(r)["cid"]

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("conversationRating: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Score < 0 || req.Score > 5 {
			http.Error(w, "Score must be between 0 and 5", http.StatusBadRequest)
			return
		}

		side, err := s.callerSide(r, cid, uc.uid)
		if err != nil {
			s.Logger.Errorf("conversationRating: Error resolving side, ConversationID: %s, err: %v", cid, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if side == "" {
			s.Logger.Debugf("conversationRating: UserID: %s is not part of ConversationID: %s", uc.uid, cid)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		rating := model.Rating{Score: req.Score, Comment: req.Comment}
		if err = s.Store.WriteAs(r.Context(), uc.uid, model.ConversationSideRating(cid, side), rating); err != nil {
			s.Logger.Errorf("conversationRating: Error writing rating, ConversationID: %s, err: %v", cid, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) callerSide(r *http.Request, cid string, uid string) (string, error) {
	for _, side := range []string{model.SideOwner, model.SidePeer} {
		v, err := s.Store.Read(r.Context(), model.ConversationSideUID(cid, side))
		if err != nil {
			return "", err
		}
		if v.String() == uid {
			return side, nil
		}
	}
	return "", nil
}
