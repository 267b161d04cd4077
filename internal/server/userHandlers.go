package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"bookswap/internal/model"
)

func (s Server) userRegister() http.HandlerFunc {
	type request struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FCMToken string `json:"fcm_token"`
	}
	type response struct {
		UserID     string `json:"user_id"`
		LoginToken string `json:"login_token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userRegister: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			s.Logger.Debugf("userRegister: Invalid email, err: %v", err)
			http.Error(w, "Invalid email", http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Password == "" {
			http.Error(w, "Username and password are required", http.StatusBadRequest)
			return
		}

		existing, err := s.Store.QueryByField(r.Context(), model.Users(), "credentials/email", req.Email)
		if err != nil {
			s.Logger.Errorf("userRegister: Error checking for existing email, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if len(existing) > 0 {
			s.Logger.Debugf("userRegister: Email already registered: %s", req.Email)
			http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
			return
		}

		password, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.Logger.Errorf("userRegister: Error generating bcrypt from password, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		uid := uuid.NewString()
		u := model.User{
			Profile: model.Profile{Username: req.Username},
			Credentials: model.Credentials{
				Email:    req.Email,
				Password: base64.StdEncoding.EncodeToString(password),
			},
		}
		if err = s.Store.Write(r.Context(), model.UserDoc(uid), u); err != nil {
			s.Logger.Errorf("userRegister: Error writing user, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if req.FCMToken != "" {
			if err = s.Store.Write(r.Context(), model.Token(uid, req.FCMToken), true); err != nil {
				s.Logger.Errorf("userRegister: Error registering FCM token for UserID: %s, err: %v", uid, err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}

		lt, err := s.createLoginToken(uid)
		if err != nil {
			s.Logger.Errorf("userRegister: Error creating login token for UserID: %s, err: %v", uid, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			UserID:     uid,
			LoginToken: lt,
		}, http.StatusCreated)
	}
}

func (s Server) userLogin() http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FCMToken string `json:"fcm_token"`
	}
	type response struct {
		UserID     string `json:"user_id"`
		LoginToken string `json:"login_token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("userLogin: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		es, err := s.Store.QueryByField(r.Context(), model.Users(), "credentials/email", req.Email)
		if err != nil {
			s.Logger.Errorf("userLogin: Error finding user by email, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if len(es) != 1 {
			s.Logger.Debugf("userLogin: No user with email: %s", req.Email)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		uid := es[0].Path[len(es[0].Path)-1]

		hash, err := base64.StdEncoding.DecodeString(
			es[0].Value.Child("credentials").Child("password").String())
		if err != nil {
			s.Logger.Errorf("userLogin: Error decoding password hash for UserID: %s, err: %v", uid, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err = bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); err != nil {
			s.Logger.Debugf("userLogin: Error comparing hash and password for UserID: %s, err: %v", uid, err)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		if req.FCMToken != "" {
			if err = s.Store.Write(r.Context(), model.Token(uid, req.FCMToken), true); err != nil {
				s.Logger.Errorf("userLogin: Error registering FCM token for UserID: %s, err: %v", uid, err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}

		lt, err := s.createLoginToken(uid)
		if err != nil {
			s.Logger.Errorf("userLogin: Error creating login token for UserID: %s, err: %v", uid, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			UserID:     uid,
			LoginToken: lt,
		}, http.StatusOK)
	}
}

// userToken registers an FCM device token. Tokens are pruned again by the
// notification dispatcher when a delivery reports them gone.
func (s Server) userToken() http.HandlerFunc {
	type request struct {
		FCMToken string `json:"fcm_token"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("userToken: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil || req.FCMToken == "" {
			s.Logger.Debugf("userToken: Bad request, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		if err = s.Store.WriteAs(r.Context(), uc.uid, model.Token(uc.uid, req.FCMToken), true); err != nil {
			s.Logger.Errorf("userToken: Error registering FCM token for UserID: %s, err: %v", uc.uid, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) createLoginToken(uid string) (string, error) {
	t, err := jwt.NewBuilder().
		Subject(uid).
		Issuer("bookswap-app").
		Expiration(time.Now().AddDate(0, 0, 90)).
		Build()
	if err != nil {
		return "", errors.Wrapf(err, "error creating login token for UserID: %s", uid)
	}
	lt, err := jwt.Sign(t, jwt.WithKey(jwa.HS256, s.AuthSecretKey))
	if err != nil {
		return "", errors.Wrapf(err, "error signing login token for UserID: %s", uid)
	}
	return string(lt), nil
}
