package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.loggingMw, s.maxBytesMw)

	api.HandleFunc("/user/register", s.userRegister()).Methods(http.MethodPost)
	api.HandleFunc("/user/login", s.userLogin()).Methods(http.MethodPost)

	userAPI := api.PathPrefix("/user").Subrouter()
	userAPI.Use(s.authMw)
	userAPI.HandleFunc("/token", s.userToken()).Methods(http.MethodPost)
	userAPI.PathPrefix("").Handler(http.NotFoundHandler())

	convAPI := api.PathPrefix("/conversation").Subrouter()
	convAPI.Use(s.authMw)
	convAPI.HandleFunc("/{cid}/message", s.conversationMessage()).Methods(http.MethodPost)
	convAPI.HandleFunc("/{cid}/archive", s.conversationArchive()).Methods(http.MethodPost)
	convAPI.HandleFunc("/{cid}/borrowing", s.conversationBorrowing()).Methods(http.MethodPost)
	convAPI.HandleFunc("/{cid}/return", s.conversationReturn()).Methods(http.MethodPost)
	convAPI.HandleFunc("/{cid}/rating", s.conversationRating()).Methods(http.MethodPost)
	convAPI.PathPrefix("").Handler(http.NotFoundHandler())

	bookAPI := api.PathPrefix("/book").Subrouter()
	bookAPI.Use(s.authMw)
	bookAPI.HandleFunc("/{bid}/delete", s.bookDelete()).Methods(http.MethodPost)
	bookAPI.PathPrefix("").Handler(http.NotFoundHandler())

	return r
}
