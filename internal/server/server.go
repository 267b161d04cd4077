package server

import (
	"github.com/lestrrat-go/jwx/v2/jwk"

	"bookswap/internal/store"
)

// Server is the HTTP ingress the mobile clients write through. It holds no
// domain logic: every endpoint validates, resolves the caller's identity,
// and performs a store write; the trigger core does the rest.
type Server struct {
	Store         *store.Service
	Logger        logger
	AuthSecretKey jwk.Key
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}
