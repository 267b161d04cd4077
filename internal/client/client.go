package client

import (
	"io"
	"net/http"
)

const defaultFCMSendURL = "https://fcm.googleapis.com/fcm/send"

type Client struct {
	*http.Client
	FCMKey string
	// FCMSendURL overrides the FCM endpoint; empty means the real one.
	FCMSendURL string
	Logger     logger
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

func newRequest(method string, url string, body io.Reader) (*http.Request, error) {
	r, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Accept", "application/json")
	return r, nil
}
