package api

import "fmt"

// ErrorResponse is the envelope the platform returns alongside, or instead of,
// a payload. A zero ErrCode means success.
type ErrorResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (e ErrorResponse) Error() string {
	return fmt.Sprintf("errcode %d: %s", e.ErrCode, e.ErrMsg)
}

type TicketResponse struct {
	ErrorResponse
	Ticket    string `json:"ticket"`
	ExpiresIn int    `json:"expires_in"`
}

// Signature is what a page needs to pass to wx.config besides the API list.
type Signature struct {
	AppID     string `json:"appId"`
	NonceStr  string `json:"nonceStr"`
	Timestamp int64  `json:"timestamp"`
	URL       string `json:"url"`
	Signature string `json:"signature"`
}

// JSConfig is the full wx.config payload for page embedding.
type JSConfig struct {
	Debug     bool     `json:"debug"`
	Beta      bool     `json:"beta"`
	JSAPIList []string `json:"jsApiList"`
	Signature
}
