package upload

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/Sternrassler/flickr-client/pkg/client"
)

// Response is the decoded upload or replace result. PhotoID is set for
// synchronous calls and TicketID for asynchronous ones.
type Response struct {
	Stat           string `json:"stat" yaml:"stat"`
	PhotoID        string `json:"photoid,omitempty" yaml:"photoid,omitempty"`
	Secret         string `json:"secret,omitempty" yaml:"secret,omitempty"`
	OriginalSecret string `json:"originalsecret,omitempty" yaml:"originalsecret,omitempty"`
	TicketID       string `json:"ticketid,omitempty" yaml:"ticketid,omitempty"`
	Code           int    `json:"code,omitempty" yaml:"code,omitempty"`
	Message        string `json:"message,omitempty" yaml:"message,omitempty"`
}

type rsp struct {
	XMLName xml.Name `xml:"rsp"`
	Stat    string   `xml:"stat,attr"`
	PhotoID *struct {
		ID             string `xml:",chardata"`
		Secret         string `xml:"secret,attr"`
		OriginalSecret string `xml:"originalsecret,attr"`
	} `xml:"photoid"`
	TicketID string `xml:"ticketid"`
	Err      *struct {
		Code int    `xml:"code,attr"`
		Msg  string `xml:"msg,attr"`
	} `xml:"err"`
}

// Decode parses an upload response body. A stat="fail" response is
// returned together with a *client.ServiceError.
func Decode(body []byte) (*Response, error) {
	var r rsp
	if err := xml.Unmarshal(body, &r); err != nil {
		return nil, &client.DecodeError{Body: body, Err: err}
	}
	if r.Stat == "" {
		return nil, &client.DecodeError{Body: body, Err: fmt.Errorf("rsp has no stat")}
	}

	out := &Response{
		Stat:     r.Stat,
		TicketID: strings.TrimSpace(r.TicketID),
	}
	if r.PhotoID != nil {
		out.PhotoID = strings.TrimSpace(r.PhotoID.ID)
		out.Secret = r.PhotoID.Secret
		out.OriginalSecret = r.PhotoID.OriginalSecret
	}
	if r.Err != nil {
		out.Code = r.Err.Code
		out.Message = r.Err.Msg
	}

	if r.Stat == "fail" {
		return out, &client.ServiceError{Code: out.Code, Message: out.Message}
	}
	return out, nil
}
