package flickr

import (
	"context"

	"github.com/Sternrassler/flickr-client/pkg/client"
)

// Ticket.Complete values.
const (
	TicketPending  = 0
	TicketComplete = 1
	TicketFailed   = 2
)

// UploadsAPI wraps flickr.photos.upload.*.
type UploadsAPI struct {
	c *client.Client
}

// CheckTickets returns the status of asynchronous uploads. Ticket state
// changes, so the cache is bypassed.
func (a *UploadsAPI) CheckTickets(ctx context.Context, ticketIDs []string) ([]Ticket, error) {
	resp, err := write(ctx, a.c, "photos.upload.checkTickets", client.Params{"tickets": ticketIDs})
	if err != nil {
		return nil, err
	}
	items, ok := resp.List("uploader", "ticket")
	if !ok {
		return nil, nil
	}
	var tickets []Ticket
	if err := (client.Response{"t": items}).Decode(&tickets, "t"); err != nil {
		return nil, err
	}
	return tickets, nil
}
