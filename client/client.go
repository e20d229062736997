package client

import (
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/mindloom/insightserver/content"
	"github.com/mindloom/insightserver/pkg/handler"
	"github.com/mindloom/insightserver/pkg/utils"
	"github.com/mindloom/insightserver/requests"
	"github.com/mindloom/insightserver/responses"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client an insight archive client
type Client struct {
	t transport
}

// NewHTTPClient constructs a client talking to the http server endpoint,
// e.g. http://localhost:8080/insightserver
func NewHTTPClient(server string) (*Client, error) {
	if !utils.IsValidURL(server) {
		return nil, errors.Errorf("invalid server url %q", server)
	}
	return &Client{
		t: newHTTPTransport(server, http.DefaultClient),
	}, nil
}

// NewSocketClient constructs a client talking to the socket server using a
// connection pool of the given size.
func NewSocketClient(server string, connectionPoolSize int, waitTimeout time.Duration) *Client {
	return &Client{
		t: newSocketTransport(server, connectionPoolSize, waitTimeout),
	}
}

// ShutDown releases the client's connections.
func (c *Client) ShutDown() {
	c.t.shutdown()
}

// Update tell the server to update itself
func (c *Client) Update() (*responses.Update, error) {
	response := &responses.Update{}
	err := c.t.call(handler.RouteUpdate, &requests.Update{}, response)
	return response, err
}

// GetDocument request one number's whole content batch
func (c *Client) GetDocument(number int) (*content.Document, error) {
	response := content.NewDocument(0)
	err := c.t.call(handler.RouteGetDocument, &requests.Document{Number: number}, response)
	return response, err
}

// GetEntries request entries per category
func (c *Client) GetEntries(request *requests.Entries) (map[content.Category][]string, error) {
	response := map[content.Category][]string{}
	err := c.t.call(handler.RouteGetEntries, request, &response)
	return response, err
}

// GetDaily request the daily reading for a number
func (c *Client) GetDaily(request *requests.Daily) (*content.Reading, error) {
	response := content.NewReading()
	err := c.t.call(handler.RouteGetDaily, request, response)
	return response, err
}

// GetNumbers list the archived numbers
func (c *Client) GetNumbers() (*responses.Numbers, error) {
	response := &responses.Numbers{}
	err := c.t.call(handler.RouteGetNumbers, &requests.Numbers{}, response)
	return response, err
}
