package peer

import "net/http"

func HTTPClientForTest(c *Client) *http.Client {
	return c.httpClient
}
