package content

import (
	"io"
	"net/http"
)

// Fails reading of response bodies longer than the limit
type limitedTransport struct {
	next  http.RoundTripper
	limit int64
}

func (self *limitedTransport) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	resp, err = self.next.RoundTrip(req)
	if err != nil {
		return
	}
	if resp.ContentLength > self.limit {
		resp.Body.Close()
		return nil, ErrBodyTooLarge
	}
	resp.Body = &limitedBody{ReadCloser: resp.Body, remaining: self.limit}
	return
}

type limitedBody struct {
	io.ReadCloser
	remaining int64
}

func (self *limitedBody) Read(p []byte) (n int, err error) {
	// One byte past the limit tells a body of exactly the limit from a longer one
	if int64(len(p)) > self.remaining+1 {
		p = p[:self.remaining+1]
	}

	n, err = self.ReadCloser.Read(p)
	if int64(n) > self.remaining {
		self.remaining = 0
		return 0, ErrBodyTooLarge
	}
	self.remaining -= int64(n)
	return
}
