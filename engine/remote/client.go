package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/YosefMac/Xapiand/engine"
)

const defaultScheme = "http"

// Client is a handle on a shard served by another process.
type Client struct {
	baseURL    string
	writable   bool
	httpClient *http.Client
	closed     atomic.Bool
}

var (
	_ engine.WritableDatabase = (*Client)(nil)
	_ engine.SpellingReader   = (*Client)(nil)
)

// Dial connects to the shard server at host:port and checks that it answers.
// A zero timeout means no per-request limit. Asking for a writable handle on
// a read-only server fails with engine.ErrReadOnly.
func Dial(ctx context.Context, host string, port int, timeout time.Duration, writable bool) (*Client, error) {
	c := &Client{
		baseURL:    fmt.Sprintf("%s://%s", defaultScheme, net.JoinHostPort(host, strconv.Itoa(port))),
		writable:   writable,
		httpClient: &http.Client{Timeout: timeout},
	}
	var ping PingResponse
	if err := c.do(ctx, http.MethodGet, "/ping", nil, &ping); err != nil {
		return nil, err
	}
	if writable && !ping.Writable {
		return nil, fmt.Errorf("remote: %s: %w", c.baseURL, engine.ErrReadOnly)
	}
	return c, nil
}

func (c *Client) String() string { return c.baseURL }

// Writable reports whether the handle accepts changes.
func (c *Client) Writable() bool { return c.writable }

func (c *Client) Reopen(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/reopen", nil, nil)
}

// Close marks the handle closed. The server keeps its shard open.
func (c *Client) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

func (c *Client) DocCount(ctx context.Context) (uint32, error) {
	var resp DocCountResponse
	if err := c.do(ctx, http.MethodGet, "/doccount", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) TermDocs(ctx context.Context, term string) ([]engine.DocID, error) {
	var resp TermDocsResponse
	if err := c.do(ctx, http.MethodPost, "/termdocs", &TermDocsRequest{Term: term}, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

func (c *Client) Document(ctx context.Context, id engine.DocID) (*engine.Document, error) {
	doc := engine.NewDocument()
	if err := c.do(ctx, http.MethodGet, "/documents/"+strconv.FormatUint(uint64(id), 10), nil, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) SpellingFrequency(ctx context.Context, word string) (uint32, error) {
	var resp SpellingResponse
	if err := c.do(ctx, http.MethodGet, "/spelling/"+url.PathEscape(word), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Frequency, nil
}

func (c *Client) ReplaceDocument(ctx context.Context, ref engine.DocRef, doc *engine.Document) (engine.DocID, error) {
	if err := c.checkWritable(); err != nil {
		return 0, err
	}
	var resp ReplaceResponse
	if err := c.do(ctx, http.MethodPost, "/replace", &ReplaceRequest{Ref: ref, Doc: doc}, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) DeleteDocument(ctx context.Context, ref engine.DocRef) error {
	if err := c.checkWritable(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/delete", &DeleteRequest{Ref: ref}, nil)
}

func (c *Client) AddSpelling(ctx context.Context, word string, freqinc uint32) error {
	if err := c.checkWritable(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/spelling", &SpellingRequest{Word: word, FreqInc: freqinc}, nil)
}

func (c *Client) Commit(ctx context.Context) error {
	if err := c.checkWritable(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/commit", nil, nil)
}

func (c *Client) checkWritable() error {
	if !c.writable {
		return fmt.Errorf("remote: %s: %w", c.baseURL, engine.ErrReadOnly)
	}
	return nil
}

// do sends one request. Transport failures are reported as engine.ErrNetwork.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.closed.Load() {
		return fmt.Errorf("remote: %s: %w", c.baseURL, engine.ErrDatabaseClosed)
	}

	var body io.Reader
	if in != nil {
		b, err := msgpack.Marshal(in)
		if err != nil {
			return fmt.Errorf("remote: marshalling %s request: %w", path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("remote: %s: %w", path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", ContentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return err
		}
		return fmt.Errorf("remote: %s%s: %w: %w", c.baseURL, path, engine.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e ErrorResponse
		if err := msgpack.NewDecoder(resp.Body).Decode(&e); err != nil {
			return fmt.Errorf("remote: %s%s: %w: status code: %d", c.baseURL, path, engine.ErrNetwork, resp.StatusCode)
		}
		return e.toError()
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := msgpack.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: %s%s: %w: decoding response: %w", c.baseURL, path, engine.ErrNetwork, err)
	}
	return nil
}
