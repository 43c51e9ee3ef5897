// internal/clients/client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"libris/internal/catalog"
	"libris/internal/loans"
)

// Client is a typed HTTP client for the libris API, used by the
// end-to-end tests and by sibling systems consuming the service.
type Client struct {
	baseURL  string
	adminKey string
	http     *http.Client
}

func NewClient(baseURL, adminKey string) *Client {
	return &Client{
		baseURL:  baseURL,
		adminKey: adminKey,
		http:     http.DefaultClient,
	}
}

func (c *Client) RegisterBook(ctx context.Context, title, author, isbn string) (*catalog.Book, error) {
	body := map[string]string{"title": title, "author": author, "isbn": isbn}
	var book catalog.Book
	if err := c.do(ctx, http.MethodPost, "/books", body, http.StatusCreated, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) GetBook(ctx context.Context, id int) (*catalog.Book, error) {
	var book catalog.Book
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/books/%d", id), nil, http.StatusOK, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) Borrow(ctx context.Context, bookID, periodDays int) (*loans.Loan, error) {
	body := map[string]int{"book_id": bookID, "period_days": periodDays}
	var loan loans.Loan
	if err := c.do(ctx, http.MethodPost, "/loans", body, http.StatusCreated, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

// Return completes a return. A blocked return surfaces as a
// *loans.PendingFineError carrying the amount owed.
func (c *Client) Return(ctx context.Context, bookID int) error {
	body := map[string]int{"book_id": bookID}
	return c.do(ctx, http.MethodPost, "/returns", body, http.StatusOK, nil)
}

func (c *Client) ActiveLoans(ctx context.Context) ([]*loans.Loan, error) {
	var active []*loans.Loan
	if err := c.do(ctx, http.MethodGet, "/loans", nil, http.StatusOK, &active); err != nil {
		return nil, err
	}
	return active, nil
}

func (c *Client) Fee(ctx context.Context, bookID int) (decimal.Decimal, error) {
	var resp struct {
		Fee decimal.Decimal `json:"fee"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/books/%d/fee", bookID), nil, http.StatusOK, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Fee, nil
}

func (c *Client) ResolveFee(ctx context.Context, bookID int) (decimal.Decimal, error) {
	var resp struct {
		Settled decimal.Decimal `json:"settled"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/books/%d/fee/settlement", bookID), nil, http.StatusOK, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Settled, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewBuffer(data)
	} else {
		buf = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.adminKey != "" {
		req.Header.Set("X-Admin-Key", c.adminKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return c.asError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) asError(resp *http.Response) error {
	var payload struct {
		Error  string          `json:"error"`
		Amount decimal.Decimal `json:"amount"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode == http.StatusPaymentRequired {
		return &loans.PendingFineError{Amount: payload.Amount}
	}
	if payload.Error != "" {
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
}
