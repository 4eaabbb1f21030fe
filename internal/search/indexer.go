// Package search pushes capacity changes to the external search service
// that indexes sellable tickets. The core treats it strictly as a
// best-effort collaborator: updates fire from post-commit hooks, failures
// are logged by the caller, and nothing here can roll back a transaction.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Indexer applies partial document updates to the search service over
// HTTP. A nil *Indexer is a valid no-op, which is how deployments
// without a search service run.
type Indexer struct {
	client *resty.Client
}

// NewIndexer returns an Indexer targeting the given base URL, or nil
// when the URL is empty (search disabled).
func NewIndexer(baseURL string) *Indexer {
	if baseURL == "" {
		return nil
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(2)
	return &Indexer{client: client}
}

// UpdateRemaining patches the indexed document for a ticket with its new
// remaining capacity.
func (i *Indexer) UpdateRemaining(ctx context.Context, ticketID uint64, remaining int) error {
	if i == nil {
		return nil
	}
	resp, err := i.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"remaining_capacity": remaining}).
		Patch(fmt.Sprintf("/tickets/%d", ticketID))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("search index update for ticket %d: status %s", ticketID, resp.Status())
	}
	return nil
}
