package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/finadmin/content-client/pkg/client"
)

// Bank is a banking entity managed through the portal.
type Bank struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	BIC     string `json:"bic"`
	Country string `json:"country"`
	Active  bool   `json:"active"`
}

// mockBanks backs the bank operations when the primary backend is a
// placeholder. Static and deterministic, like the content payloads.
var mockBanks = []Bank{
	{ID: 1, Name: "First Federal Savings", BIC: "FFSVUS33", Country: "US", Active: true},
	{ID: 2, Name: "Hapoalim Trust", BIC: "POALILIT", Country: "IL", Active: true},
	{ID: 3, Name: "Volga Credit Bank", BIC: "VLGCRUMM", Country: "RU", Active: false},
}

// ListBanks returns all banking entities. Plain execution, never cached.
func (p *Portal) ListBanks(ctx context.Context) client.Result[[]Bank] {
	if p.policy.IsPlaceholder(p.cfg.BaseURL) {
		banks := make([]Bank, len(mockBanks))
		copy(banks, mockBanks)
		return client.OK(banks)
	}

	body, err := p.executor.Send(ctx, p.cfg.BaseURL+"/api/banks", client.Options{})
	if err != nil {
		return client.Fail[[]Bank](err)
	}

	var banks []Bank
	if err := json.Unmarshal(body, &banks); err != nil {
		return client.Fail[[]Bank](decodeError("bank list"))
	}
	return client.OK(banks)
}

// CreateBank registers a new banking entity.
func (p *Portal) CreateBank(ctx context.Context, bank Bank) client.Result[Bank] {
	if p.policy.IsPlaceholder(p.cfg.BaseURL) {
		bank.ID = int64(len(mockBanks) + 1)
		return client.OK(bank)
	}

	payload, err := json.Marshal(bank)
	if err != nil {
		return client.Fail[Bank](err)
	}

	body, err := p.executor.Send(ctx, p.cfg.BaseURL+"/api/banks", client.Options{
		Method: http.MethodPost,
		Body:   payload,
	})
	if err != nil {
		return client.Fail[Bank](err)
	}

	var created Bank
	if err := json.Unmarshal(body, &created); err != nil {
		return client.Fail[Bank](decodeError("created bank"))
	}
	return client.OK(created)
}

// UpdateBank replaces an existing banking entity.
func (p *Portal) UpdateBank(ctx context.Context, bank Bank) client.Result[Bank] {
	if bank.ID == 0 {
		return client.Fail[Bank](fmt.Errorf("bank id is required"))
	}
	if p.policy.IsPlaceholder(p.cfg.BaseURL) {
		return client.OK(bank)
	}

	payload, err := json.Marshal(bank)
	if err != nil {
		return client.Fail[Bank](err)
	}

	body, err := p.executor.Send(ctx, fmt.Sprintf("%s/api/banks/%d", p.cfg.BaseURL, bank.ID),
		client.Options{
			Method: http.MethodPut,
			Body:   payload,
		})
	if err != nil {
		return client.Fail[Bank](err)
	}

	var updated Bank
	if err := json.Unmarshal(body, &updated); err != nil {
		return client.Fail[Bank](decodeError("updated bank"))
	}
	return client.OK(updated)
}

// DeleteBank removes a banking entity.
func (p *Portal) DeleteBank(ctx context.Context, id int64) client.Result[struct{}] {
	if id == 0 {
		return client.Fail[struct{}](fmt.Errorf("bank id is required"))
	}
	if p.policy.IsPlaceholder(p.cfg.BaseURL) {
		return client.OK(struct{}{})
	}

	_, err := p.executor.Send(ctx, fmt.Sprintf("%s/api/banks/%d", p.cfg.BaseURL, id),
		client.Options{Method: http.MethodDelete})
	if err != nil {
		return client.Fail[struct{}](err)
	}
	return client.OK(struct{}{})
}

func decodeError(what string) error {
	return &client.APIError{
		Class:   client.ErrorClassDecode,
		Message: fmt.Sprintf("%s is not valid JSON", what),
		Err:     client.ErrDecode,
	}
}
