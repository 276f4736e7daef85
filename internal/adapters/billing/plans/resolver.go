package plans

import (
	"context"
	"os"
	"strings"

	"dairy-herd-service/internal/ports/billing"
)

// Resolver implementa billing.PlanResolver contra el servicio de planes.
// Si ALLOW_ALL_FEATURES=true o el cliente no está configurado, habilita todo
// (modo desarrollo).
type Resolver struct {
	client   *Client
	allowAll bool
}

var _ billing.PlanResolver = (*Resolver)(nil)

func NewResolver(client *Client) *Resolver {
	allowAll := strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_ALL_FEATURES")), "true")
	return &Resolver{
		client:   client,
		allowAll: allowAll,
	}
}

func (r *Resolver) HasFeature(ctx context.Context, farmID, feature string) (bool, error) {
	if r == nil || r.allowAll || r.client == nil || !r.client.IsConfigured() {
		return true, nil
	}

	resp, err := r.client.GetFeatures(ctx, farmID)
	if err != nil {
		return false, err
	}
	return resp.Features[feature], nil
}
