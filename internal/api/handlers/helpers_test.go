package handlers_test

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/travel-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/config"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/storage"
)

// Helper to set chi URL params in tests
func setChiURLParam(ctx context.Context, key, value string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}

func newTestService(t *testing.T, repo storage.Repository) *reconcile.Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Matching.Strategy = "auto"
	svc, err := reconcile.NewService(cfg, repo, nil)
	require.NoError(t, err)
	return svc
}

// requestBody is a small dataset with one confident flight pair
const requestBody = `{
	"bookings": [
		{"id": "B2", "merchant": "Hotel Lutetia", "amount": 1200, "card_last4": "5555", "category": "Hotel"},
		{"id": "B1", "merchant": "Delta Air Lines", "amount": 450.75, "card_last4": "1234", "currency": "USD"}
	],
	"expenses": [
		{"id": "E2", "vendor": "Staples", "amount": 23.10, "card_last4": "3333", "description": "Printer paper"},
		{"id": "E1", "vendor": "Delta Airlines", "amount": 450.75, "card_last4": "1234", "description": "Flight DL1234 SFO-JFK"}
	]`
