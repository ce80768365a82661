package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement/domain"
)

type orderRepoSpy struct {
	created []domain.PurchaseOrder
}

func (s *orderRepoSpy) Create(_ context.Context, order *domain.PurchaseOrder) (int64, error) {
	s.created = append(s.created, *order)
	return int64(len(s.created)), nil
}

type requestRepoSpy struct {
	created []domain.CustomItemRequest
}

func (s *requestRepoSpy) Create(_ context.Context, req *domain.CustomItemRequest) error {
	s.created = append(s.created, *req)
	return nil
}

func TestHandleSubmittedForcesPendingStatus(t *testing.T) {
	repo := &orderRepoSpy{}

	data, err := json.Marshal(domain.PurchaseOrder{
		ID:     "po-1",
		Number: "PO-1001",
		Status: domain.StatusVerified,
	})
	require.NoError(t, err)

	require.NoError(t, handleSubmitted(context.Background(), repo, data))
	require.Len(t, repo.created, 1)
	assert.Equal(t, domain.StatusPending, repo.created[0].Status,
		"submitters cannot pre-verify their own orders")
}

func TestHandleSubmittedRejectsGarbage(t *testing.T) {
	repo := &orderRepoSpy{}

	err := handleSubmitted(context.Background(), repo, []byte("not json"))
	require.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestHandleRequestSubmittedForcesOpenStatus(t *testing.T) {
	repo := &requestRepoSpy{}

	data, err := json.Marshal(domain.CustomItemRequest{
		ID:       "req-1",
		ItemName: "Left-handed wrench",
		Status:   domain.RequestApproved,
	})
	require.NoError(t, err)

	require.NoError(t, handleRequestSubmitted(context.Background(), repo, data))
	require.Len(t, repo.created, 1)
	assert.Equal(t, domain.RequestOpen, repo.created[0].Status)
	assert.Equal(t, "Left-handed wrench", repo.created[0].ItemName)
}

func TestHandleRequestSubmittedRejectsGarbage(t *testing.T) {
	repo := &requestRepoSpy{}

	err := handleRequestSubmitted(context.Background(), repo, []byte("{"))
	require.Error(t, err)
	assert.Empty(t, repo.created)
}
