package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
)

func TestGetAppealHandler_ByCardID(t *testing.T) {
	appealRepo := new(mockAppealRepo)
	handler := NewGetAppealHandler(appealRepo)

	cardID := uuid.New()
	a := appeal.NewAppeal(cardID, uuid.New(), uuid.New(), time.Now().Add(48*time.Hour))

	appealRepo.On("FindByCard", mock.Anything, cardID).Return(a, nil)

	dto, err := handler.Handle(context.Background(), GetAppealQuery{CardID: &cardID})
	require.NoError(t, err)

	assert.Equal(t, a.ID(), dto.ID)
	assert.Equal(t, cardID, dto.CardID)
	assert.Equal(t, "pending", dto.Status)
}

func TestGetAppealHandler_NoSelector(t *testing.T) {
	handler := NewGetAppealHandler(new(mockAppealRepo))

	_, err := handler.Handle(context.Background(), GetAppealQuery{})
	assert.ErrorIs(t, err, appeal.ErrAppealNotFound)
}
