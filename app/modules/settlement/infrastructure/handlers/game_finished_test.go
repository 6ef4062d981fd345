package settlementhandlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	settlementservice "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/application"
	settlementevents "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/events"
	"github.com/rua-nove-fc/pelada-bot/app/shared/results"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/internal/observability"
)

type FakeService struct {
	Processed       []sharedtypes.GameID
	ProcessGameFunc func(ctx context.Context, gameID sharedtypes.GameID) (settlementservice.SettlementOperationResult, error)
}

func (f *FakeService) ProcessGame(ctx context.Context, gameID sharedtypes.GameID) (settlementservice.SettlementOperationResult, error) {
	f.Processed = append(f.Processed, gameID)
	if f.ProcessGameFunc != nil {
		return f.ProcessGameFunc(ctx, gameID)
	}
	return results.NewSuccess[settlementservice.GameProcessingResult, settlementservice.ProcessGameFailure](
		settlementservice.GameProcessingResult{GameID: gameID},
	), nil
}

var _ settlementservice.Service = (*FakeService)(nil)

func newHandlers(service settlementservice.Service) *GameHandlers {
	return NewGameHandlers(service, observability.NoOpLogger, noop.NewTracerProvider().Tracer("test"))
}

func TestHandleGameFinished_ProcessesGame(t *testing.T) {
	service := &FakeService{}
	handlers := newHandlers(service)

	err := handlers.HandleGameFinished(context.Background(), &settlementevents.GameFinishedPayloadV1{GameID: "g1"})
	require.NoError(t, err)
	assert.Equal(t, []sharedtypes.GameID{"g1"}, service.Processed)
}

func TestHandleGameFinished_TerminalFailureIsAcked(t *testing.T) {
	service := &FakeService{
		ProcessGameFunc: func(ctx context.Context, gameID sharedtypes.GameID) (settlementservice.SettlementOperationResult, error) {
			return results.NewFailure[settlementservice.GameProcessingResult, settlementservice.ProcessGameFailure](
				settlementservice.ProcessGameFailure{GameID: gameID, Reason: "game not found"},
			), errors.New("game not found")
		},
	}
	handlers := newHandlers(service)

	err := handlers.HandleGameFinished(context.Background(), &settlementevents.GameFinishedPayloadV1{GameID: "nope"})
	assert.NoError(t, err)
}

func TestHandleGameFinished_TransientErrorIsRetried(t *testing.T) {
	service := &FakeService{
		ProcessGameFunc: func(ctx context.Context, gameID sharedtypes.GameID) (settlementservice.SettlementOperationResult, error) {
			return settlementservice.SettlementOperationResult{}, errors.New("db timeout")
		},
	}
	handlers := newHandlers(service)

	err := handlers.HandleGameFinished(context.Background(), &settlementevents.GameFinishedPayloadV1{GameID: "g1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db timeout")
}
