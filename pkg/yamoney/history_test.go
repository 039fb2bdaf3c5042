package yamoney_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cassiomorais/yamoney/internal/testutil"
	"github.com/cassiomorais/yamoney/pkg/yamoney"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, seq func(func(yamoney.Operation, error) bool)) ([]string, error) {
	t.Helper()
	var ids []string
	for op, err := range seq {
		if err != nil {
			return ids, err
		}
		ids = append(ids, op.OperationID)
	}
	return ids, nil
}

func TestOperationHistory_FollowsCursorAcrossPages(t *testing.T) {
	client, tr := newScriptedClient(
		testutil.ScriptedResponse{Body: `{"next_record":"5","operations":[
			{"operation_id":"1","datetime":"2020-01-01T10:00:00Z","amount":"1"},
			{"operation_id":"2","datetime":"2020-01-01T11:00:00Z","amount":"2"}]}`},
		testutil.ScriptedResponse{Body: `{"operations":[
			{"operation_id":"3","datetime":"2020-01-02T10:00:00Z","amount":"3"}]}`},
	)

	ids, err := collect(t, client.OperationHistory(context.Background(), yamoney.HistoryFilter{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids)

	calls := tr.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "api/operation-history", calls[0].Endpoint)
	assert.Equal(t, "0", calls[0].Params.Get("start_record"))
	assert.Equal(t, "5", calls[1].Params.Get("start_record"))
}

func TestOperationHistory_EmptyFirstPageStops(t *testing.T) {
	client, tr := newScriptedClient(
		testutil.ScriptedResponse{Body: `{"next_record":"30","operations":[]}`},
	)

	ids, err := collect(t, client.OperationHistory(context.Background(), yamoney.HistoryFilter{}))
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Len(t, tr.Calls(), 1)
}

func TestOperationHistory_FailureEndsSequence(t *testing.T) {
	client, tr := newScriptedClient(
		testutil.ScriptedResponse{Body: `{"next_record":2,"operations":[{"operation_id":"1","datetime":"2020-01-01T10:00:00Z"}]}`},
		testutil.ScriptedResponse{Body: `{"error":"illegal_param_start_record"}`},
	)

	var ids []string
	var errs []error
	for op, err := range client.OperationHistory(context.Background(), yamoney.HistoryFilter{}) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids = append(ids, op.OperationID)
	}

	assert.Equal(t, []string{"1"}, ids)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], yamoney.ErrRemoteRejected))
	assert.Len(t, tr.Calls(), 2)
}

func TestOperationHistory_RestartsFromStartRecord(t *testing.T) {
	page := testutil.ScriptedResponse{Body: `{"operations":[{"operation_id":"7","datetime":"2020-01-01T10:00:00Z"}]}`}
	client, tr := newScriptedClient(page, page)

	seq := client.OperationHistory(context.Background(), yamoney.HistoryFilter{StartRecord: 7})

	first, err := collect(t, seq)
	require.NoError(t, err)
	second, err := collect(t, seq)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	calls := tr.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "7", calls[0].Params.Get("start_record"))
	assert.Equal(t, "7", calls[1].Params.Get("start_record"))
}

func TestOperationHistory_StopsFetchingWhenConsumerBreaks(t *testing.T) {
	client, tr := newScriptedClient(
		testutil.ScriptedResponse{Body: `{"next_record":"2","operations":[
			{"operation_id":"1","datetime":"2020-01-01T10:00:00Z"},
			{"operation_id":"2","datetime":"2020-01-01T10:00:00Z"}]}`},
	)

	for op, err := range client.OperationHistory(context.Background(), yamoney.HistoryFilter{}) {
		require.NoError(t, err)
		assert.Equal(t, "1", op.OperationID)
		break
	}
	assert.Len(t, tr.Calls(), 1)
}

func TestOperationHistory_FilterParams(t *testing.T) {
	client, tr := newScriptedClient(testutil.ScriptedResponse{Body: `{"operations":[]}`})

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	till := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	filter := yamoney.HistoryFilter{
		Types:   []yamoney.OperationType{yamoney.OperationPayment, yamoney.OperationDeposition, yamoney.OperationPayment},
		Label:   "order-1",
		From:    &from,
		Till:    &till,
		Records: 50,
		Details: true,
	}

	_, err := collect(t, client.OperationHistory(context.Background(), filter))
	require.NoError(t, err)

	params := tr.Calls()[0].Params
	assert.Equal(t, "deposition payment", params.Get("types"))
	assert.Equal(t, "order-1", params.Get("label"))
	assert.Equal(t, "2020-01-01T00:00:00Z", params.Get("from"))
	assert.Equal(t, "2020-02-01T00:00:00Z", params.Get("till"))
	assert.Equal(t, "50", params.Get("records"))
	assert.Equal(t, "true", params.Get("details"))
}

func TestOperationHistory_NoTypesOmitsParam(t *testing.T) {
	client, tr := newScriptedClient(testutil.ScriptedResponse{Body: `{"operations":[]}`})

	_, err := collect(t, client.OperationHistory(context.Background(), yamoney.HistoryFilter{}))
	require.NoError(t, err)

	params := tr.Calls()[0].Params
	assert.NotContains(t, params, "types")
	assert.Equal(t, "false", params.Get("details"))
}

func TestOperationHistory_DetailedOperations(t *testing.T) {
	client, _ := newScriptedClient(testutil.ScriptedResponse{Body: `{"operations":[
		{"operation_id":"1","datetime":"2020-01-01T10:00:00Z","amount":"5","direction":"out",
		 "details":"Transfer to 4100123","recipient":"4100123","type":"outgoing-transfer"}]}`})

	for op, err := range client.OperationHistory(context.Background(), yamoney.HistoryFilter{Details: true}) {
		require.NoError(t, err)
		require.NotNil(t, op.Details)
		assert.Equal(t, "4100123", op.Details.Recipient)
		assert.Equal(t, "Transfer to 4100123", op.Details.Details)
	}
}
