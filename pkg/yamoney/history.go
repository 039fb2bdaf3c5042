package yamoney

import (
	"context"
	"iter"
	"strconv"
	"time"
)

// HistoryFilter selects the operations returned by OperationHistory.
type HistoryFilter struct {
	// Types restricts the operation types; empty means all.
	Types       []OperationType
	Label       string
	From        *time.Time
	Till        *time.Time
	StartRecord uint64
	// Records is the page size; zero leaves it to the API (30).
	Records uint
	Details bool
}

func (f HistoryFilter) params() map[string]string {
	p := map[string]string{
		"details": strconv.FormatBool(f.Details),
	}
	if types := joinSet(f.Types, operationTypeNames[:]); types != "" {
		p["types"] = types
	}
	if f.Label != "" {
		p["label"] = f.Label
	}
	if f.From != nil {
		p["from"] = f.From.Format(time.RFC3339)
	}
	if f.Till != nil {
		p["till"] = f.Till.Format(time.RFC3339)
	}
	if f.Records > 0 {
		p["records"] = strconv.FormatUint(uint64(f.Records), 10)
	}
	return p
}

// OperationHistory returns a lazy sequence over the history pages. Each range
// over the sequence starts again at filter.StartRecord. A page is fetched only
// after every operation of the previous page has been consumed. A failure is
// yielded once with a zero Operation and ends the sequence.
func (c *Client) OperationHistory(ctx context.Context, filter HistoryFilter) iter.Seq2[Operation, error] {
	base := filter.params()

	return func(yield func(Operation, error) bool) {
		cursor := filter.StartRecord
		for {
			params := make(map[string]string, len(base)+1)
			for k, v := range base {
				params[k] = v
			}
			params["start_record"] = strconv.FormatUint(cursor, 10)

			page, err := call[OperationHistoryResponse](ctx, c.transport, EndpointOperationHistory, params)
			if err != nil {
				yield(Operation{}, err)
				return
			}

			c.logger.Debug().
				Uint64("start_record", cursor).
				Int("operations", len(page.Operations)).
				Msg("Fetched history page")

			// An empty page ends the history even if next_record is set.
			if len(page.Operations) == 0 {
				return
			}

			for _, op := range page.Operations {
				if !yield(op, nil) {
					return
				}
			}

			if page.NextRecord == nil {
				return
			}
			cursor = uint64(*page.NextRecord)
		}
	}
}
