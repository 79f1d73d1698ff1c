package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/solatis/rulefold/internal/fold"
	"github.com/solatis/rulefold/internal/render"
	"github.com/solatis/rulefold/internal/types"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// request is the decoded Consolidate document.
// Either Instrument and Filekind name a mode, or Parameters lists the match
// parameters directly.
type request struct {
	Instrument string       `json:"instrument"`
	Filekind   string       `json:"filekind"`
	Parameters []string     `json:"parameters"`
	Rows       []render.Row `json:"rows"`
}

// Consolidate folds the request rows into a rule table.
// Data problems come back as warnings in the response; only malformed
// requests, unknown modes and cancellation fail the call.
func (s *RuleService) Consolidate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	r, err := decodeRequest(req)
	if err != nil {
		return nil, toStatus(err)
	}
	if s.cfg.MaxRecords > 0 && len(r.Rows) > s.cfg.MaxRecords {
		return nil, toStatus(fmt.Errorf("%w: %d rows exceeds maximum of %d", errBadRequest, len(r.Rows), s.cfg.MaxRecords))
	}

	records := make([]types.Record, 0, len(r.Rows))
	for i, row := range r.Rows {
		rec, err := row.Record(fmt.Sprintf("row %d", i))
		if err != nil {
			return nil, toStatus(fmt.Errorf("%w: %v", errBadRequest, err))
		}
		records = append(records, rec)
	}

	var (
		res  *fold.Result
		mode string
	)
	switch {
	case r.Instrument != "" || r.Filekind != "":
		plan, err := s.registry.Lookup(r.Instrument, r.Filekind)
		if err != nil {
			return nil, toStatus(err)
		}
		mode = plan.Name()
		res, err = plan.Consolidate(ctx, s.engine, records)
		if err != nil {
			return nil, toStatus(err)
		}
	default:
		res, err = s.engine.Consolidate(ctx, r.Parameters, records)
		if err != nil {
			return nil, toStatus(err)
		}
	}

	s.log.Info("consolidate request",
		"run_id", res.RunID,
		"mode", mode,
		"rows", len(records),
		"patterns", res.Stats.Patterns,
		"warnings", len(res.Warnings),
	)

	out, err := encodeResult(render.NewResult(mode, res))
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

func decodeRequest(req *structpb.Struct) (request, error) {
	var r request
	if req == nil {
		return r, fmt.Errorf("%w: empty request", errBadRequest)
	}
	data, err := protojson.Marshal(req)
	if err != nil {
		return r, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if (r.Instrument == "") != (r.Filekind == "") {
		return r, fmt.Errorf("%w: instrument and filekind must be given together", errBadRequest)
	}
	if r.Instrument != "" && len(r.Parameters) > 0 {
		return r, fmt.Errorf("%w: parameters cannot be combined with a mode", errBadRequest)
	}
	return r, nil
}

func encodeResult(res render.Result) (*structpb.Struct, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return out, nil
}
