package replayserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Matttaylor8910/generals-events-sub000/internal/batch"
	"github.com/Matttaylor8910/generals-events-sub000/internal/replay"
	"github.com/Matttaylor8910/generals-events-sub000/internal/simulation"
)

// Server implements ReplayServiceServer
type Server struct {
	runner *batch.Runner
	sim    *simulation.Simulator
}

var _ ReplayServiceServer = (*Server)(nil)

func NewServer(runner *batch.Runner, sim *simulation.Simulator) *Server {
	return &Server{runner: runner, sim: sim}
}

func (s *Server) Simulate(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error) {
	if len(in.GetValue()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "empty replay blob")
	}
	rep, err := replay.Decode(in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	res, err := s.sim.Run(rep)
	if err != nil {
		return nil, toStatus(err)
	}
	return ResultToStruct(res)
}

func (s *Server) ScoreReplay(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id := in.GetFields()["id"].GetStringValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	server := in.GetFields()["server"].GetStringValue()

	log.Debug().Str("replay_id", id).Str("server", server).Msg("Scoring stored replay")
	item := s.runner.RunOne(ctx, batch.Request{Server: server, ID: id})
	if item.Err != nil {
		return nil, toStatus(item.Err)
	}
	return ResultToStruct(item.Result)
}

// toStatus maps engine and fetch errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, replay.ErrMalformed), errors.Is(err, replay.ErrUnknownServer):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, replay.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}

// ResultToStruct converts a result into its wire form, keeping the JSON
// field names of the HTTP surface.
func ResultToStruct(res *simulation.Result) (*structpb.Struct, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	return out, nil
}

// ResultFromStruct is the inverse of ResultToStruct.
func ResultFromStruct(s *structpb.Struct) (*simulation.Result, error) {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	res := &simulation.Result{}
	if err := json.Unmarshal(raw, res); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return res, nil
}
