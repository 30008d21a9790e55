// Package grpcapi exposes the render engine as the
// transcript.v1.TranscriptFormatter gRPC service.
package grpcapi

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"speech-transcript-formatter/internal/models"
	"speech-transcript-formatter/internal/schema"
	"speech-transcript-formatter/internal/service/transcript"
)

// Renderer renders one request. *app.Application implements it.
type Renderer interface {
	Render(ctx context.Context, req transcript.Request) (*transcript.Result, error)
}

// Server implements TranscriptFormatterServer.
type Server struct {
	renderer Renderer
}

// Register registers the TranscriptFormatter service on g.
func Register(g *grpc.Server, r Renderer) {
	RegisterTranscriptFormatterServer(g, &Server{renderer: r})
}

// Render formats the transcript in the request.
func (s *Server) Render(ctx context.Context, in *RenderRequest) (*RenderResponse, error) {
	res, err := s.renderer.Render(ctx, transcript.Request{
		Transcript:  in.Transcript,
		Diarization: in.Diarization,
		Diarize:     in.SpeakerID,
		Source:      "grpc",
	})
	if err != nil {
		return nil, toStatus(err)
	}

	log.Debug().
		Str("runId", res.RunID).
		Str("path", string(res.Path)).
		Msg("Render served")

	return &RenderResponse{
		RunID:    res.RunID,
		Path:     string(res.Path),
		Mode:     res.Mode,
		Speakers: res.Legend,
		Document: res.Document,
		Markdown: res.Markdown,
	}, nil
}

// toStatus maps engine errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, schema.ErrContractViolation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// NewRequest builds a RenderRequest for a transcript and an optional timeline.
func NewRequest(tr models.Transcript, turns []models.TimeInterval, speakerID bool) *RenderRequest {
	return &RenderRequest{Transcript: tr, Diarization: turns, SpeakerID: speakerID}
}
