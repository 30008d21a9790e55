package grpcapi

import (
	"context"

	"google.golang.org/grpc"

	"speech-transcript-formatter/internal/models"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "transcript.v1.TranscriptFormatter"
	// RenderMethod is the full method name of Render.
	RenderMethod = "/" + ServiceName + "/Render"
)

// RenderRequest asks for one transcript document.
type RenderRequest struct {
	Transcript  models.Transcript     `json:"transcript"`
	Diarization []models.TimeInterval `json:"diarization,omitempty"`
	// SpeakerID selects the diarized path.
	SpeakerID bool `json:"speakerId"`
}

// RenderResponse carries the rendered document.
type RenderResponse struct {
	RunID    string               `json:"runId"`
	Path     string               `json:"path"`
	Mode     string               `json:"mode,omitempty"`
	Speakers []models.LegendEntry `json:"speakers,omitempty"`
	Document models.Document      `json:"document"`
	Markdown string               `json:"markdown"`
}

// TranscriptFormatterServer is the server API of the TranscriptFormatter service.
type TranscriptFormatterServer interface {
	Render(context.Context, *RenderRequest) (*RenderResponse, error)
}

func renderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RenderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TranscriptFormatterServer).Render(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RenderMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TranscriptFormatterServer).Render(ctx, req.(*RenderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc describes the TranscriptFormatter service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TranscriptFormatterServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Render",
			Handler:    renderHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "transcript/v1/formatter",
}

// RegisterTranscriptFormatterServer registers srv on s.
func RegisterTranscriptFormatterServer(s grpc.ServiceRegistrar, srv TranscriptFormatterServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the TranscriptFormatter service using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a client connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Render calls TranscriptFormatter/Render.
func (c *Client) Render(ctx context.Context, in *RenderRequest, opts ...grpc.CallOption) (*RenderResponse, error) {
	out := new(RenderResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, RenderMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
