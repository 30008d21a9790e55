package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	grpcapi "speech-transcript-formatter/internal/api/grpc"
	"speech-transcript-formatter/internal/service/stt/mock"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "gRPC server address")
	sample := flag.Int("sample", 0, "Index of the canned sample to send")
	speakerID := flag.Bool("speakerid", true, "Send the speaker timeline")
	flag.Parse()

	if *sample < 0 || *sample >= len(mock.DefaultSamples) {
		log.Fatalf("sample must be in [0, %d)", len(mock.DefaultSamples))
	}
	s := mock.DefaultSamples[*sample]

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("Connected to server: sample=%s", s.Name)

	client := grpcapi.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.Render(ctx, grpcapi.NewRequest(s.Transcript, s.Diarization, *speakerID))
	if err != nil {
		log.Fatalf("failed to render: %v", err)
	}

	log.Printf("Received document: runId=%s path=%s mode=%s speakers=%d",
		resp.RunID, resp.Path, resp.Mode, len(resp.Speakers))
	fmt.Print(resp.Markdown)
}
