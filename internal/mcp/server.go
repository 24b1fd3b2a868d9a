package mcp

import (
	"context"
	"io"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/berrypatch/member-berries/internal/logger"
	"github.com/berrypatch/member-berries/internal/tools"
)

// Server speaks newline-delimited JSON-RPC 2.0 over a byte stream,
// typically stdio.
type Server struct {
	registry *tools.Registry
	handler  *Handler
}

func NewServer(registry *tools.Registry) *Server {
	return &Server{
		registry: registry,
		handler:  NewHandler(registry),
	}
}

func (s *Server) Registry() *tools.Registry {
	return s.registry
}

// Serve runs the protocol loop until the peer disconnects or ctx is
// canceled.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	log := logger.ForComponent("mcp")

	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.PlainObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.AsyncHandler(s.handler))
	defer conn.Close()

	log.Info("server listening")

	select {
	case <-conn.DisconnectNotify():
		log.Info("client disconnected")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stdio returns a ReadWriteCloser over the process's stdin/stdout pair.
func Stdio() io.ReadWriteCloser {
	return &stdioPipe{reader: os.Stdin, writer: os.Stdout}
}

type stdioPipe struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioPipe) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s *stdioPipe) Write(p []byte) (int, error) { return s.writer.Write(p) }

func (s *stdioPipe) Close() error {
	rerr := s.reader.Close()
	werr := s.writer.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}
