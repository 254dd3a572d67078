// Package main implements shurufa-engine, the baseline TCP completion server.
package main

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"net"

	shurufa "github.com/aetherime/shurufa"
	"github.com/aetherime/shurufa/baseline"
)

// Server accepts TCP connections and answers baseline suggest/cancel
// requests using a shared, read-only Suggestor.
type Server struct {
	listener net.Listener
	engine   *baseline.Suggestor
}

// NewServer binds addr (host:port) and returns a Server ready to Serve.
func NewServer(addr string, engine *baseline.Suggestor) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{listener: listener, engine: engine}, nil
}

// Addr returns the server's bound network address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections indefinitely, handling each on its own
// goroutine with shared read-only access to the engine.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go handleConn(s.engine, conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.listener.Close()
}

func handleConn(engine *baseline.Suggestor, conn net.Conn) {
	defer conn.Close()

	cancelled := make(map[string]struct{})
	scanner := bufio.NewScanner(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytesTrimSpace(line)) == 0 {
			continue
		}

		var tag shurufa.ClientMessageTag
		if err := json.Unmarshal(line, &tag); err != nil {
			slog.Warn("malformed request", "error", err)
			continue
		}

		switch tag.Type {
		case "cancel":
			var req shurufa.CancelRequest
			if err := json.Unmarshal(line, &req); err != nil {
				slog.Warn("malformed cancel", "error", err)
				continue
			}
			cancelled[req.RequestID] = struct{}{}

		case "suggest":
			var req shurufa.SuggestRequest
			if err := json.Unmarshal(line, &req); err != nil {
				slog.Warn("malformed suggest", "error", err)
				continue
			}
			if _, ok := cancelled[req.RequestID]; ok {
				delete(cancelled, req.RequestID)
				continue
			}
			reply := computeReply(engine, &req)
			if err := writeReply(conn, reply); err != nil {
				return
			}

		default:
			slog.Warn("unknown request type", "type", tag.Type)
		}
	}
}

func computeReply(engine *baseline.Suggestor, req *shurufa.SuggestRequest) shurufa.SuggestionReply {
	result := engine.Suggest(req.Context, req.Cursor, req.MaxLen)
	return shurufa.SuggestionReply{
		Type:         "suggestion",
		RequestID:    req.RequestID,
		Suggestion:   result.Suggestion,
		Confidence:   result.Confidence,
		ReplaceRange: [2]int{result.ReplaceStart, result.ReplaceEnd},
	}
}

func writeReply(conn net.Conn, reply shurufa.SuggestionReply) error {
	data, err := json.Marshal(reply)
	if err != nil {
		slog.Error("failed to marshal reply", "error", err)
		return nil
	}
	data = append(data, '\n')
	_, err = conn.Write(data)
	return err
}

func bytesTrimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isSpaceByte(b[start]) {
		start++
	}
	for end > start && isSpaceByte(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
