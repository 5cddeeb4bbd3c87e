package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/blackwell-systems/ga4diag/internal/report"
	"go.uber.org/zap"
)

// maxLineBytes bounds a single JSON-RPC message.
const maxLineBytes = 1 << 20

// Server answers MCP requests. Every report tool runs on behalf of the
// credential fixed at construction, so the gate applies exactly as it does
// over HTTP.
type Server struct {
	pipeline   *report.Pipeline
	credential string
	version    string
	log        *zap.Logger

	tools map[string]tool
	order []string
}

type tool struct {
	info   toolInfo
	handle toolFunc
}

// toolFunc runs one tool call. The result is marshaled to JSON text.
type toolFunc func(ctx context.Context, args json.RawMessage) (any, error)

// NewServer returns a Server with the report tools registered. log may be nil.
func NewServer(p *report.Pipeline, credential, version string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		pipeline:   p,
		credential: credential,
		version:    version,
		log:        log,
		tools:      make(map[string]tool),
	}
	s.addReportTools()
	return s
}

// register adds a tool. Registering a name twice replaces the handler but
// keeps its listing position.
func (s *Server) register(name, description string, schema json.RawMessage, fn toolFunc) {
	if _, ok := s.tools[name]; !ok {
		s.order = append(s.order, name)
	}
	s.tools[name] = tool{
		info:   toolInfo{Name: name, Description: description, InputSchema: schema},
		handle: fn,
	}
}

// Run serves requests read line by line from r, writing one response line to
// w per request. It returns nil on EOF or when ctx is canceled, and an error
// only for read or write failures.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	lines, readErr := readLines(ctx, r)
	bw := bufio.NewWriter(w)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			resp := s.handle(ctx, line)
			if resp == nil {
				continue
			}
			if err := writeLine(bw, resp); err != nil {
				return err
			}
		}
	}
}

// readLines scans r on its own goroutine so Run can stop on ctx while a read
// is blocked. lines is closed on EOF; a scan error is sent on errs instead.
func readLines(ctx context.Context, r io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	errs := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			errs <- err
			return
		}
		close(lines)
	}()
	return lines, errs
}

// handle dispatches one message. It returns nil for notifications.
func (s *Server) handle(ctx context.Context, line []byte) *rpcResponse {
	var req rpcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return &rpcResponse{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "Parse error"}}
	}
	if req.isNotification() {
		return nil
	}

	resp := &rpcResponse{JSONRPC: "2.0", ID: req.ID}
	switch req.Method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": "ga4diag", "version": s.version},
		}
	case "ping":
		resp.Result = map[string]any{}
	case "tools/list":
		infos := make([]toolInfo, 0, len(s.order))
		for _, name := range s.order {
			infos = append(infos, s.tools[name].info)
		}
		resp.Result = map[string]any{"tools": infos}
	case "tools/call":
		var params callParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp.Error = &rpcError{Code: codeInvalidParams, Message: "Invalid params"}
			break
		}
		resp.Result = s.call(ctx, params)
	default:
		resp.Error = &rpcError{Code: codeMethodNotFound, Message: "Method not found"}
	}
	return resp
}

// call runs a tool. Tool failures are reported in the result, not as
// JSON-RPC errors, so the client sees the message.
func (s *Server) call(ctx context.Context, params callParams) callResult {
	t, ok := s.tools[params.Name]
	if !ok {
		return textResult(fmt.Sprintf("unknown tool: %s", params.Name), true)
	}
	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	start := time.Now()
	out, err := t.handle(ctx, args)
	if err != nil {
		s.log.Info("tool call failed",
			zap.String("tool", params.Name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return textResult(err.Error(), true)
	}
	s.log.Debug("tool call", zap.String("tool", params.Name), zap.Duration("duration", time.Since(start)))

	data, err := json.Marshal(out)
	if err != nil {
		return textResult(err.Error(), true)
	}
	return textResult(string(data), false)
}

func writeLine(bw *bufio.Writer, resp *rpcResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := bw.Write(data); err != nil {
		return err
	}
	return bw.Flush()
}
