package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/padmotion/padmotion/apitypes"
	"github.com/padmotion/padmotion/concurrent"
	"github.com/padmotion/padmotion/internal/server/api/auth"
)

var wsRegex = regexp.MustCompile(`\s`)

// Server implements the small TCP management API.
//
// Request framing is `<path>[ <payload>]\x00`. Plain requests get one JSON
// line back and the connection is closed. Stream requests get a
// StreamOpenResponse line and the connection is handed to the stream handler.
type Server struct {
	ln     net.Listener
	logger *slog.Logger
	router *Router
	config ServerConfig
	key    []byte

	ctx    context.Context
	cancel context.CancelFunc
	conns  *concurrent.List[net.Conn]
	wg     sync.WaitGroup
}

// New creates a new API server. Handlers are registered through Router
// before Start.
func New(config ServerConfig, logger *slog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		logger: logger,
		router: NewRouter(),
		config: config,
		ctx:    ctx,
		cancel: cancel,
		conns:  concurrent.New[net.Conn](8),
	}
}

// Router returns the router used by the API server so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the listening address, or nil before Start.
func (a *Server) Addr() net.Addr {
	if a.ln == nil {
		return nil
	}
	return a.ln.Addr()
}

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	if a.config.Password != "" {
		key, err := auth.DeriveKey(a.config.Password)
		if err != nil {
			return fmt.Errorf("derive api key: %w", err)
		}
		a.key = key
	} else if a.config.RequireAuth {
		return errors.New("api: auth required but no password configured")
	}

	ln, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", ln.Addr().String(), "auth", a.key != nil)
	a.wg.Add(1)
	go a.serve()
	return nil
}

// Close stops accepting, closes open connections (streams included) and
// waits for their handlers to return.
func (a *Server) Close() {
	a.cancel()
	if a.ln != nil {
		_ = a.ln.Close()
	}
	for _, c := range a.conns.Snapshot() {
		_ = c.Close()
	}
	a.wg.Wait()
}

func (a *Server) serve() {
	defer a.wg.Done()
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		a.wg.Add(1)
		a.conns.Add(c)
		go func() {
			defer a.wg.Done()
			defer a.conns.Remove(c)
			a.handleConn(c)
		}()
	}
}

func (a *Server) writeError(w io.Writer, err error) {
	apiErr := WrapError(err)
	problemJSON, _ := json.Marshal(apiErr)
	fmt.Fprintf(w, "%s\n", string(problemJSON))
}

func (a *Server) writeOK(w io.Writer, rest string) {
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

// bufferedConn keeps bytes the reader already pulled off the socket.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) { return c.r.Read(p) }

// isClientDisconnect reports whether err only means the peer went away.
func isClientDisconnect(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isLoopback(addr net.Addr) bool {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.IsLoopback()
	}
	return false
}

// secure runs the handshake when the client starts with one. It returns the
// connection to use for the request and whether it is authenticated.
func (a *Server) secure(conn net.Conn, r *bufio.Reader, logger *slog.Logger) (net.Conn, *bufio.Reader, bool, error) {
	if a.key == nil {
		return conn, r, false, nil
	}
	if a.config.ConnectionTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(a.config.ConnectionTimeout))
		defer conn.SetReadDeadline(time.Time{})
	}
	first, err := r.Peek(1)
	if err != nil {
		return nil, nil, false, err
	}
	if first[0] != auth.HandshakeMagic[0] {
		return conn, r, false, nil
	}
	ok, err := auth.IsAuthHandshake(r)
	if err != nil || !ok {
		return conn, r, false, err
	}
	sess, err := auth.ServerHandshake(r, conn, a.key)
	if err != nil {
		return nil, nil, false, err
	}
	wrapped, err := sess.Wrap(&bufferedConn{Conn: conn, r: r}, false)
	if err != nil {
		return nil, nil, false, err
	}
	logger.Debug("api session authenticated")
	return wrapped, bufio.NewReader(wrapped), true, nil
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(a.ctx)
	defer connCancel()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())

	w, r, authed, err := a.secure(conn, bufio.NewReader(conn), connLogger)
	if err != nil {
		connLogger.Warn("api handshake failed", "error", err)
		a.writeError(conn, err)
		return
	}
	if a.key != nil && !authed && (a.config.RequireAuth || !isLoopback(conn.RemoteAddr())) {
		connLogger.Warn("api unauthenticated request rejected")
		a.writeError(w, ErrUnauthorized("authentication required"))
		return
	}

	reqData, err := r.ReadString('\x00')
	if err != nil {
		switch {
		case err == io.EOF && reqData != "":
			connLogger.Error("api incomplete request (no null terminator)")
		case isClientDisconnect(err):
			connLogger.Debug("api client disconnected before request", "error", err)
		default:
			connLogger.Error("read api data", "error", err)
		}
		return
	}
	reqData = strings.TrimSuffix(reqData, "\x00")

	if reqData == "" {
		connLogger.Error("api empty command")
		a.writeError(w, ErrBadRequest("empty request"))
		return
	}

	var path, payload string
	if loc := wsRegex.FindStringIndex(reqData); loc != nil {
		path = reqData[:loc[0]]
		payload = reqData[loc[1]:]
	} else {
		path = reqData
	}

	if path == "" {
		connLogger.Error("api empty path")
		a.writeError(w, ErrBadRequest("empty path"))
		return
	}

	path = strings.ToLower(path)
	connLogger.Info("api cmd", "path", path)

	if h, params := a.router.Match(path); h != nil {
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Error("api handler error", "path", path, "error", err)
			a.writeError(w, err)
			return
		}
		connLogger.Debug("api handler success", "path", path)
		a.writeOK(w, res.JSON)
		return
	}

	if sh, params := a.router.MatchStream(path); sh != nil {
		session := uuid.New()
		streamLogger := connLogger.With("stream", path, "session", session.String())
		open, _ := json.Marshal(apitypes.StreamOpenResponse{Session: session.String(), Stream: path})
		a.writeOK(w, string(open))

		streamLogger.Info("api stream begin")
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		if err := sh(&bufferedConn{Conn: w, r: r}, req, streamLogger); err != nil {
			if isClientDisconnect(err) {
				streamLogger.Info("api stream client disconnected", "error", err)
			} else {
				streamLogger.Error("api stream handler error", "error", err)
			}
		}
		streamLogger.Info("api stream end")
		return
	}

	connLogger.Error("api unknown path", "path", path)
	a.writeError(w, ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}
