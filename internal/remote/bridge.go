package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/tweakrunner/internal/ctxlog"
	"github.com/vk/tweakrunner/internal/host"
)

// ErrDisconnected is returned by Serve when the remote host goes away.
var ErrDisconnected = errors.New("remote host disconnected")

const queueSize = 64

// Config locates the remote host.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Socket is the slice of a socket.io client the bridge uses.
type Socket interface {
	On(event string, fn func(args ...any))
	Emit(event string, args ...any) error
	Disconnect()
}

// Bridge connects a host.Entry to a remote host.
type Bridge struct {
	cfg      Config
	entry    *host.Entry
	controls Controls
	events   chan Event
}

// New creates a bridge. Nothing is dialed until Run or Serve.
func New(cfg Config, entry *host.Entry, controls Controls) *Bridge {
	return &Bridge{
		cfg:      cfg,
		entry:    entry,
		controls: controls,
		events:   make(chan Event, queueSize),
	}
}

// Run dials the remote host and serves it until ctx is done or the host
// disconnects.
func (b *Bridge) Run(ctx context.Context) error {
	sock, err := b.Connect(ctx)
	if err != nil {
		return err
	}
	defer sock.Disconnect()
	return b.Serve(ctx, sock)
}

// Connect dials the socket.io server and waits for the namespace to
// connect.
func (b *Bridge) Connect(ctx context.Context) (Socket, error) {
	logger := ctxlog.FromContext(ctx).With("url", b.cfg.URL, "namespace", b.cfg.Namespace)
	logger.Info("Connecting to remote host...")

	parsedURL, err := url.Parse(b.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("remote URL %q needs a scheme and a host", b.cfg.URL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if b.cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(b.cfg.Namespace, opts)

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to remote host.", "sid", io.Id())
		report(connected, nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		report(connected, err)
	})
	io.Connect()

	timeout := b.cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &ioSocket{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// report delivers the first connection outcome. Later outcomes, or any
// outcome nobody waits for after a timeout, are dropped so the socket.io
// callback goroutine never blocks.
func report(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// Serve registers the event listeners on sock and runs the dispatch loop.
// Listeners only enqueue; the loop is the single caller of the host
// callbacks. It returns nil when ctx is done and ErrDisconnected when the
// remote host goes away.
func (b *Bridge) Serve(ctx context.Context, sock Socket) error {
	logger := ctxlog.FromContext(ctx)
	dispatcher := NewDispatcher(b.entry, b.controls, logger)

	gone := make(chan struct{}, 1)
	for _, name := range Inbound {
		sock.On(name, func(args ...any) {
			select {
			case b.events <- Event{Name: name, Args: args}:
			case <-ctx.Done():
			}
		})
	}
	sock.On("disconnect", func(...any) {
		select {
		case gone <- struct{}{}:
		default:
		}
	})
	logger.Debug("Remote bridge listening.", "events", len(Inbound))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Remote bridge stopped.")
			return nil
		case <-gone:
			logger.Warn("Remote host disconnected.")
			return ErrDisconnected
		case ev := <-b.events:
			reply, ok := dispatcher.Handle(ev)
			if !ok {
				continue
			}
			if err := sock.Emit(reply.Event, reply.Payload); err != nil {
				logger.Error("Failed to emit reply.", "event", reply.Event, "error", err)
			}
		}
	}
}

// ioSocket adapts a socket.io client socket to Socket.
type ioSocket struct {
	io *socket.Socket
}

func (s *ioSocket) On(event string, fn func(args ...any)) {
	_ = s.io.On(types.EventName(event), fn)
}

func (s *ioSocket) Emit(event string, args ...any) error {
	return s.io.Emit(event, args...)
}

func (s *ioSocket) Disconnect() {
	s.io.Disconnect()
}
