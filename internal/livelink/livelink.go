// Package livelink streams evaluated face graph frames to a socket.io
// preview server.
package livelink

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/facegraph/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// FrameEvent is the event name every frame is emitted under.
const FrameEvent = "face_frame"

// DefaultConnectTimeout bounds Dial when Options.ConnectTimeout is zero.
const DefaultConnectTimeout = 15 * time.Second

// ErrConnect is returned when the preview server cannot be reached.
var ErrConnect = errors.New("live link connection failed")

// Frame is one evaluated frame: the final value of every output node.
type Frame struct {
	Frame  int                `json:"frame"`
	Time   float32            `json:"time"`
	Values map[string]float32 `json:"values"`
}

// Options configures Dial.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// EmitFunc sends one event.
type EmitFunc func(event string, args ...any)

// Publisher emits frames. It is safe to call Publish from one goroutine at
// a time.
type Publisher struct {
	emit  EmitFunc
	close func()
	sent  int
}

// New returns a publisher sending through emit. Close is a no-op.
func New(emit EmitFunc) *Publisher {
	return &Publisher{emit: emit, close: func() {}}
}

// Dial connects to the socket.io server at opts.URL and waits for the
// connection to be acknowledged.
func Dial(ctx context.Context, opts Options) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("component", "livelink", "url", opts.URL)
	logger.Info("Connecting live link...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("live link URL %q must be absolute", opts.URL)
	}

	sopts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		sopts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sopts)
	io := manager.Socket(opts.Namespace, sopts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Live link connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = ErrConnect
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("%w: %w", ErrConnect, e)
			}
		}
		connectChan <- err
	})

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, err
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("%w: %w", ErrConnect, ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("%w: timed out after %v", ErrConnect, timeout)
	}

	return &Publisher{
		emit: func(event string, args ...any) { io.Emit(event, args...) },
		close: func() {
			logger.Info("Closing live link", "sid", io.Id())
			io.Disconnect()
		},
	}, nil
}

// Publish emits f as a FrameEvent.
func (p *Publisher) Publish(ctx context.Context, f Frame) {
	ctxlog.FromContext(ctx).Debug("Publishing frame", "frame", f.Frame, "values", len(f.Values))
	p.emit(FrameEvent, f)
	p.sent++
}

// Sent returns the number of frames published.
func (p *Publisher) Sent() int { return p.sent }

// Close disconnects the publisher.
func (p *Publisher) Close() {
	p.close()
}
