package dbus

import (
	"context"
	"fmt"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBusName is the well-known name Mutter owns on the session bus.
	DefaultBusName = "org.gnome.Mutter.DisplayConfig"
	// DefaultObjectPath is the object exposing the DisplayConfig interface.
	DefaultObjectPath = "/org/gnome/Mutter/DisplayConfig"
	// DisplayConfigInterface is the D-Bus interface name.
	DisplayConfigInterface = "org.gnome.Mutter.DisplayConfig"
	// GetCurrentStateMethod is the fully qualified method name.
	GetCurrentStateMethod = DisplayConfigInterface + ".GetCurrentState"
	// DefaultTimeout bounds the GetCurrentState call.
	DefaultTimeout = 5 * time.Second
)

// TransportError reports a connection, call or timeout failure on the bus.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("display config transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Caller is the subset of godbus.BusObject the client needs.
type Caller interface {
	CallWithContext(ctx context.Context, method string, flags godbus.Flags, args ...interface{}) *godbus.Call
}

// Options addresses the DisplayConfig service.
type Options struct {
	BusName    string
	ObjectPath string
	Timeout    time.Duration
}

// DefaultOptions returns the options for Mutter's display config service.
func DefaultOptions() Options {
	return Options{
		BusName:    DefaultBusName,
		ObjectPath: DefaultObjectPath,
		Timeout:    DefaultTimeout,
	}
}

// DisplayConfigClient fetches display state from the compositor. It
// implements ports.StateFetcher.
type DisplayConfigClient struct {
	conn    *godbus.Conn
	object  Caller
	timeout time.Duration
	logger  logrus.FieldLogger
}

// Connect opens a private session bus connection and binds a proxy to the
// configured service.
func Connect(opts Options, logger logrus.FieldLogger) (*DisplayConfigClient, error) {
	if !godbus.ObjectPath(opts.ObjectPath).IsValid() {
		return nil, &TransportError{Op: "connect", Err: errors.Errorf("invalid object path %q", opts.ObjectPath)}
	}

	conn, err := godbus.ConnectSessionBus()
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: errors.Wrap(err, "failed to connect to session bus")}
	}

	logger.WithFields(logrus.Fields{
		"bus_name":    opts.BusName,
		"object_path": opts.ObjectPath,
		"timeout":     opts.Timeout,
	}).Debug("connected to session bus")

	client := NewDisplayConfigClient(conn.Object(opts.BusName, godbus.ObjectPath(opts.ObjectPath)), opts.Timeout, logger)
	client.conn = conn
	return client, nil
}

// NewDisplayConfigClient wraps an existing bus object. A non-positive
// timeout falls back to DefaultTimeout.
func NewDisplayConfigClient(object Caller, timeout time.Duration, logger logrus.FieldLogger) *DisplayConfigClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DisplayConfigClient{
		object:  object,
		timeout: timeout,
		logger:  logger,
	}
}

// GetCurrentState calls GetCurrentState once. There are no retries; a
// failure or timeout is returned as a *TransportError.
func (c *DisplayConfigClient) GetCurrentState(ctx context.Context) ([]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	call := c.object.CallWithContext(ctx, GetCurrentStateMethod, 0)
	if call == nil {
		return nil, &TransportError{Op: "GetCurrentState", Err: errors.New("no call issued")}
	}
	if call.Err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &TransportError{
				Op:  "GetCurrentState",
				Err: errors.Wrapf(ctx.Err(), "no reply within %s", c.timeout),
			}
		}
		return nil, &TransportError{Op: "GetCurrentState", Err: errors.Wrap(call.Err, "call failed")}
	}

	c.logger.WithFields(logrus.Fields{
		"values":  len(call.Body),
		"elapsed": time.Since(start),
	}).Debug("received display state")
	return call.Body, nil
}

// Close releases the bus connection, if the client owns one.
func (c *DisplayConfigClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
