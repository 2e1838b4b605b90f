package di

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnome-randr.dev/cli/internal/core/display"
	"gnome-randr.dev/cli/internal/core/ports"
	"gnome-randr.dev/cli/internal/core/query"
	"gnome-randr.dev/cli/internal/core/testfixtures"
	"gnome-randr.dev/cli/internal/infrastructure/dbus"
	"gnome-randr.dev/cli/internal/interfaces/cli"
)

type cannedFetcher struct {
	reply []interface{}
	err   error
}

func (f *cannedFetcher) GetCurrentState(ctx context.Context) ([]interface{}, error) {
	return f.reply, f.err
}

func (f *cannedFetcher) Close() error { return nil }

type recorder struct {
	opts []dbus.Options
}

func (r *recorder) factory(fetcher *cannedFetcher) FetcherFactory {
	return func(opts dbus.Options, logger logrus.FieldLogger) (ports.StateFetcher, io.Closer, error) {
		r.opts = append(r.opts, opts)
		return fetcher, fetcher, nil
	}
}

func run(t *testing.T, container *Container, args ...string) (string, string, error) {
	t.Setenv("GNOME_RANDR_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("GNOME_RANDR_TIMEOUT", "")
	t.Setenv("GNOME_RANDR_LOG_LEVEL", "")
	t.Setenv("GNOME_RANDR_BUS_NAME", "")
	t.Setenv("GNOME_RANDR_OBJECT_PATH", "")

	cmd := cli.NewRootCommand(container.GetCLIContainer())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestContainer_QueryEndToEnd(t *testing.T) {
	rec := &recorder{}
	container := NewContainerWithFetcher(rec.factory(&cannedFetcher{reply: testfixtures.SingleMonitorReply().Build()}))

	out, _, err := run(t, container)
	require.NoError(t, err)

	assert.Contains(t, out, "DP-1: vendor: DEL, product: DELL U2415, serial: 0x0001")
	assert.Contains(t, out, "1920x1080@60 [current, preferred]")
	assert.Contains(t, out, "logical monitor 0: position (0,0), scale 1, transform normal, primary")

	require.Len(t, rec.opts, 1)
	assert.Equal(t, dbus.DefaultOptions(), rec.opts[0])
}

func TestContainer_UnknownConnector(t *testing.T) {
	rec := &recorder{}
	container := NewContainerWithFetcher(rec.factory(&cannedFetcher{reply: testfixtures.SingleMonitorReply().Build()}))

	out, _, err := run(t, container, "query", "--connector", "DP-2")

	var unknown *query.UnknownConnectorError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "DP-2", unknown.Connector)
	assert.Equal(t, []string{"DP-1"}, unknown.Known)
	assert.Empty(t, out)
}

func TestContainer_DanglingReference(t *testing.T) {
	dp1 := testfixtures.NewMonitorBuilder("DP-1")
	reply := testfixtures.NewReplyBuilder().
		WithMonitor(dp1).
		WithLogicalMonitor(testfixtures.NewLogicalMonitorBuilder(testfixtures.NewMonitorBuilder("DP-3"))).
		Build()
	container := NewContainerWithFetcher((&recorder{}).factory(&cannedFetcher{reply: reply}))

	_, _, err := run(t, container)

	var dangling *display.DanglingReferenceError
	require.True(t, errors.As(err, &dangling))
	assert.Equal(t, "DP-3", dangling.Connector)
}

func TestContainer_TransportError(t *testing.T) {
	transportErr := &dbus.TransportError{Op: "GetCurrentState", Err: context.DeadlineExceeded}
	container := NewContainerWithFetcher((&recorder{}).factory(&cannedFetcher{err: transportErr}))

	_, _, err := run(t, container)

	var got *dbus.TransportError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "GetCurrentState", got.Op)
}

func TestContainer_FlagsReachTransport(t *testing.T) {
	rec := &recorder{}
	container := NewContainerWithFetcher(rec.factory(&cannedFetcher{reply: testfixtures.SingleMonitorReply().Build()}))

	_, stderr, err := run(t, container, "--timeout", "2s", "--verbose")
	require.NoError(t, err)

	require.Len(t, rec.opts, 1)
	assert.Equal(t, 2*time.Second, rec.opts[0].Timeout)
	assert.Contains(t, stderr, "loaded display state", "debug logs go to stderr")
}

func TestContainer_ConnectionFailure(t *testing.T) {
	connectErr := errors.New("no session bus")
	container := NewContainerWithFetcher(func(opts dbus.Options, logger logrus.FieldLogger) (ports.StateFetcher, io.Closer, error) {
		return nil, nil, connectErr
	})

	_, _, err := run(t, container)
	assert.ErrorIs(t, err, connectErr)
}
