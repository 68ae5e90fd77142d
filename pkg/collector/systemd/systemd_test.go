package systemd

import (
	"context"
	"errors"
	"testing"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	statuses []dbus.UnitStatus
	err      error
	asked    []string
	closed   bool
}

func (f *fakeConn) ListUnitsByNamesContext(_ context.Context, units []string) ([]dbus.UnitStatus, error) {
	f.asked = units
	return f.statuses, f.err
}

func (f *fakeConn) Close() { f.closed = true }

func dialer(conn *fakeConn) Dialer {
	return func(context.Context) (Conn, error) { return conn, nil }
}

func TestCollect(t *testing.T) {
	conn := &fakeConn{statuses: []dbus.UnitStatus{
		{Name: "mbpfan.service", LoadState: "loaded", ActiveState: "active", SubState: "running"},
		{Name: "fan2go.service", LoadState: "not-found", ActiveState: "inactive", SubState: "dead"},
	}}
	c := &Collector{Units: []string{"mbpfan.service", "fan2go.service"}, dial: dialer(conn)}

	units, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, []string{"mbpfan.service", "fan2go.service"}, conn.asked)
	assert.True(t, conn.closed)
	assert.True(t, units[0].Active())
	assert.Equal(t, "running", units[0].SubState)
	assert.False(t, units[1].Active())
	assert.Equal(t, "not-found", units[1].LoadState)
}

func TestCollect_Errors(t *testing.T) {
	t.Run("dial", func(t *testing.T) {
		c := &Collector{
			Units: []string{"mbpfan.service"},
			dial: func(context.Context) (Conn, error) {
				return nil, errors.New("no bus")
			},
		}
		_, err := c.Collect(context.Background())
		assert.ErrorContains(t, err, "failed to connect to systemd")
	})

	t.Run("list", func(t *testing.T) {
		conn := &fakeConn{err: errors.New("access denied")}
		c := &Collector{Units: []string{"mbpfan.service"}, dial: dialer(conn)}
		_, err := c.Collect(context.Background())
		assert.ErrorContains(t, err, "failed to list units")
		assert.True(t, conn.closed)
	})
}

func TestCollect_NoUnits(t *testing.T) {
	c := &Collector{dial: func(context.Context) (Conn, error) {
		t.Fatal("must not dial without units")
		return nil, nil
	}}
	units, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestUnit_Active(t *testing.T) {
	for state, want := range map[string]bool{
		"active":       true,
		"activating":   true,
		"reloading":    true,
		"inactive":     false,
		"failed":       false,
		"deactivating": false,
	} {
		assert.Equal(t, want, Unit{ActiveState: state}.Active(), state)
	}
}

func TestNewCollector(t *testing.T) {
	c := NewCollector([]string{"mbpfan.service"})
	assert.Equal(t, []string{"mbpfan.service"}, c.Units)
	assert.NotNil(t, c.dial)
}
