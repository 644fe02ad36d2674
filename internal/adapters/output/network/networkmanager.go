package network

import (
	"context"
	"fmt"
	"speaker-remote/internal/domain/model"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	nmDest = "org.freedesktop.NetworkManager"
	nmPath = dbus.ObjectPath("/org/freedesktop/NetworkManager")

	// NM_STATE_CONNECTED_LOCAL; speakers are usually on the LAN.
	nmStateConnectedLocal = 50
)

// NetworkManager drives NetworkManager over the system D-Bus.
type NetworkManager struct {
	conn         *dbus.Conn
	pollInterval time.Duration
	timeout      time.Duration
}

func NewNetworkManager(timeout time.Duration) (*NetworkManager, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("system bus: %w", err)
	}
	return &NetworkManager{
		conn:         conn,
		pollInterval: 250 * time.Millisecond,
		timeout:      timeout,
	}, nil
}

func (m *NetworkManager) Connected(_ context.Context) (bool, error) {
	v, err := m.conn.Object(nmDest, nmPath).GetProperty(nmDest + ".State")
	if err != nil {
		return false, err
	}
	state, ok := v.Value().(uint32)
	if !ok {
		return false, fmt.Errorf("unexpected NetworkManager state %v", v.Value())
	}
	return state >= nmStateConnectedLocal, nil
}

// Connect adds and activates a wireless connection on iface, then waits for
// NetworkManager to report connectivity.
func (m *NetworkManager) Connect(ctx context.Context, iface string, creds model.Credentials) error {
	nm := m.conn.Object(nmDest, nmPath)

	var device dbus.ObjectPath
	if err := nm.CallWithContext(ctx, nmDest+".GetDeviceByIpIface", 0, iface).Store(&device); err != nil {
		return fmt.Errorf("find device %s: %w", iface, err)
	}

	settings := map[string]map[string]dbus.Variant{
		"connection": {
			"id":   dbus.MakeVariant(creds.SSID),
			"type": dbus.MakeVariant("802-11-wireless"),
		},
		"802-11-wireless": {
			"ssid": dbus.MakeVariant([]byte(creds.SSID)),
			"mode": dbus.MakeVariant("infrastructure"),
		},
	}
	if creds.Secret != "" {
		settings["802-11-wireless-security"] = map[string]dbus.Variant{
			"key-mgmt": dbus.MakeVariant("wpa-psk"),
			"psk":      dbus.MakeVariant(creds.Secret),
		}
	}

	var connPath, activePath dbus.ObjectPath
	call := nm.CallWithContext(ctx, nmDest+".AddAndActivateConnection", 0, settings, device, dbus.ObjectPath("/"))
	if err := call.Store(&connPath, &activePath); err != nil {
		return fmt.Errorf("activate connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		if up, err := m.Connected(ctx); err == nil && up {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", activePath, ctx.Err())
		case <-ticker.C:
		}
	}
}
