package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/service/peer"
	"github.com/urfave/cli/v3"
)

// Peer holds CLI flags listing other instances to sync with
type Peer struct {
	urls     []string
	timeout  time.Duration
	interval time.Duration
}

func (x *Peer) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "peer",
			Usage:       "Base URL of a peer instance (repeatable)",
			Category:    "Peer",
			Sources:     cli.EnvVars("ZIA_PEERS"),
			Destination: &x.urls,
		},
		&cli.DurationFlag{
			Name:        "peer-timeout",
			Usage:       "Timeout of a single request to a peer",
			Category:    "Peer",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("ZIA_PEER_TIMEOUT"),
			Destination: &x.timeout,
		},
		&cli.DurationFlag{
			Name:        "peer-sync-interval",
			Usage:       "Interval between background pulls from peers (0 disables)",
			Category:    "Peer",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("ZIA_PEER_SYNC_INTERVAL"),
			Destination: &x.interval,
		},
	}
}

// Interval returns the background pull interval
func (x *Peer) Interval() time.Duration {
	return x.interval
}

func (x Peer) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("urls", x.urls),
		slog.Duration("timeout", x.timeout),
		slog.Duration("interval", x.interval),
	)
}

// Configure creates a client for each configured peer
func (x *Peer) Configure() ([]*peer.Client, error) {
	clients := make([]*peer.Client, 0, len(x.urls))
	for _, u := range x.urls {
		c, err := peer.New(u, peer.WithTimeout(x.timeout))
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "invalid peer", goerr.V("url", u), goerr.V("cause", err.Error()))
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// PeerClients converts concrete clients to the interface used by the use cases
func PeerClients(clients []*peer.Client) []interfaces.PeerClient {
	out := make([]interfaces.PeerClient, len(clients))
	for i, c := range clients {
		out[i] = c
	}
	return out
}
