package config_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zia/pkg/cli/config"
)

func TestPeerConfigure(t *testing.T) {
	clients, err := config.NewPeerForTest([]string{
		"http://10.0.0.2:5000",
		"https://shelter.local",
	}, time.Second).Configure()
	gt.NoError(t, err).Required()
	gt.Array(t, clients).Length(2)

	peers := config.PeerClients(clients)
	gt.Value(t, peers[0].Name()).Equal("http://10.0.0.2:5000")
}

func TestPeerConfigureNone(t *testing.T) {
	clients, err := config.NewPeerForTest(nil, time.Second).Configure()
	gt.NoError(t, err).Required()
	gt.Array(t, clients).Length(0)
}

func TestPeerConfigureInvalidURL(t *testing.T) {
	_, err := config.NewPeerForTest([]string{"ftp://10.0.0.2"}, time.Second).Configure()
	gt.Error(t, err).Is(config.ErrInvalidConfig)
}
