package nats

import (
	"os"
	"sync"

	natsgo "github.com/nats-io/nats.go"
)

type closeFunc = func()

// Connector opens a NATS connection and returns the function that releases it
type Connector func() (nc *natsgo.Conn, close closeFunc, err error)

// ReuseConnection shares one connection between all callers of the returned
// Connector; the connection closes when the last lease is released.
func ReuseConnection(connect Connector) Connector {
	var (
		mu       sync.Mutex
		nc       *natsgo.Conn
		closeCon closeFunc
		leased   int
	)
	release := func() {
		mu.Lock()
		defer mu.Unlock()
		leased--
		if leased == 0 {
			closeCon()
			nc = nil
		}
	}
	return func() (*natsgo.Conn, closeFunc, error) {
		mu.Lock()
		defer mu.Unlock()
		if nc == nil {
			var err error
			if nc, closeCon, err = connect(); err != nil {
				return nil, nil, err
			}
		}
		leased++
		var once sync.Once
		return nc, func() { once.Do(release) }, nil
	}
}

func ConnectURL(natsURL string) Connector {
	return func() (*natsgo.Conn, closeFunc, error) {
		nc, err := natsgo.Connect(
			natsURL,
			natsgo.Name("ddmesh"),
			natsgo.MaxReconnects(3),
		)
		if err != nil {
			return nil, nil, err
		}
		return nc, func() { nc.Close() }, nil
	}
}

// ConnectDefault connects to $NATS_URL, or the default local server
func ConnectDefault() Connector {
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		return ConnectURL(natsURL)
	}
	return ConnectURL(natsgo.DefaultURL)
}
