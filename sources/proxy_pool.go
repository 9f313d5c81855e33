package sources

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"golang.org/x/net/proxy"
)

const clientTimeout = 15 * time.Second

// ProxyPool hands out HTTP clients in round-robin order, one per configured
// proxy. An empty pool has a single direct client.
type ProxyPool struct {
	clients []*http.Client
	hosts   []string
	index   atomic.Uint64
}

func NewProxyPool(proxyURLs []string) (*ProxyPool, error) {
	if len(proxyURLs) == 0 {
		return &ProxyPool{
			clients: []*http.Client{{Timeout: clientTimeout}},
			hosts:   []string{"direct"},
		}, nil
	}

	clients := make([]*http.Client, 0, len(proxyURLs))
	hosts := make([]string, 0, len(proxyURLs))
	seen := make(map[string]bool)

	for _, proxyURL := range proxyURLs {
		if seen[proxyURL] {
			if parsed, err := url.Parse(proxyURL); err == nil {
				slog.Warn("duplicate proxy URL, skipping", "host", parsed.Host)
			}
			continue
		}
		seen[proxyURL] = true

		client, err := createClient(proxyURL)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)

		// Extract host only (no credentials)
		if parsed, err := url.Parse(proxyURL); err == nil {
			hosts = append(hosts, parsed.Host)
		} else {
			hosts = append(hosts, "unknown")
		}
	}

	slog.Info("proxy pool created", "count", len(clients), "hosts", hosts)

	return &ProxyPool{clients: clients, hosts: hosts}, nil
}

// NewClientPool wraps existing clients, mainly for tests.
func NewClientPool(clients ...*http.Client) (*ProxyPool, error) {
	if len(clients) == 0 {
		return nil, errors.New("no clients provided")
	}
	hosts := make([]string, len(clients))
	for i := range clients {
		hosts[i] = "client"
	}
	return &ProxyPool{clients: clients, hosts: hosts}, nil
}

func createClient(proxyURL string) (*http.Client, error) {
	client := &http.Client{Timeout: clientTimeout}

	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return nil, err
	}

	if parsedURL.Scheme != "socks5" {
		client.Transport = &http.Transport{Proxy: http.ProxyURL(parsedURL)}
		return client, nil
	}

	var auth *proxy.Auth
	if parsedURL.User != nil {
		password, _ := parsedURL.User.Password()
		auth = &proxy.Auth{
			User:     parsedURL.User.Username(),
			Password: password,
		}
	}

	dialer, err := proxy.SOCKS5("tcp", parsedURL.Host, auth, proxy.Direct)
	if err != nil {
		return nil, err
	}

	client.Transport = &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
	}

	return client, nil
}

// Next returns the next client and the host it goes through.
func (p *ProxyPool) Next() (*http.Client, string) {
	idx := p.index.Add(1) - 1
	i := int(idx % uint64(len(p.clients)))
	return p.clients[i], p.hosts[i]
}

func (p *ProxyPool) Size() int {
	return len(p.clients)
}
