package socketio

import (
	"net"
	"slices"
	"sync"
)

// ConnectionLimiter caps concurrent external (non-loopback) clients.
// Loopback clients are never limited. When a new external client goes
// over the cap the oldest external client is evicted.
type ConnectionLimiter struct {
	mu          sync.Mutex
	maxExternal int
	// oldest first
	externalClients []string
	// clientID -> remote IP
	connections map[string]string
}

// NewConnectionLimiter allows up to maxExternal external clients.
func NewConnectionLimiter(maxExternal int) *ConnectionLimiter {
	return &ConnectionLimiter{
		maxExternal:     maxExternal,
		externalClients: make([]string, 0),
		connections:     make(map[string]string),
	}
}

// TryAdd registers a client and returns the id of any client it evicted.
func (cl *ConnectionLimiter) TryAdd(clientID, remoteAddr string) (evictedID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.connections[clientID]; exists {
		return ""
	}

	ip := hostOf(remoteAddr)
	cl.connections[clientID] = ip
	if isLocalIP(ip) {
		return ""
	}

	cl.externalClients = append(cl.externalClients, clientID)
	if len(cl.externalClients) > cl.maxExternal {
		evictedID = cl.externalClients[0]
		cl.externalClients = cl.externalClients[1:]
		delete(cl.connections, evictedID)
	}
	return evictedID
}

// Remove unregisters a client on disconnect.
func (cl *ConnectionLimiter) Remove(clientID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	ip, exists := cl.connections[clientID]
	if !exists {
		return
	}
	delete(cl.connections, clientID)
	if isLocalIP(ip) {
		return
	}
	cl.externalClients = slices.DeleteFunc(cl.externalClients, func(id string) bool { return id == clientID })
}

// External returns the number of tracked external clients.
func (cl *ConnectionLimiter) External() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.externalClients)
}

// hostOf strips a port from addr if present.
func hostOf(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func isLocalIP(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}
