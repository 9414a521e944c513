package server

import (
	"context"
	"net"
	"net/http"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const unavailable = "Not available"

// commandContext is swapped in tests.
var commandContext = exec.CommandContext

// dialUDP is swapped in tests. No packets are sent by a UDP dial.
var dialUDP = func() (net.Conn, error) {
	return net.DialTimeout("udp4", "8.8.8.8:80", time.Second)
}

type serverInfoResponse struct {
	LocalIP     string `json:"local_ip"`
	TailscaleIP string `json:"tailscale_ip"`
	Port        int    `json:"port"`
}

func (s *Server) handleServerInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, serverInfoResponse{
		LocalIP:     localIP(),
		TailscaleIP: tailscaleIP(r.Context()),
		Port:        s.port(),
	})
}

// localIP returns the address of the interface that routes to the internet.
func localIP() string {
	conn, err := dialUDP()
	if err != nil {
		return "Unable to detect"
	}
	defer conn.Close()
	host, _, err := net.SplitHostPort(conn.LocalAddr().String())
	if err != nil {
		return "Unable to detect"
	}
	return host
}

func tailscaleIP(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	out, err := commandContext(ctx, "tailscale", "ip", "-4").Output()
	if err != nil {
		return unavailable
	}
	ip := strings.TrimSpace(string(out))
	if ip == "" {
		return unavailable
	}
	return ip
}

func (s *Server) port() int {
	_, port, err := net.SplitHostPort(s.Addr())
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return 0
	}
	return n
}
