package bridge

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// socks4 support is hand-rolled because golang.org/x/net/proxy only
// speaks SOCKS5. The protocol is a single request/reply exchange, with
// the 4a extension used for hostname targets.

type socks4 struct {
	addr string
}

func socks4Dialer(addr string) *socks4 {
	return &socks4{addr: addr}
}

func (s *socks4) DialContext(ctx context.Context, network, target string) (net.Conn, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	req := []byte{4, 1, 0, 0}
	binary.BigEndian.PutUint16(req[2:4], uint16(port))

	ip := net.ParseIP(host)
	if ip4 := ip.To4(); ip4 != nil {
		req = append(req, ip4...)
		req = append(req, 0) // empty userid
	} else {
		// SOCKS4a: sentinel address 0.0.0.1, hostname after the userid.
		req = append(req, 0, 0, 0, 1, 0)
		req = append(req, []byte(host)...)
		req = append(req, 0)
	}

	if _, err := conn.Write(req); err != nil {
		conn.Close()
		return nil, err
	}

	reply := make([]byte, 8)
	if _, err := io.ReadFull(conn, reply); err != nil {
		conn.Close()
		return nil, err
	}
	if reply[1] != 0x5A {
		conn.Close()
		return nil, fmt.Errorf("socks4 request rejected with code %#x", reply[1])
	}

	conn.SetDeadline(time.Time{})
	return conn, nil
}
