// keybridge-host - Reference host-side consumer for the keybridge event
// protocol. It listens where keybridged dials, prints each event as a JSON
// line, and acknowledges every tracked event.
//
//	keybridge-host -listen unix:/tmp/keybridge.sock
//	keybridge-host -listen tcp:127.0.0.1:7465 -unhandled
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"keybridge/internal/host"
	"keybridge/internal/logging"
)

// printedEvent is the JSON line written for each received event.
type printedEvent struct {
	Timestamp   int64  `json:"timestamp_us"`
	Type        string `json:"type"`
	Physical    string `json:"physical"`
	Logical     string `json:"logical"`
	Character   string `json:"character,omitempty"`
	Synthesized bool   `json:"synthesized,omitempty"`
	Token       uint64 `json:"token,omitempty"`
}

func main() {
	listen := parseFlags()
	fmt.Fprintln(os.Stderr, "listening on", listen.addr)

	ln, err := net.Listen(listen.network, listen.addr)
	if err != nil {
		fatal("listen: %v", err)
	}
	defer ln.Close()
	if listen.network == "unix" {
		defer os.Remove(listen.addr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		ln.Close()
	}()

	logger := logging.Default().WithComponent("host")
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		logger.Info("daemon connected", "remote", conn.RemoteAddr().String())
		serve(conn, listen.handled, logger)
		logger.Info("daemon disconnected")
	}
}

type listenSpec struct {
	network string
	addr    string
	handled bool
}

func parseFlags() listenSpec {
	listen := flag.String("listen", "tcp:127.0.0.1:7465", "network:address to listen on (unix:PATH or tcp:HOST:PORT)")
	unhandled := flag.Bool("unhandled", false, "acknowledge events as not handled")
	flag.Parse()

	network, addr, ok := strings.Cut(*listen, ":")
	if !ok || (network != "unix" && network != "tcp") {
		fatal("bad -listen %q, want unix:PATH or tcp:HOST:PORT", *listen)
	}
	return listenSpec{network: network, addr: addr, handled: !*unhandled}
}

// serve consumes one daemon connection until it closes: each event frame
// is printed, and tracked events are acknowledged on the same connection.
func serve(conn net.Conn, handled bool, logger *logging.Logger) {
	defer conn.Close()
	enc := json.NewEncoder(os.Stdout)

	for {
		h, payload, err := host.ReadFrame(conn)
		if err != nil {
			return
		}
		if h.Type != host.MsgEvent {
			logger.Warn("unexpected frame", "type", uint16(h.Type))
			continue
		}

		ev, token, err := host.DecodeEvent(payload)
		if err != nil {
			logger.Warn("bad event frame", "error", err)
			continue
		}

		enc.Encode(printedEvent{
			Timestamp:   ev.Timestamp,
			Type:        ev.Type.String(),
			Physical:    fmt.Sprintf("%#011x", ev.Physical),
			Logical:     fmt.Sprintf("%#011x", ev.Logical),
			Character:   string(ev.Character),
			Synthesized: ev.Synthesized,
			Token:       uint64(token),
		})

		if token != 0 {
			if err := host.WriteFrame(conn, host.MsgAck, host.EncodeAck(token, handled)); err != nil {
				logger.Warn("write acknowledgment", "error", err)
				return
			}
		}
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
