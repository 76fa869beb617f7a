// sockmsg-server runs a framed-packet relay server: it accepts TCP
// connections, authenticates each one against a shared preshared key, and
// relays every Message packet it receives back out to every other
// connected client.
//
// Usage:
//
//	sockmsg-server [options]
//
// Options:
//
//	-addr        Listen address (default: ":5540")
//	-psk         Preshared key both sides must share (required)
//	-encrypt     Passphrase to AES-encrypt payloads (default: off)
//	-compress    Compress payloads with snappy (default: true)
//	-idle        Idle connection timeout (default: 2m)
//
// Example:
//
//	sockmsg-server -addr :5540 -psk correct-horse-battery-staple
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/pion/logging"

	"github.com/haldor/sockrelay/pkg/packet"
	"github.com/haldor/sockrelay/pkg/pipeline"
	"github.com/haldor/sockrelay/pkg/server"
	"github.com/haldor/sockrelay/pkg/session"
)

func main() {
	addr := flag.String("addr", ":5540", "listen address")
	psk := flag.String("psk", "", "preshared key both sides must share (required)")
	encryptPass := flag.String("encrypt", "", "passphrase to AES-encrypt payloads, empty disables encryption")
	compress := flag.Bool("compress", true, "compress payloads with snappy")
	idle := flag.Duration("idle", session.DefaultIdleTimeout, "idle connection timeout")
	flag.Parse()

	if *psk == "" {
		log.Fatal("-psk is required")
	}

	loggerFactory := logging.NewDefaultLoggerFactory()

	pcfg := pipeline.DefaultConfig()
	pcfg.PresharedKey = *psk
	pcfg.Compress = *compress
	pcfg.EncryptionPassphrase = *encryptPass

	var srv *server.Server

	relay := func(from *session.Session, p *packet.Packet) {
		if p.Kind != packet.KindMessage {
			return
		}
		log.Printf("%s (%s): %s", from.RemoteAddr(), from.PeerClientID(), string(p.Payload))
		for _, other := range srv.Sessions() {
			if other == from {
				continue
			}
			relayed := packet.NewMessage(string(p.Payload))
			if err := other.Send(relayed); err != nil {
				log.Printf("relay to %s failed: %v", other.RemoteAddr(), err)
			}
		}
	}

	srv, err := server.New(server.Config{
		ListenAddr: *addr,
		Session: session.Config{
			Pipeline:      pcfg,
			IdleTimeout:   *idle,
			LoggerFactory: loggerFactory,
			Handler:       relay,
		},
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		log.Fatalf("create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("start server: %v", err)
	}
	log.Printf("sockmsg-server listening on %s", srv.Addr())

	<-ctx.Done()
	log.Print("shutting down")
	if err := srv.Close(); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
