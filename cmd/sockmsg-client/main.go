// sockmsg-client connects to a sockmsg-server, authenticates against a
// shared preshared key, prints every Message packet it receives, and relays
// stdin lines as outgoing Message packets.
//
// Usage:
//
//	sockmsg-client [options]
//
// Options:
//
//	-addr        Server address to dial (default: "127.0.0.1:5540")
//	-psk         Preshared key both sides must share (required)
//	-id          Client id presented during authentication (default: hostname)
//	-encrypt     Passphrase to AES-encrypt payloads (default: off)
//	-compress    Compress payloads with snappy (default: true)
//
// Example:
//
//	sockmsg-client -addr localhost:5540 -psk correct-horse-battery-staple -id alice
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pion/logging"

	"github.com/haldor/sockrelay/pkg/packet"
	"github.com/haldor/sockrelay/pkg/pipeline"
	"github.com/haldor/sockrelay/pkg/session"
	"github.com/haldor/sockrelay/pkg/transport"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5540", "server address to dial")
	psk := flag.String("psk", "", "preshared key both sides must share (required)")
	clientID := flag.String("id", "", "client id presented during authentication")
	encryptPass := flag.String("encrypt", "", "passphrase to AES-encrypt payloads, empty disables encryption")
	compress := flag.Bool("compress", true, "compress payloads with snappy")
	flag.Parse()

	if *psk == "" {
		log.Fatal("-psk is required")
	}
	if *clientID == "" {
		if host, err := os.Hostname(); err == nil {
			*clientID = host
		} else {
			*clientID = "sockmsg-client"
		}
	}

	loggerFactory := logging.NewDefaultLoggerFactory()

	pcfg := pipeline.DefaultConfig()
	pcfg.PresharedKey = *psk
	pcfg.Compress = *compress
	pcfg.EncryptionPassphrase = *encryptPass

	cfg := session.Config{
		Pipeline:      pcfg,
		ClientID:      *clientID,
		LoggerFactory: loggerFactory,
		Handler: func(s *session.Session, p *packet.Packet) {
			if p.Kind != packet.KindMessage {
				return
			}
			log.Printf("< %s", string(p.Payload))
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, runErr, err := transport.Dial(ctx, *addr, nil, cfg)
	if err != nil {
		log.Fatalf("dial %s: %v", *addr, err)
	}

	go readStdinLines(sess)

	select {
	case <-ctx.Done():
		log.Print("shutting down")
		sess.Close()
		<-runErr
	case err := <-runErr:
		if err != nil {
			log.Fatalf("session ended: %v", err)
		}
	}
}

// readStdinLines waits for sess to reach StateReady, then sends every line
// read from stdin as a Message packet until stdin closes.
func readStdinLines(sess *session.Session) {
	for sess.State() != session.StateReady {
		if sess.State() == session.StateClosed {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := sess.Send(packet.NewMessage(scanner.Text())); err != nil {
			log.Printf("send failed: %v", err)
			return
		}
	}
}
