/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Command echo-http is a minimal HTTP/1.1 echo server built on the xnet
// façade, grounded in original_source/examples/http-server.c: parse a
// listener address/port, accept peers, and respond with the request body
// echoed back once a full request has been parsed.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	xnet "github.com/kala13x/libxutils-sub001"
	"github.com/kala13x/libxutils-sub001/httpcodec"
)

func main() {
	addr := flag.String("a", "0.0.0.0", "listener address")
	port := flag.Int("p", 8080, "listener port")
	flag.Parse()

	logger := slog.Default()
	api := xnet.NewApi()
	api.Init(handle, logger, nil, true)

	if _, err := api.Listen(xnet.Endpoint{Protocol: xnet.ProtoHTTP, Addr: *addr, Port: *port}); err != nil {
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
	case xnet.Read:
		msg, ok := conn.Packet.(*httpcodec.Message)
		if !ok {
			return xnet.Continue
		}
		body, _ := msg.GetBody()

		resp := httpcodec.New(0, 0)
		resp.InitResponse(200, "HTTP/1.1")
		resp.AddHeader("Content-Type", "text/plain")
		if err := ctx.Api.PutTx(conn, resp.Assemble(body)); err != nil && logger != nil {
			logger.Error("assemble response failed", "err", err)
		}
		return xnet.Continue
	case xnet.Complete:
		return xnet.Disconnect
	default:
		return xnet.Continue
	}
}
