package client_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/nettest"

	"github.com/mindloom/insightserver/client"
	"github.com/mindloom/insightserver/pkg/handler"
)

func BenchmarkSocketClientAndServerGetDaily(b *testing.B) {
	l := zaptest.NewLogger(b)
	socketServer := initSocketArchiveServer(b, l)
	socketClient := client.NewSocketClient(socketServer.Addr().String(), 25, 100*time.Millisecond)
	defer socketClient.ShutDown()
	defer socketServer.Close()
	benchmarkServerAndClientGetDaily(b, 30, 100, socketClient)
}

func initSocketArchiveServer(tb testing.TB, l *zap.Logger) net.Listener {
	tb.Helper()
	a := initArchive(tb, l)
	h := handler.NewSocket(l, a)

	// listen on socket
	ln, err := nettest.NewLocalListener("tcp")
	require.NoError(tb, err)

	go func() {
		for {
			// this blocks until connection or error
			conn, err := ln.Accept()
			if errors.Is(err, net.ErrClosed) || errors.Is(err, context.Canceled) {
				return
			} else if err != nil {
				tb.Error("runSocketServer: could not accept connection", err.Error())
				continue
			}

			// a goroutine handles conn so that the loop can accept other connections
			go func() {
				h.Serve(conn)
			}()
		}
	}()

	return ln
}
