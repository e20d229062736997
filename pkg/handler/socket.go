package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mindloom/insightserver/pkg/archive"
	"github.com/mindloom/insightserver/pkg/metrics"
	"github.com/mindloom/insightserver/responses"
)

const sourceSocketServer = "socketserver"

type Socket struct {
	l       *zap.Logger
	archive *archive.Archive
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewSocket returns a shiny new socket server
func NewSocket(l *zap.Logger, archive *archive.Archive) *Socket {
	inst := &Socket{
		l:       l.Named("socket"),
		archive: archive,
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Serve reads framed requests (`route:<length>{json}`) off the connection
// until the client goes away. The connection stays open between requests.
func (h *Socket) Serve(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				if !errors.Is(err, io.EOF) {
					h.l.Error("panic in handle connection", zap.Error(err))
				}
			} else {
				h.l.Error("panic in handle connection", zap.String("error", fmt.Sprint(r)))
			}
		}
	}()

	h.l.Debug("socketServer.handleConnection")
	metrics.NumSocketsGauge.WithLabelValues(conn.RemoteAddr().String()).Inc()
	defer metrics.NumSocketsGauge.WithLabelValues(conn.RemoteAddr().String()).Dec()

	var (
		headerBuffer [1]byte
		header       = ""
	)
	for {
		// read with 1 byte steps on conn until we find "{"
		_, readErr := conn.Read(headerBuffer[0:])
		if readErr != nil {
			h.l.Debug("looks like the client closed the connection", zap.Error(readErr))
			return
		}
		current := headerBuffer[0:]
		if string(current) != "{" {
			// adding to header byte by byte
			header += string(current)
			continue
		}

		// json has started
		route, jsonLength, headerErr := h.extractRouteAndJSONLength(header)
		header = ""
		if headerErr != nil {
			h.l.Error("invalid request could not read header", zap.Error(headerErr))
			encodedErr, encodingErr := encodeReply(h.l, responses.NewErrorf(4, "invalid header %s", headerErr.Error()))
			if encodingErr == nil {
				h.writeResponse(conn, encodedErr)
			} else {
				h.l.Error("could not respond to invalid request", zap.Error(encodingErr))
			}
			return
		}
		h.l.Debug("found json", zap.Int("length", jsonLength))
		if jsonLength <= 0 {
			h.l.Error("can not read empty json")
			return
		}

		var (
			jsonBytes         = make([]byte, jsonLength)
			jsonLengthCurrent = 1
		)
		// that is "{"
		jsonBytes[0] = '{'

		for jsonLengthCurrent < jsonLength {
			readLength, jsonReadErr := conn.Read(jsonBytes[jsonLengthCurrent:jsonLength])
			if jsonReadErr != nil {
				h.l.Error("could not read json - giving up with this client connection", zap.Error(jsonReadErr))
				return
			}
			jsonLengthCurrent += readLength
		}

		h.l.Debug("read json", zap.Int("length", len(jsonBytes)))
		h.writeResponse(conn, h.execute(route, jsonBytes))
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *Socket) extractRouteAndJSONLength(header string) (route Route, jsonLength int, err error) {
	headerParts := strings.Split(header, ":")
	if len(headerParts) != 2 {
		return "", 0, errors.New("invalid header")
	}
	jsonLength, err = strconv.Atoi(headerParts[1])
	if err != nil {
		err = fmt.Errorf("could not parse length in header: %q", header)
	}
	return Route(headerParts[0]), jsonLength, err
}

func (h *Socket) execute(route Route, jsonBytes []byte) (reply []byte) {
	h.l.Debug("incoming json buffer", zap.Int("length", len(jsonBytes)))

	if route == RouteGetArchive {
		var b bytes.Buffer
		if err := h.archive.WriteArchiveBytes(context.Background(), &b); err != nil {
			h.l.Error("could not write archive", zap.Error(err))
		}
		return b.Bytes()
	}

	reply, handlingError := handleRequest(context.Background(), h.l, h.archive, route, jsonBytes, sourceSocketServer)
	if handlingError != nil {
		h.l.Error("socketServer.execute failed", zap.Error(handlingError))
	}
	return reply
}

func (h *Socket) writeResponse(conn net.Conn, reply []byte) {
	headerBytes := []byte(strconv.Itoa(len(reply)))
	reply = append(headerBytes, reply...)
	n, writeError := conn.Write(reply)
	if writeError != nil {
		h.l.Error("socketServer.writeResponse: could not write reply", zap.Error(writeError))
		return
	}
	if n < len(reply) {
		h.l.Error("socketServer.writeResponse: write too short",
			zap.Int("got", n),
			zap.Int("expected", len(reply)),
		)
		return
	}
	h.l.Debug("replied. waiting for next request on open connection")
}
