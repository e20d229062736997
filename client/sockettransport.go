package client

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/mindloom/insightserver/pkg/handler"
)

type socketTransport struct {
	connPool *connectionPool
}

func newSocketTransport(server string, connectionPoolSize int, waitTimeout time.Duration) transport {
	return &socketTransport{
		connPool: newConnectionPool(server, connectionPoolSize, waitTimeout),
	}
}

func (st *socketTransport) shutdown() {
	if st.connPool.chanDrainPool != nil {
		st.connPool.chanDrainPool <- 1
	}
}

func (st *socketTransport) call(route handler.Route, request interface{}, response interface{}) error {
	if st.connPool.chanDrainPool == nil {
		return errors.New("connection pool has been drained, client is dead")
	}
	jsonBytes, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "could not marshal request")
	}
	netChan := make(chan net.Conn)
	st.connPool.chanConnGet <- netChan
	conn := <-netChan
	if conn == nil {
		return errors.New("could not get a connection")
	}
	returnConn := func(err error) {
		st.connPool.chanConnReturn <- connReturn{
			conn: conn,
			err:  err,
		}
	}
	// write header, result will be like route:2{}
	jsonBytes = append([]byte(fmt.Sprintf("%s:%d", route, len(jsonBytes))), jsonBytes...)

	// send request
	written := 0
	l := len(jsonBytes)
	for written < l {
		n, err := conn.Write(jsonBytes[written:])
		if err != nil {
			returnConn(err)
			return errors.Wrap(err, "failed to send request")
		}
		written += n
	}

	// read response
	responseBytes := []byte{}
	buf := make([]byte, 4096)
	responseLength := 0
	for {
		n, err := conn.Read(buf)
		if err != nil && err != io.EOF {
			returnConn(err)
			return errors.Wrap(err, "an error occurred while reading the response")
		}
		if n == 0 {
			break
		}
		responseBytes = append(responseBytes, buf[0:n]...)
		if responseLength == 0 {
			for index, b := range responseBytes {
				if b == '{' {
					responseLength, err = strconv.Atoi(string(responseBytes[0:index]))
					if err != nil {
						returnConn(err)
						return errors.Wrap(err, "could not read response length")
					}
					responseBytes = responseBytes[index:]
					break
				}
			}
		}
		if responseLength > 0 && len(responseBytes) == responseLength {
			break
		}
	}
	returnConn(nil)
	return unmarshalReply(responseBytes, response)
}
