package client

import (
	"net"
	"time"
)

type connReturn struct {
	conn net.Conn
	err  error
}

// connectionPool hands out pooled tcp connections to the socket server.
// All state lives in the run loop, callers talk to it through channels.
type connectionPool struct {
	url            string
	chanConnGet    chan chan net.Conn
	chanConnReturn chan connReturn
	chanDrainPool  chan int
}

func newConnectionPool(url string, connectionPoolSize int, waitTimeout time.Duration) *connectionPool {
	connPool := &connectionPool{
		url:            url,
		chanConnGet:    make(chan chan net.Conn),
		chanConnReturn: make(chan connReturn),
		chanDrainPool:  make(chan int),
	}
	go connPool.run(connectionPoolSize, waitTimeout)
	return connPool
}

func (c *connectionPool) run(connectionPoolSize int, waitTimeout time.Duration) {
	type poolEntry struct {
		busy bool
		err  error
		conn net.Conn
	}
	type waitPoolEntry struct {
		entryTime time.Time
		chanConn  chan net.Conn
	}

	var (
		pool     = make(map[int]*poolEntry, connectionPoolSize)
		waitPool = map[int]*waitPoolEntry{}
	)
	for i := 0; i < connectionPoolSize; i++ {
		pool[i] = &poolEntry{
			conn: nil,
			busy: false,
		}
	}
RunLoop:
	for {
		select {
		case <-c.chanDrainPool:
			for _, waitPoolEntry := range waitPool {
				waitPoolEntry.chanConn <- nil
			}
			break RunLoop
		case <-time.After(waitTimeout):
			// fall through to the wait pool cleanup below
		case chanReturnNextConn := <-c.chanConnGet:
			nextI := 0
			for i := range waitPool {
				if i >= nextI {
					nextI = i + 1
				}
			}
			waitPool[nextI] = &waitPoolEntry{
				chanConn:  chanReturnNextConn,
				entryTime: time.Now(),
			}
		case connReturn := <-c.chanConnReturn:
			for _, poolEntry := range pool {
				if connReturn.conn == poolEntry.conn {
					poolEntry.busy = false
					if connReturn.err != nil {
						poolEntry.err = connReturn.err
						poolEntry.conn.Close()
						poolEntry.conn = nil
					}
				}
			}
		}
		// refill connection pool
		for _, poolEntry := range pool {
			if poolEntry.conn == nil {
				newConn, errDial := net.Dial("tcp", c.url)
				poolEntry.err = errDial
				poolEntry.conn = newConn
			}
		}
		// redistribute available connections
		for _, poolEntry := range pool {
			if len(waitPool) == 0 {
				break
			}
			if poolEntry.err == nil && poolEntry.conn != nil && !poolEntry.busy {
				for i, waitPoolEntry := range waitPool {
					poolEntry.busy = true
					delete(waitPool, i)
					waitPoolEntry.chanConn <- poolEntry.conn
					break
				}
			}
		}
		// give up on waiters that outstayed the timeout
		var (
			expired = []int{}
			now     = time.Now()
		)
		for i, waitPoolEntry := range waitPool {
			if now.Sub(waitPoolEntry.entryTime) > waitTimeout {
				expired = append(expired, i)
				waitPoolEntry.chanConn <- nil
			}
		}
		for _, i := range expired {
			delete(waitPool, i)
		}
	}
	c.chanDrainPool = nil
	c.chanConnReturn = nil
	c.chanConnGet = nil
}
