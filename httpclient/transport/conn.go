package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"

	apperrors "github.com/kbukum/hurl/errors"
	"github.com/kbukum/hurl/logger"
)

// expired is a deadline in the past, used to abort blocked I/O.
var expired = time.Unix(1, 0)

var (
	errConnClosed      = errors.New("connection closed before a response arrived")
	errUnsolicitedData = errors.New("unsolicited data after the response")
)

type result struct {
	resp *WireResponse
	err  error
}

// exchange is one request awaiting its response. result is a one-shot channel.
type exchange struct {
	method string
	result chan result
}

// Conn is an HTTP/1.1 session over an established (possibly TLS) stream.
//
// A background driver goroutine reads responses and hands each one to the
// waiting exchange, then keeps watching the stream until the connection is
// closed or the peer hangs up. An error it hits after the response was
// delivered is only logged. A Conn carries a single exchange and is owned
// by the Send that opened it.
type Conn struct {
	nc  net.Conn
	bw  *bufio.Writer
	br  *bufio.Reader
	log *logger.Logger

	exchanges chan *exchange
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu        sync.Mutex
	driverErr error
	delivered bool
}

// Handshake starts an HTTP/1.1 session on nc. HTTP/1.1 has no connection
// preface, so this only checks ctx and starts the driver.
func Handshake(ctx context.Context, nc net.Conn, log *logger.Logger) (*Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Transport(apperrors.StageHandshake, err)
	}
	if log == nil {
		log = logger.Nop()
	}
	c := &Conn{
		nc:        nc,
		bw:        bufio.NewWriter(nc),
		br:        bufio.NewReader(nc),
		log:       log,
		exchanges: make(chan *exchange),
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	go c.drive()
	return c, nil
}

func (c *Conn) drive() {
	defer close(c.done)

	var ex *exchange
	select {
	case <-c.closing:
		return
	case ex = <-c.exchanges:
	}

	resp, err := readResponse(c.br, ex.method)
	ex.result <- result{resp: resp, err: err}
	if err != nil {
		c.setDriverErr(err)
		return
	}
	c.mu.Lock()
	c.delivered = true
	c.mu.Unlock()

	// Keep watching the stream until the owner closes it or the peer hangs up.
	if _, err := c.br.Peek(1); err != nil {
		select {
		case <-c.closing:
		default:
			if !errors.Is(err, io.EOF) {
				c.setDriverErr(err)
			}
		}
		return
	}
	c.setDriverErr(errUnsolicitedData)
}

// RoundTrip writes req and waits for its response. ctx bounds both the
// write and the wait.
func (c *Conn) RoundTrip(ctx context.Context, req *WireRequest) (*WireResponse, error) {
	if err := c.write(ctx, req); err != nil {
		return nil, apperrors.Transport(apperrors.StageSend, err)
	}

	ex := &exchange{method: req.Method, result: make(chan result, 1)}
	select {
	case c.exchanges <- ex:
	case <-c.done:
		return nil, apperrors.Transport(apperrors.StageReceive, c.terminalErr())
	case <-ctx.Done():
		return nil, apperrors.Transport(apperrors.StageReceive, ctx.Err())
	}

	select {
	case r := <-ex.result:
		if r.err != nil {
			return nil, apperrors.Transport(apperrors.StageReceive, r.err)
		}
		return r.resp, nil
	case <-ctx.Done():
		// Closing the socket unblocks the driver's read.
		_ = c.Close()
		return nil, apperrors.Transport(apperrors.StageReceive, ctx.Err())
	}
}

// write sends req under ctx. The context deadline becomes the write
// deadline, and cancellation expires it at once so a blocked write returns.
func (c *Conn) write(ctx context.Context, req *WireRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		_ = c.nc.SetWriteDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.nc.SetWriteDeadline(expired)
	})
	err := writeRequest(c.bw, req)
	if stop() {
		_ = c.nc.SetWriteDeadline(time.Time{})
	}
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if hasDeadline && errors.Is(err, os.ErrDeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return err
}

// Close stops the driver and closes the stream. It waits for the driver to exit.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closing)
		err = c.nc.Close()
		<-c.done

		c.mu.Lock()
		driverErr, delivered := c.driverErr, c.delivered
		c.mu.Unlock()
		if driverErr != nil && delivered {
			c.log.Debug("connection driver finished with error", logger.Fields(logger.FieldError, driverErr.Error()))
		}
	})
	return err
}

// Err returns the error that stopped the driver, if any.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.driverErr
}

func (c *Conn) setDriverErr(err error) {
	c.mu.Lock()
	c.driverErr = err
	c.mu.Unlock()
}

func (c *Conn) terminalErr() error {
	if err := c.Err(); err != nil {
		return err
	}
	select {
	case <-c.closing:
		return errConnClosed
	default:
		return io.ErrUnexpectedEOF
	}
}
