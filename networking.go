package main

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/juliashaders/programs"
	"github.com/stewi1014/juliashaders/viewport"
)

// Messages sent from the config window to the render window.
type (
	ProgramMessage struct {
		Name string
	}

	// ZoomMessage animates the view to a new half range.
	ZoomMessage struct {
		Range float64
	}

	ConstantMessage struct {
		Real, Imag float64
	}

	IterationsMessage struct {
		MaxIterations int32
	}

	AnimateMessage struct {
		Animate bool
	}

	// ResetMessage returns the camera and the view to where they started.
	ResetMessage struct {
		Camera bool
		View   bool
	}
)

// StatusMessage is sent from the render window to the config window.
type StatusMessage struct {
	Program  string
	Uniforms programs.Uniforms
	Bounds   viewport.Bounds
	Target   mgl64.Vec3
	AtEdge   bool
	FPS      float64
}

func init() {
	gob.Register(ProgramMessage{})
	gob.Register(ZoomMessage{})
	gob.Register(ConstantMessage{})
	gob.Register(IterationsMessage{})
	gob.Register(AnimateMessage{})
	gob.Register(ResetMessage{})
	gob.Register(StatusMessage{})
}

func NewPipeListener() (client net.Conn, listener net.Listener) {
	clientPipe, listenerPipe := net.Pipe()
	return clientPipe, &pipeListener{
		pipe: listenerPipe,
		done: make(chan struct{}),
	}
}

// pipeListener hands out its single connection once, then blocks until
// closed.
type pipeListener struct {
	pipe     net.Conn
	accepted bool
	done     chan struct{}
}

func (p *pipeListener) Accept() (net.Conn, error) {
	if !p.accepted {
		p.accepted = true
		return p.pipe, nil
	}
	<-p.done
	return nil, net.ErrClosed
}

func (p *pipeListener) Close() error {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
	return p.pipe.Close()
}

func (p *pipeListener) Addr() net.Addr {
	return p.pipe.LocalAddr()
}

// sendMessages encodes every value from messages onto conn until ctx is done.
func sendMessages(ctx context.Context, conn net.Conn, messages <-chan interface{}, quit func(error)) {
	enc := gob.NewEncoder(conn)
	defer conn.Close()

	for {
		select {
		case msg := <-messages:
			err := enc.Encode(&msg)
			if err != nil {
				quit(fmt.Errorf("sending %T: %w", msg, err))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// receiveMessages decodes values from conn and passes them to handle until
// the connection closes.
func receiveMessages(conn net.Conn, handle func(msg interface{}), quit func(error)) {
	dec := gob.NewDecoder(conn)

	for {
		var v interface{}
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
			return
		}
		if err != nil {
			quit(fmt.Errorf("receiving message: %w", err))
			conn.Close()
			return
		}

		handle(v)
	}
}
