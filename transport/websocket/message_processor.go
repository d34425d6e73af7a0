package websocket

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/view"
)

const (
	opContinuation byte = 0x0
	opText         byte = 0x1
	opClose        byte = 0x8
	opPing         byte = 0x9
	opPong         byte = 0xA
)

const maxPayloadSize = 64 << 10

var (
	errConnectionClosed = errors.New("connection closed by client")
	errFragmentedFrame  = errors.New("fragmented frames are not supported")
	errPayloadTooLarge  = errors.New("payload too large")
)

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	opCode  byte
	length  uint64
	payload []byte
}

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Session struct {
	ID string `json:"id"`
}

// Payload is used both for requests and responses.
type Payload struct {
	Session *Session     `json:"session,omitempty"`
	Cell    *entity.Cell `json:"cell,omitempty"`
	Game    *view.Board  `json:"game,omitempty"`
	Redraw  bool         `json:"redraw,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func (that *Server) sendMessage(bufrw *bufio.ReadWriter, action string, payload Payload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	responseBytes, err := json.Marshal(Message{Action: action, Payload: payloadBytes})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	f := frame{
		isFin:   true,
		opCode:  opText,
		length:  uint64(len(responseBytes)),
		payload: responseBytes,
	}

	if err = writeFrame(bufrw, f); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(bufrw *bufio.ReadWriter, action, message string) error {
	return that.sendMessage(bufrw, action, Payload{Error: message})
}

func writeFrame(bufrw *bufio.ReadWriter, frameData frame) error {
	header := make([]byte, 2, 10)
	header[0] = frameData.opCode

	if frameData.isFin {
		header[0] |= 0x80
	}

	switch {
	case frameData.length < 126:
		header[1] = byte(frameData.length)
	case frameData.length < 1<<16:
		header[1] = 126
		header = binary.BigEndian.AppendUint16(header, uint16(frameData.length))
	default:
		header[1] = 127
		header = binary.BigEndian.AppendUint64(header, frameData.length)
	}

	if _, err := bufrw.Write(header); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}

	if _, err := bufrw.Write(frameData.payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}

	if err := bufrw.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

// readFrame - reads one frame and unmasks its payload.
func readFrame(reader io.Reader) (frame, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(reader, header); err != nil {
		return frame{}, fmt.Errorf("failed to read header: %w", err)
	}

	f := frame{
		isFin:  header[0]&0x80 != 0,
		opCode: header[0] & 0x0f,
	}
	masked := header[1]&0x80 != 0

	length, err := readPayloadLength(reader, header[1]&0x7f)
	if err != nil {
		return frame{}, err
	}

	if length > maxPayloadSize {
		return frame{}, fmt.Errorf("%w: %d bytes", errPayloadTooLarge, length)
	}

	var mask []byte
	if masked {
		mask = make([]byte, 4)
		if _, err = io.ReadFull(reader, mask); err != nil {
			return frame{}, fmt.Errorf("failed to read mask: %w", err)
		}
	}

	f.length = length
	f.payload = make([]byte, length)
	if _, err = io.ReadFull(reader, f.payload); err != nil {
		return frame{}, fmt.Errorf("failed to read payload: %w", err)
	}

	if mask != nil {
		for i := range f.payload {
			f.payload[i] ^= mask[i%4]
		}
	}

	return f, nil
}

func readPayloadLength(reader io.Reader, payloadLen byte) (uint64, error) {
	switch payloadLen {
	case 126:
		length := make([]byte, 2)
		if _, err := io.ReadFull(reader, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return uint64(binary.BigEndian.Uint16(length)), nil
	case 127:
		length := make([]byte, 8)
		if _, err := io.ReadFull(reader, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return binary.BigEndian.Uint64(length), nil
	default:
		return uint64(payloadLen), nil
	}
}

// readRequest - returns the next text message, answering pings on the way.
func (that *Server) readRequest(bufrw *bufio.ReadWriter) ([]byte, error) {
	for {
		f, err := readFrame(bufrw)
		if err != nil {
			return nil, err
		}

		switch f.opCode {
		case opClose:
			_ = writeFrame(bufrw, frame{isFin: true, opCode: opClose})
			return nil, errConnectionClosed
		case opPing:
			if err = writeFrame(bufrw, frame{isFin: true, opCode: opPong, length: f.length, payload: f.payload}); err != nil {
				return nil, err
			}
		case opPong:
			continue
		case opContinuation:
			return nil, errFragmentedFrame
		default:
			if !f.isFin {
				return nil, errFragmentedFrame
			}
			return f.payload, nil
		}
	}
}
