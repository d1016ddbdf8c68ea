// Package framing implements the base protocol framing used by language servers:
// a block of header lines, a blank line, then exactly Content-Length bytes of body.
package framing

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.lsp.dev/jsonrpc2"
)

const _headerSeparator = "\r\n"

// ErrShutdown is returned by Decode when the peer sends a header block that ends
// immediately, without declaring a length. Peers use it to announce an orderly shutdown.
var ErrShutdown = errors.New("empty header block, peer is shutting down")

// Frame is a single message body together with its optional content type.
type Frame struct {
	ContentType string
	Body        []byte
}

// Marshal encodes a frame into its wire form.
// Content-Type is only written when set.
func Marshal(f Frame) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s: %d%s", jsonrpc2.HdrContentLength, len(f.Body), _headerSeparator)
	if f.ContentType != "" {
		fmt.Fprintf(&buf, "%s: %s%s", jsonrpc2.HdrContentType, f.ContentType, _headerSeparator)
	}
	buf.WriteString(_headerSeparator)
	buf.Write(f.Body)
	return buf.Bytes()
}

type decodeState int

const (
	awaitHeader decodeState = iota
	awaitBody
)

// Decoder reads consecutive frames from a stream.
type Decoder struct {
	in *bufio.Reader
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{in: bufio.NewReader(r)}
}

// Decode reads the next frame.
// It returns io.EOF when the stream ends cleanly between frames, and ErrShutdown when the
// peer announces shutdown. Any other error means the stream can no longer be trusted.
func (d *Decoder) Decode() (Frame, error) {
	var (
		frame      Frame
		length     = -1
		headerSeen bool
		state      = awaitHeader
	)

	for state == awaitHeader {
		line, err := d.in.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && line == "" && !headerSeen {
				return Frame{}, io.EOF
			}
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return Frame{}, fmt.Errorf("reading header line: %w", err)
		}

		line = strings.TrimRight(line, _headerSeparator)
		if line == "" {
			if length < 0 {
				if !headerSeen {
					return Frame{}, ErrShutdown
				}
				return Frame{}, fmt.Errorf("missing %s header", jsonrpc2.HdrContentLength)
			}
			state = awaitBody
			continue
		}
		headerSeen = true

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return Frame{}, fmt.Errorf("invalid header line %q", line)
		}
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)

		switch {
		case strings.EqualFold(name, jsonrpc2.HdrContentLength):
			n, err := strconv.Atoi(value)
			if err != nil {
				return Frame{}, fmt.Errorf("parsing %s %q: %w", jsonrpc2.HdrContentLength, value, err)
			}
			if n < 0 {
				return Frame{}, fmt.Errorf("negative %s: %d", jsonrpc2.HdrContentLength, n)
			}
			length = n
		case strings.EqualFold(name, jsonrpc2.HdrContentType):
			frame.ContentType = value
		default:
			// Unknown headers are allowed by the base protocol.
		}
	}

	// The buffer grows with the bytes actually received, not the declared length.
	var body bytes.Buffer
	if n, err := io.CopyN(&body, d.in, int64(length)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Frame{}, fmt.Errorf("read %d of %d body bytes: %w", n, length, err)
	}
	frame.Body = body.Bytes()
	return frame, nil
}
