package transport

import (
	"context"

	"github.com/coder/websocket"
)

// Snapshot frames can be large; the library default of 32 KiB is far too
// small for a full session projection.
const readLimit = 16 << 20

type wsTransport struct {
	conn *websocket.Conn
}

// Dial opens a websocket Transport to url. It is the production DialFunc.
func Dial(ctx context.Context, url string) (Transport, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(readLimit)
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) Read(ctx context.Context) ([]byte, error) {
	_, payload, err := t.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (t *wsTransport) Send(ctx context.Context, payload []byte) error {
	return t.conn.Write(ctx, websocket.MessageText, payload)
}

func (t *wsTransport) Close(reason string) error {
	return t.conn.Close(websocket.StatusNormalClosure, reason)
}
