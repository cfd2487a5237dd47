package overring

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestTCPTransport(t *testing.T) {
	baton := make(chan struct{}, 1)

	go func() {
		transport := NewTCPTransport()
		l, err := transport.Listen("/ip4/0.0.0.0/tcp/2999")
		if err != nil {
			t.Error(err)
			baton <- struct{}{}
			return
		}
		defer l.Close()

		baton <- struct{}{}

		conn, err := l.Accept()
		if err != nil {
			t.Error(err)
			return
		}
		defer conn.Close()

		<-baton

		var buf [1024]byte
		n, err := conn.Read(buf[:])
		if err != nil {
			t.Error(err)
			return
		}

		if !bytes.Equal(buf[:n], []byte("Hello World")) {
			t.Errorf("expected %q instead of %q", "Hello World", buf[:n])
		}

		baton <- struct{}{}
	}()

	func() {
		transport := NewTCPTransport()
		<-baton

		conn, err := transport.DialTimeout("/ip4/127.0.0.1/tcp/2999", 10*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		defer conn.Close()

		_, err = io.WriteString(conn, "Hello World")
		if err != nil {
			t.Fatal(err)
		}

		baton <- struct{}{}
	}()

	<-baton
}
