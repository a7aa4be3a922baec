package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("  hello world \n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}

	_, err = GetSimpleText(in, "Name?", &out)
	assert.Error(t, err)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()

	readPassword = func(int) ([]byte, error) { return []byte("secret1"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out, "Password")
	require.NoError(t, err)
	assert.Equal(t, "secret1", pw)
	assert.Equal(t, "Password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(&out, "Password")
	assert.Error(t, err)
}

func TestReadSecret_Terminal(t *testing.T) {
	old := getPassword
	defer func() { getPassword = old }()
	getPassword = func(io.Writer, string) (string, error) { return "from-terminal", nil }

	a := newApp(strings.NewReader("from-pipe\n"), &bytes.Buffer{}, nil)
	a.terminal = true
	pw, err := a.readSecret(context.Background(), "Password")
	require.NoError(t, err)
	assert.Equal(t, "from-terminal", pw)

	a.terminal = false
	pw, err = a.readSecret(context.Background(), "Password")
	require.NoError(t, err)
	assert.Equal(t, "from-pipe", pw)
}

func TestAwait_GivesUpOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	block := make(chan struct{})
	defer close(block)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := await(ctx, func() (string, error) {
		<-block
		return "", nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
