package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints a password prompt to w and reads a password from the
// terminal without echo.
func GetPassword(w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

type result[T any] struct {
	v   T
	err error
}

// await runs a blocking read in its own goroutine so the caller can give up
// when ctx ends. A read abandoned this way stays blocked until input
// arrives or the process exits.
func await[T any](ctx context.Context, read func() (T, error)) (T, error) {
	ch := make(chan result[T], 1)
	go func() {
		v, err := read()
		ch <- result[T]{v, err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (a *App) readLine(ctx context.Context, prompt string) (string, error) {
	return await(ctx, func() (string, error) {
		return getSimpleText(a.in, prompt, a.out)
	})
}

// readSecret reads without echo on a terminal and falls back to a plain
// line when input is piped.
func (a *App) readSecret(ctx context.Context, prompt string) (string, error) {
	if !a.terminal {
		return a.readLine(ctx, prompt)
	}
	return await(ctx, func() (string, error) {
		return getPassword(a.out, prompt)
	})
}
