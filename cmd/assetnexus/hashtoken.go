// cmd/assetnexus/hashtoken.go
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"assetnexus/internal/settings"
)

// hashToken reads an admin token from the first line of in and writes the
// ADMIN_TOKEN_HASH value for it.
func hashToken(in io.Reader, out io.Writer) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimRight(line, "\r\n")
	if token == "" {
		return errors.New("token is empty; pipe it on stdin, e.g. `echo -n $TOKEN | assetnexus hash-token`")
	}

	hash, err := settings.HashToken(token)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
