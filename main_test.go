package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdownWhenDone_ClosesServer(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv := &http.Server{Addr: "127.0.0.1:0"}

	shutdownWhenDone(ctx, srv, time.Second)

	err := srv.ListenAndServe()
	assert.True(t, errors.Is(err, http.ErrServerClosed))
	assert.NotContains(t, buf.String(), "Server shutdown")
}

func TestNewRootCmd_RegistersCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "apply"} {
		cmd, _, err := root.Find([]string{name})
		assert.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
