package api

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_StartStop(t *testing.T) {
	f := newFixture("")
	s := NewServer("127.0.0.1:0", f.handler, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()), "second start must fail")

	resp, err := http.Get("http://" + s.Address() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ok")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

func TestServer_BindFailure(t *testing.T) {
	s := NewServer("256.0.0.1:bad", http.NotFoundHandler(), nil)
	assert.Error(t, s.Start(context.Background()))
	assert.Equal(t, "256.0.0.1:bad", s.Address())
}
