package gcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType("ABCD/result.json"))
	assert.Equal(t, "text/plain; charset=utf-8", contentType("ABCD/log.txt"))
	assert.Equal(t, "application/octet-stream", contentType("ABCD/replay.bin"))
}

func TestObjectPath(t *testing.T) {
	a := &Archive{prefix: "duels"}
	assert.Equal(t, "duels/ABCD/log.txt", a.objectPath("ABCD/log.txt"))

	bare := &Archive{}
	assert.Equal(t, "ABCD/log.txt", bare.objectPath("ABCD/log.txt"))
}

func TestOpenRequiresBucket(t *testing.T) {
	_, err := Open(context.Background(), "", "duels", "")
	assert.Error(t, err)
}
