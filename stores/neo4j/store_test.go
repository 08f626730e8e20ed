package neo4j

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/akashic/stores"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want stores.ErrorKind
	}{
		{"auth", errors.New("Neo.ClientError.Security.Unauthorized: wrong credentials"), stores.ErrKindAuth},
		{"syntax", errors.New("Neo.ClientError.Statement.SyntaxError: bad cypher"), stores.ErrKindMalformedWrite},
		{"connection", errors.New("dial tcp 127.0.0.1:7687: connect: connection refused"), stores.ErrKindConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}
