package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishEvent_NoConnection(t *testing.T) {
	SetNatsConn(nil)

	err := NatsPublisher{}.Publish(context.Background(), SubjectStageCompleted, map[string]any{"chapter": 1})
	assert.NoError(t, err)
	assert.Nil(t, Conn())
}
