package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "placements.application.created", Subject("placements", ApplicationCreated))
	assert.Equal(t, "job.closed", Subject("", JobClosed))
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), PlacementCreated, map[string]string{"id": "p1"}))
	assert.NoError(t, p.Close())
}
