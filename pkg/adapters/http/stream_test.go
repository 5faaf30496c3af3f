package http_test

import (
	"context"
	"testing"

	adapter "github.com/aretw0/courier/pkg/adapters/http"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/mediator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreams_TopicRouting(t *testing.T) {
	streams := adapter.NewStreams(nil)
	reg := mediator.NewRegistry()
	require.NoError(t, reg.Install(streams))
	m := mediator.New(reg)

	all, cancelAll := streams.Subscribe(adapter.AllSchools)
	defer cancelAll()
	one, cancelOne := streams.Subscribe("s1")
	defer cancelOne()
	other, cancelOther := streams.Subscribe("s2")
	defer cancelOther()

	require.NoError(t, mediator.Publish(context.Background(), m, domain.SchoolRenamed{SchoolID: "s1", OldName: "a", NewName: "b"}))

	assert.Contains(t, <-all, `"event":"school.renamed"`)
	assert.Contains(t, <-one, `"new_name":"b"`)
	assert.Empty(t, other)
}

func TestStreams_CancelClosesOnce(t *testing.T) {
	streams := adapter.NewStreams(nil)
	ch, cancel := streams.Subscribe("s1")

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	streams.Broadcast("s1", "ignored")
}

func TestStreams_DropsWhenFull(t *testing.T) {
	streams := adapter.NewStreams(nil)
	ch, cancel := streams.Subscribe("s1")
	defer cancel()

	for i := 0; i < 20; i++ {
		streams.Broadcast("s1", "msg")
	}
	assert.Len(t, ch, 10)
}
