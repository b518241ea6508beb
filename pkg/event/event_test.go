package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	Flush()
	defer Flush()

	var got []string
	Listen("discounts.reconciled", func(_ context.Context, p any) { got = append(got, "a:"+p.(string)) })
	Listen("discounts.reconciled", func(_ context.Context, p any) { got = append(got, "b:"+p.(string)) })
	Listen("other", func(context.Context, any) { got = append(got, "other") })

	n := Fire(context.Background(), "discounts.reconciled", "run-1")

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a:run-1", "b:run-1"}, got)
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	Flush()
	defer Flush()

	ran := false
	Listen("e", func(context.Context, any) { panic("boom") })
	Listen("e", func(context.Context, any) { ran = true })

	assert.NotPanics(t, func() { Fire(context.Background(), "e", nil) })
	assert.True(t, ran)
}

func TestFireWithoutListeners(t *testing.T) {
	Flush()
	assert.Equal(t, 0, Fire(context.Background(), "nobody", nil))
}
