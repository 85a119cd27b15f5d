package scheduler

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestStart_RejectsInvalidCronSpec(t *testing.T) {
	cases := []struct {
		name                         string
		ingestion, breakfast, dinner string
	}{
		{"bad ingestion spec", "not a spec", "30 6 * * *", "0 14 * * *"},
		{"bad breakfast spec", "0 6 * * *", "61 6 * * *", "0 14 * * *"},
		{"bad dinner spec", "0 6 * * *", "30 6 * * *", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewMealScheduler(context.Background(), nil, nil, testLogger(), tc.ingestion, tc.breakfast, tc.dinner)
			assert.Error(t, s.Start())
		})
	}
}

func TestStartAndStop(t *testing.T) {
	s := NewMealScheduler(context.Background(), nil, nil, testLogger(), "0 6 * * *", "30 6 * * *", "0 14 * * *")
	require.NoError(t, s.Start())
	s.Stop()
}
