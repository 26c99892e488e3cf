package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type FrequencyTestSuite struct {
	suite.Suite
}

func TestFrequencySuite(t *testing.T) {
	suite.Run(t, new(FrequencyTestSuite))
}

func (suite *FrequencyTestSuite) TestParseFrequency() {
	testCases := []struct {
		name    string
		input   string
		want    Frequency
		wantErr bool
	}{
		{name: "minute", input: "1m", want: FrequencyMinute},
		{name: "five minutes", input: "5m", want: Frequency5Minute},
		{name: "thirty minutes", input: "30m", want: Frequency30Minute},
		{name: "hour", input: "1h", want: FrequencyHour},
		{name: "four hours", input: "4h", want: Frequency4Hour},
		{name: "day", input: "1d", want: FrequencyDay},
		{name: "week", input: "1w", want: FrequencyWeek},
		{name: "unknown token", input: "2d", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			got, err := ParseFrequency(tc.input)
			if tc.wantErr {
				suite.Error(err)
				return
			}

			suite.NoError(err)
			suite.Equal(tc.want, got)
		})
	}
}

func (suite *FrequencyTestSuite) TestTruncate() {
	// Wednesday 2024-03-13 14:47:31 UTC
	t := time.Date(2024, 3, 13, 14, 47, 31, 0, time.UTC)

	testCases := []struct {
		name      string
		frequency Frequency
		want      time.Time
	}{
		{name: "minute", frequency: FrequencyMinute, want: time.Date(2024, 3, 13, 14, 47, 0, 0, time.UTC)},
		{name: "five minutes", frequency: Frequency5Minute, want: time.Date(2024, 3, 13, 14, 45, 0, 0, time.UTC)},
		{name: "thirty minutes", frequency: Frequency30Minute, want: time.Date(2024, 3, 13, 14, 30, 0, 0, time.UTC)},
		{name: "hour", frequency: FrequencyHour, want: time.Date(2024, 3, 13, 14, 0, 0, 0, time.UTC)},
		{name: "four hours", frequency: Frequency4Hour, want: time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)},
		{name: "day", frequency: FrequencyDay, want: time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)},
		{name: "week starts monday", frequency: FrequencyWeek, want: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.Equal(tc.want, tc.frequency.Truncate(t))
		})
	}
}

func (suite *FrequencyTestSuite) TestTruncateWeekOnSunday() {
	// Sunday belongs to the week starting the previous Monday.
	sunday := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)
	suite.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), FrequencyWeek.Truncate(sunday))
}

func (suite *FrequencyTestSuite) TestTruncateIdempotent() {
	t := time.Date(2024, 3, 13, 14, 47, 31, 0, time.UTC)

	for _, frequency := range []Frequency{
		FrequencyMinute, Frequency5Minute, Frequency30Minute,
		FrequencyHour, Frequency4Hour, FrequencyDay, FrequencyWeek,
	} {
		once := frequency.Truncate(t)
		suite.Equal(once, frequency.Truncate(once), "truncate should be idempotent for %s", frequency)
	}
}
