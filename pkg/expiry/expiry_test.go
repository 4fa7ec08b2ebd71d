package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		expiry *time.Time
		want   Status
	}{
		{"nil date", nil, StatusUnknown},
		{"zero date", &time.Time{}, StatusUnknown},
		{"yesterday", date(2026, time.March, 14), StatusExpired},
		{"today", date(2026, time.March, 15), StatusExpiresSoon},
		{"in 30 days", date(2026, time.April, 14), StatusExpiresSoon},
		{"in 31 days", date(2026, time.April, 15), StatusGood},
		{"next year", date(2027, time.March, 15), StatusGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.expiry, now))
		})
	}
}

func TestClassifyString(t *testing.T) {
	assert.Equal(t, StatusUnknown, ClassifyString("", now))
	assert.Equal(t, StatusUnknown, ClassifyString("15/03/2026", now))
	assert.Equal(t, StatusExpired, ClassifyString("2026-01-01", now))
	assert.Equal(t, StatusGood, ClassifyString(" 2030-01-01 ", now))
}

func TestIsExpiredIgnoresClock(t *testing.T) {
	lateToday := time.Date(2026, time.March, 15, 23, 59, 0, 0, time.UTC)
	assert.False(t, IsExpired(lateToday, now))
	assert.True(t, IsExpired(*date(2026, time.March, 14), now))
}

func TestDescribe(t *testing.T) {
	info := Describe(StatusExpired)
	assert.Equal(t, "Expired", info.Text)
	assert.Equal(t, "badge-danger", info.Badge)
	assert.Equal(t, "N/A", StatusUnknown.Text())
	assert.False(t, Status("bogus").Valid())
}

func TestNowIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Now().Location())

	// 01:30 on the 16th in UTC+5:30 is still the 15th in UTC
	ist := time.FixedZone("IST", 5*3600+1800)
	local := time.Date(2026, time.March, 16, 1, 30, 0, 0, ist)
	assert.Equal(t, *date(2026, time.March, 15), Today(local.UTC()))
	assert.True(t, IsExpired(*date(2026, time.March, 15), local))
	assert.False(t, IsExpired(*date(2026, time.March, 15), local.UTC()))
}
