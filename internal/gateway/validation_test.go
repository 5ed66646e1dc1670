package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	v := NewValidator(func() time.Time { return now })

	tests := []struct {
		name    string
		body    string
		dst     func() any
		wantErr string
	}{
		{"UserOK", `{"name":"Ann","email":"ann@example.com"}`, func() any { return &userRequest{} }, ""},
		{"UserBlankName", `{"name":"  ","email":"ann@example.com"}`, func() any { return &userRequest{} }, "name: must not be blank"},
		{"UserBadEmail", `{"name":"Ann","email":"not-an-email"}`, func() any { return &userRequest{} }, "email: must be a well-formed email address"},
		{"UserMissingEmail", `{"name":"Ann"}`, func() any { return &userRequest{} }, "email: must not be blank"},
		{"ItemOK", `{"name":"Drill","description":"Cordless","available":false}`, func() any { return &itemRequest{} }, ""},
		{"ItemNoAvailable", `{"name":"Drill","description":"Cordless"}`, func() any { return &itemRequest{} }, "available: must not be null"},
		{"ItemLongName", `{"name":"` + longString(256) + `","description":"d","available":true}`, func() any { return &itemRequest{} }, "name: size must be at most 255"},
		{"BookingOK", `{"itemId":1,"start":"2026-03-10T12:00:00","end":"2026-03-11T12:00:00"}`, func() any { return &bookingRequest{} }, ""},
		{"BookingPastStart", `{"itemId":1,"start":"2026-03-10T11:59:59","end":"2026-03-11T12:00:00"}`, func() any { return &bookingRequest{} }, "start: date cannot be in past"},
		{"BookingNullEnd", `{"itemId":1,"start":"2026-03-11T12:00:00","end":null}`, func() any { return &bookingRequest{} }, "end: must not be null"},
		{"BookingEqual", `{"itemId":1,"start":"2026-03-11T12:00:00","end":"2026-03-11T12:00:00"}`, func() any { return &bookingRequest{} }, "start and end cannot be equal"},
		{"BookingNoItem", `{"start":"2026-03-11T12:00:00","end":"2026-03-12T12:00:00"}`, func() any { return &bookingRequest{} }, "itemId: must not be null"},
		{"BookingBadDate", `{"itemId":1,"start":"11.03.2026","end":"2026-03-12T12:00:00"}`, func() any { return &bookingRequest{} }, "invalid JSON body"},
		{"RequestBlank", `{"description":""}`, func() any { return &itemWantedRequest{} }, "description: must not be blank"},
		{"CommentOK", `{"text":"nice"}`, func() any { return &commentRequest{} }, ""},
		{"CommentBlank", `{"text":" "}`, func() any { return &commentRequest{} }, "text: must not be blank"},
		{"Malformed", `{`, func() any { return &commentRequest{} }, "invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.DecodeAndValidate([]byte(tt.body), tt.dst())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func longString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestRetryPolicy_NextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffFactor: 2}

	assert.Equal(t, 100*time.Millisecond, p.NextDelay(0))
	assert.Equal(t, 100*time.Millisecond, p.NextDelay(1))
	assert.Equal(t, 200*time.Millisecond, p.NextDelay(2))
	assert.Equal(t, 300*time.Millisecond, p.NextDelay(3))

	assert.Equal(t, time.Second, RetryPolicy{}.NextDelay(1))
}
