package handlers_test

import (
	"testing"
	"time"

	"github.com/ridetrack/server/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWebSocketChat(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, aliceToken := testutil.NewUserBuilder().WithUsername("alice").BuildAndAuthenticate(t, ts)
	_, bobToken := testutil.NewUserBuilder().WithUsername("bob").BuildAndAuthenticate(t, ts)

	alice := testutil.NewWSClient(t, ts.WebSocketURL(aliceToken))
	bob := testutil.NewWSClient(t, ts.WebSocketURL(bobToken))

	alice.Join("sunday-ride", "alice")
	payload := alice.WaitForChat(2 * time.Second)
	assert.Equal(t, "alice has joined the chat.", payload.Msg)

	bob.Join("sunday-ride", "bob")
	assert.Equal(t, "bob has joined the chat.", bob.WaitForChat(2*time.Second).Msg)
	assert.Equal(t, "bob has joined the chat.", alice.WaitForChat(2*time.Second).Msg)

	// A well-formed message reaches everyone in the room, sender included.
	alice.SendChat("sunday-ride", "alice", "meet at the trailhead")
	for _, c := range []*testutil.WSClient{alice, bob} {
		payload := c.WaitForChat(2 * time.Second)
		assert.Equal(t, "meet at the trailhead", payload.Msg)
		assert.Equal(t, "alice", payload.Username)
	}
}

func TestWebSocketMalformedEventsDropped(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, token := testutil.NewUserBuilder().WithUsername("carol").BuildAndAuthenticate(t, ts)
	carol := testutil.NewWSClient(t, ts.WebSocketURL(token))

	carol.Join("night-ride", "carol")
	carol.WaitForChat(2 * time.Second)

	// Empty room: dropped, nobody receives it.
	carol.SendChat("", "carol", "anyone there?")
	carol.ExpectNoChat(300 * time.Millisecond)

	// Empty body: dropped too.
	carol.SendChat("night-ride", "carol", "")
	carol.ExpectNoChat(300 * time.Millisecond)
}

func TestWebSocketRequiresToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := doJSON(t, "GET", ts.BaseURL()+"/api/v1/ws", "", nil)
	testutil.AssertStatusCode(t, resp, 401)
}
