package streaming

import (
	"context"
	"net/http"
	"testing"

	"github.com/CodedBeard/devchatterbot/testutil"
	"github.com/CodedBeard/devchatterbot/twitchapi"
)

func newPollerFixture(t *testing.T) (*HelixFollowerService, *testutil.MockTwitchServer) {
	t.Helper()
	mock := testutil.NewMockTwitchServer(t)
	mock.MockOAuthTokenResponse("app-token", 3600)
	mock.MockUserResponse("12345", "streamer")
	client := &twitchapi.HelixClient{
		AppTokenSource: &twitchapi.TokenSource{
			ClientID:     "cid",
			ClientSecret: "secret",
			TokenURL:     mock.URL + "/oauth2/token",
		},
		ClientID: "cid",
		BaseURL:  mock.URL,
	}
	return &HelixFollowerService{Helix: client, Broadcaster: "streamer"}, mock
}

func TestPollerPrimesWithoutNotifying(t *testing.T) {
	svc, mock := newPollerFixture(t)
	mock.MockFollowersResponse([]string{"alice", "bob"})

	var got [][]string
	svc.Subscribe(func(names []string) { got = append(got, names) })

	svc.pollOnce(context.Background(), "12345")
	if len(got) != 0 {
		t.Fatalf("priming poll notified: %v", got)
	}
}

func TestPollerNotifiesNewFollowersOnly(t *testing.T) {
	svc, mock := newPollerFixture(t)
	mock.MockFollowersResponse([]string{"alice"})

	var got [][]string
	svc.Subscribe(func(names []string) { got = append(got, names) })

	ctx := context.Background()
	svc.pollOnce(ctx, "12345")

	mock.MockFollowersResponse([]string{"alice", "bob", "carol"})
	svc.pollOnce(ctx, "12345")
	if len(got) != 1 || len(got[0]) != 2 || got[0][0] != "bob" || got[0][1] != "carol" {
		t.Fatalf("notifications = %v, want one batch of [bob carol]", got)
	}

	// unchanged set stays quiet
	svc.pollOnce(ctx, "12345")
	if len(got) != 1 {
		t.Errorf("unchanged poll notified again: %v", got)
	}
}

func TestPollerRoutesThroughDeliver(t *testing.T) {
	svc, mock := newPollerFixture(t)
	mock.MockFollowersResponse(nil)

	var queued []func()
	svc.Deliver = func(fn func()) { queued = append(queued, fn) }
	var got []string
	svc.Subscribe(func(names []string) { got = append(got, names...) })

	ctx := context.Background()
	svc.pollOnce(ctx, "12345")
	mock.MockFollowersResponse([]string{"dana"})
	svc.pollOnce(ctx, "12345")

	if len(got) != 0 {
		t.Fatal("handler ran before the delivered closure was invoked")
	}
	if len(queued) != 1 {
		t.Fatalf("queued = %d closures, want 1", len(queued))
	}
	queued[0]()
	if len(got) != 1 || got[0] != "dana" {
		t.Errorf("got = %v, want [dana]", got)
	}
}

func TestPollerSkipsFailedPolls(t *testing.T) {
	svc, mock := newPollerFixture(t)
	mock.MockFollowersResponse([]string{"alice"})

	var got [][]string
	svc.Subscribe(func(names []string) { got = append(got, names) })

	ctx := context.Background()
	svc.pollOnce(ctx, "12345")

	mock.Handlers["/helix/channels/followers"] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}
	svc.pollOnce(ctx, "12345")

	// recovery picks up the follower added while the endpoint was down
	mock.MockFollowersResponse([]string{"alice", "bob"})
	svc.pollOnce(ctx, "12345")
	if len(got) != 1 || len(got[0]) != 1 || got[0][0] != "bob" {
		t.Fatalf("notifications = %v, want one batch of [bob]", got)
	}
}

func TestUsersWeFollow(t *testing.T) {
	svc, mock := newPollerFixture(t)
	mock.MockFollowedResponse([]string{"friend1", "friend2"})

	logins, err := svc.UsersWeFollow(context.Background())
	if err != nil {
		t.Fatalf("UsersWeFollow: %v", err)
	}
	if len(logins) != 2 || logins[0] != "friend1" || logins[1] != "friend2" {
		t.Errorf("logins = %v", logins)
	}
}
