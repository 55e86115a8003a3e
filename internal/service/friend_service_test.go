package service

import (
	"testing"

	"red-social-server/internal/common"
	"red-social-server/internal/consts"
)

func TestFriendRequest_FullAcceptFlow(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")

	req, err := SendFriendRequest(alice.ID, "bob")
	if err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	if req.Status != consts.FriendRequestPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}

	received, err := ReceivedFriendRequests(bob.ID)
	if err != nil {
		t.Fatalf("ReceivedFriendRequests: %v", err)
	}
	if len(received) != 1 || received[0].Sender.Username != "alice" {
		t.Fatalf("bob should see alice's request, got %+v", received)
	}

	sent, err := SentFriendRequests(alice.ID)
	if err != nil {
		t.Fatalf("SentFriendRequests: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("alice should see her pending request, got %d", len(sent))
	}

	accepted, err := RespondFriendRequest(bob.ID, req.ID, true)
	if err != nil {
		t.Fatalf("RespondFriendRequest: %v", err)
	}
	if accepted.Status != consts.FriendRequestAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}
	if accepted.RespondedAt == nil {
		t.Fatal("expected responded_at set")
	}

	// 接受后互相关注
	following, err := IsFollowing(alice.ID, bob.ID)
	if err != nil || !following {
		t.Fatalf("alice should follow bob: %v %v", following, err)
	}
	following, err = IsFollowing(bob.ID, alice.ID)
	if err != nil || !following {
		t.Fatalf("bob should follow alice: %v %v", following, err)
	}

	friends, err := ListFriends(alice.ID)
	if err != nil {
		t.Fatalf("ListFriends: %v", err)
	}
	if len(friends) != 1 || friends[0].Username != "bob" {
		t.Fatalf("expected bob in friends, got %+v", friends)
	}
}

func TestFriendRequest_DeclineLeavesNoFollows(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "alice2")
	bob := createTestUser(t, "bob2")

	req, err := SendFriendRequest(alice.ID, "bob2")
	if err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}

	declined, err := RespondFriendRequest(bob.ID, req.ID, false)
	if err != nil {
		t.Fatalf("RespondFriendRequest: %v", err)
	}
	if declined.Status != consts.FriendRequestDeclined {
		t.Fatalf("expected declined, got %s", declined.Status)
	}

	following, err := IsFollowing(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("IsFollowing: %v", err)
	}
	if following {
		t.Fatal("decline must not create follow edges")
	}
}

func TestFriendRequest_Guards(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "alice3")
	bob := createTestUser(t, "bob3")
	carol := createTestUser(t, "carol3")

	// 不能向自己发申请
	_, err := SendFriendRequest(alice.ID, "alice3")
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeValidation {
		t.Fatalf("expected validation_error for self request, got %v", err)
	}

	// 对不存在的用户报 404
	_, err = SendFriendRequest(alice.ID, "nobody")
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}

	req, err := SendFriendRequest(alice.ID, "bob3")
	if err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}

	// 待处理期间重复申请（双向）都被拒绝
	_, err = SendFriendRequest(alice.ID, "bob3")
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeConflict {
		t.Fatalf("expected conflict for duplicate request, got %v", err)
	}
	_, err = SendFriendRequest(bob.ID, "alice3")
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeConflict {
		t.Fatalf("expected conflict for reverse duplicate, got %v", err)
	}

	// 只有接收方能处理
	_, err = RespondFriendRequest(carol.ID, req.ID, true)
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeForbidden {
		t.Fatalf("expected forbidden for non-receiver, got %v", err)
	}

	// 已处理的申请不能再处理
	if _, err := RespondFriendRequest(bob.ID, req.ID, true); err != nil {
		t.Fatalf("accept: %v", err)
	}
	_, err = RespondFriendRequest(bob.ID, req.ID, false)
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeConflict {
		t.Fatalf("expected conflict for already-handled request, got %v", err)
	}

	// 已是好友后再次申请被拒绝
	_, err = SendFriendRequest(alice.ID, "bob3")
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeConflict {
		t.Fatalf("expected conflict for existing friendship, got %v", err)
	}
}

func TestUnfriend_RemovesBothEdges(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "alice4")
	bob := createTestUser(t, "bob4")
	_ = bob

	req, err := SendFriendRequest(alice.ID, "bob4")
	if err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	if _, err := RespondFriendRequest(req.ReceiverID, req.ID, true); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := Unfriend(alice.ID, "bob4"); err != nil {
		t.Fatalf("Unfriend: %v", err)
	}

	for _, pair := range [][2]uint{{alice.ID, req.ReceiverID}, {req.ReceiverID, alice.ID}} {
		following, err := IsFollowing(pair[0], pair[1])
		if err != nil {
			t.Fatalf("IsFollowing: %v", err)
		}
		if following {
			t.Fatalf("follow edge %v should be removed", pair)
		}
	}

	friends, err := ListFriends(alice.ID)
	if err != nil {
		t.Fatalf("ListFriends: %v", err)
	}
	if len(friends) != 0 {
		t.Fatalf("expected no friends, got %d", len(friends))
	}

	// 解除后可以重新发起申请
	if _, err := SendFriendRequest(alice.ID, "bob4"); err != nil {
		t.Fatalf("re-request after unfriend: %v", err)
	}
}
