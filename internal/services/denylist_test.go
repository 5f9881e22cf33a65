package services

import (
	"context"
	"testing"

	"songlin/internal/models"
)

func newDenylistEnv() (*DenylistService, *fakeDenylist) {
	store := newFakeDenylist()
	return NewDenylistService(store, testLogger()), store
}

func mustAdd(t *testing.T, service *DenylistService, typ models.DenylistType, value string) *models.DenylistEntry {
	t.Helper()
	entry, err := service.Add(context.Background(), typ, value, "测试规则")
	if err != nil {
		t.Fatal(err)
	}
	return entry
}

func TestAddNormalizesValue(t *testing.T) {
	service, _ := newDenylistEnv()
	entry := mustAdd(t, service, models.DenyEmail, "  Spammer@Example.COM ")
	if entry.Value != "spammer@example.com" {
		t.Fatalf("value = %q, want normalized", entry.Value)
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	service, _ := newDenylistEnv()
	if _, err := service.Add(context.Background(), "banana", "x", ""); !IsValidation(err) {
		t.Fatalf("unknown type: err = %v, want ValidationError", err)
	}
	if _, err := service.Add(context.Background(), models.DenyWord, "   ", ""); !IsValidation(err) {
		t.Fatalf("blank value: err = %v, want ValidationError", err)
	}
}

func TestEvaluateWordSubstring(t *testing.T) {
	service, _ := newDenylistEnv()
	entry := mustAdd(t, service, models.DenyWord, "casino")

	match, err := service.Evaluate(context.Background(), DenylistCandidate{
		Body: "Best CASINO bonuses here", UserID: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if match == nil || match.ID != entry.ID {
		t.Fatalf("match = %v, want casino rule", match)
	}
}

func TestEvaluateEmailExact(t *testing.T) {
	service, _ := newDenylistEnv()
	mustAdd(t, service, models.DenyEmail, "spammer@example.com")

	match, err := service.Evaluate(context.Background(), DenylistCandidate{
		Body: "正常内容", Email: "Spammer@Example.com", UserID: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if match == nil {
		t.Fatal("want email match")
	}

	miss, err := service.Evaluate(context.Background(), DenylistCandidate{
		Body: "正常内容", Email: "other@example.com", UserID: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if miss != nil {
		t.Fatal("different address must not match")
	}
}

func TestEvaluateDomainSuffix(t *testing.T) {
	service, _ := newDenylistEnv()
	mustAdd(t, service, models.DenyDomain, "spam.biz")

	cases := []struct {
		email string
		hit   bool
	}{
		{"a@spam.biz", true},
		{"a@mail.spam.biz", true}, // 子域名也算
		{"a@notspam.biz", false},  // 只认完整域名段
		{"a@spam.biz.cn", false},
	}
	for _, tc := range cases {
		match, err := service.Evaluate(context.Background(), DenylistCandidate{
			Body: "正常内容", Email: tc.email, UserID: 1,
		})
		if err != nil {
			t.Fatal(err)
		}
		if (match != nil) != tc.hit {
			t.Fatalf("%s: match = %v, want hit=%v", tc.email, match, tc.hit)
		}
	}
}

func TestEvaluateIPAndUserID(t *testing.T) {
	service, _ := newDenylistEnv()
	mustAdd(t, service, models.DenyIP, "203.0.113.9")
	mustAdd(t, service, models.DenyUserID, "42")

	byIP, err := service.Evaluate(context.Background(), DenylistCandidate{
		Body: "正常内容", IP: "203.0.113.9", UserID: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if byIP == nil || byIP.Type != models.DenyIP {
		t.Fatalf("match = %v, want ip rule", byIP)
	}

	byUser, err := service.Evaluate(context.Background(), DenylistCandidate{
		Body: "正常内容", UserID: 42,
	})
	if err != nil {
		t.Fatal(err)
	}
	if byUser == nil || byUser.Type != models.DenyUserID {
		t.Fatalf("match = %v, want user rule", byUser)
	}
}

func TestEvaluateHitCountOncePerSubmission(t *testing.T) {
	service, store := newDenylistEnv()
	word := mustAdd(t, service, models.DenyWord, "casino")
	ip := mustAdd(t, service, models.DenyIP, "203.0.113.9")

	// 一次提交同时命中两条规则，只记第一条（固定核对顺序里账号/地址在前）
	match, err := service.Evaluate(context.Background(), DenylistCandidate{
		Body: "casino time", IP: "203.0.113.9", UserID: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if match.ID != ip.ID {
		t.Fatalf("match = %v, want ip rule first", match)
	}
	if store.hitCount(ip.ID) != 1 || store.hitCount(word.ID) != 0 {
		t.Fatalf("hit counts = %d/%d, want 1/0",
			store.hitCount(ip.ID), store.hitCount(word.ID))
	}
}

func TestEvaluateNoMatch(t *testing.T) {
	service, _ := newDenylistEnv()
	mustAdd(t, service, models.DenyWord, "casino")

	match, err := service.Evaluate(context.Background(), DenylistCandidate{
		Body: "完全无害的评论", Email: "a@example.com", IP: "10.0.0.1", UserID: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if match != nil {
		t.Fatalf("match = %v, want nil", match)
	}
}

func TestDuplicateAddAccumulates(t *testing.T) {
	service, store := newDenylistEnv()
	first := mustAdd(t, service, models.DenyWord, "casino")
	second := mustAdd(t, service, models.DenyWord, "Casino")

	if second.ID != first.ID {
		t.Fatalf("ids = %d/%d, duplicate must reuse the row", first.ID, second.ID)
	}
	entries, err := service.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if store.hitCount(first.ID) != 1 {
		t.Fatalf("hit count = %d, duplicate add counts as one hit", store.hitCount(first.ID))
	}
}

func TestRemoveEntry(t *testing.T) {
	service, _ := newDenylistEnv()
	entry := mustAdd(t, service, models.DenyWord, "casino")

	if err := service.Remove(context.Background(), entry.ID); err != nil {
		t.Fatal(err)
	}
	match, err := service.Evaluate(context.Background(), DenylistCandidate{
		Body: "casino time", UserID: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if match != nil {
		t.Fatal("removed rule must not match")
	}
}
