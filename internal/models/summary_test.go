package models

import (
	"math/rand"
	"reflect"
	"testing"
)

func mustRecord(t *testing.T, source string, prompt, completion int64, opts ...RecordOption) UsageRecord {
	t.Helper()
	r, err := NewRecord(source, prompt, completion, opts...)
	if err != nil {
		t.Fatalf("NewRecord(%q, %d, %d) failed: %v", source, prompt, completion, err)
	}
	return r
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	if s.TotalPromptTokens != 0 || s.TotalCompletionTokens != 0 || s.CallCount != 0 {
		t.Errorf("empty summary has non-zero totals: %+v", s)
	}
	if len(s.BySource) != 0 {
		t.Errorf("empty summary BySource = %v, want empty", s.BySource)
	}
	if len(s.ByModel) != 0 || len(s.BySession) != 0 {
		t.Error("empty summary should have no model/session breakdowns")
	}
	if !summariesEqual(s, NewSummary()) {
		t.Error("Summarize(nil) should equal the canonical empty summary")
	}
}

func TestSummarize_Example(t *testing.T) {
	records := []UsageRecord{
		mustRecord(t, "a", 10, 5),
		mustRecord(t, "b", 3, 2),
		mustRecord(t, "a", 1, 1),
	}

	s := Summarize(records)

	if s.TotalPromptTokens != 14 {
		t.Errorf("TotalPromptTokens = %d, want 14", s.TotalPromptTokens)
	}
	if s.TotalCompletionTokens != 8 {
		t.Errorf("TotalCompletionTokens = %d, want 8", s.TotalCompletionTokens)
	}
	if s.CallCount != 3 {
		t.Errorf("CallCount = %d, want 3", s.CallCount)
	}

	wantA := SourceUsage{PromptTokens: 11, CompletionTokens: 6, CallCount: 2}
	if s.BySource["a"] != wantA {
		t.Errorf("BySource[a] = %+v, want %+v", s.BySource["a"], wantA)
	}
	wantB := SourceUsage{PromptTokens: 3, CompletionTokens: 2, CallCount: 1}
	if s.BySource["b"] != wantB {
		t.Errorf("BySource[b] = %+v, want %+v", s.BySource["b"], wantB)
	}

	if got := s.BySource["a"].TotalTokens(); got != 17 {
		t.Errorf("BySource[a].TotalTokens() = %d, want 17", got)
	}

	if !reflect.DeepEqual(s.SourceOrder, []string{"a", "b"}) {
		t.Errorf("SourceOrder = %v, want [a b]", s.SourceOrder)
	}
}

func TestSummarize_ModelAndSessionBreakdowns(t *testing.T) {
	records := []UsageRecord{
		mustRecord(t, "a", 10, 5, WithModel("opus"), WithSession("s1")),
		mustRecord(t, "b", 3, 2),
		mustRecord(t, "a", 1, 1, WithModel("opus"), WithSession("s2")),
		mustRecord(t, "c", 2, 2, WithModel("sonnet")),
	}

	s := Summarize(records)

	// Records without a model are excluded from ByModel only.
	if s.CallCount != 4 {
		t.Errorf("CallCount = %d, want 4", s.CallCount)
	}
	if got := s.ByModel["opus"]; got != 17 {
		t.Errorf("ByModel[opus] = %d, want 17", got)
	}
	if got := s.ByModel["sonnet"]; got != 4 {
		t.Errorf("ByModel[sonnet] = %d, want 4", got)
	}
	if len(s.ByModel) != 2 {
		t.Errorf("ByModel has %d keys, want 2", len(s.ByModel))
	}

	if got := s.BySession["s1"]; got != 15 {
		t.Errorf("BySession[s1] = %d, want 15", got)
	}
	if got := s.BySession["s2"]; got != 2 {
		t.Errorf("BySession[s2] = %d, want 2", got)
	}
}

func TestSummarize_OrderIndependent(t *testing.T) {
	records := []UsageRecord{
		mustRecord(t, "a", 10, 5, WithModel("opus")),
		mustRecord(t, "b", 3, 2, WithSession("s1")),
		mustRecord(t, "a", 1, 1),
		mustRecord(t, "c", 7, 0, WithModel("sonnet"), WithSession("s1")),
	}

	want := Summarize(records)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]UsageRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := Summarize(shuffled)
		if !summariesEqual(got, want) {
			t.Fatalf("permuted fold differs:\ngot  %+v\nwant %+v", got, want)
		}
	}
}

func TestMerge_EqualsConcatenatedFold(t *testing.T) {
	r1 := []UsageRecord{
		mustRecord(t, "a", 10, 5, WithModel("opus"), WithSession("s1")),
		mustRecord(t, "b", 3, 2),
	}
	r2 := []UsageRecord{
		mustRecord(t, "a", 1, 1, WithModel("opus")),
		mustRecord(t, "c", 4, 4, WithSession("s2")),
	}

	merged := Summarize(r1).Merge(Summarize(r2))
	direct := Summarize(append(append([]UsageRecord(nil), r1...), r2...))

	if !summariesEqual(merged, direct) {
		t.Errorf("merge law broken:\nmerged %+v\ndirect %+v", merged, direct)
	}
}

func TestMerge_EmptyIsIdentity(t *testing.T) {
	s := Summarize([]UsageRecord{
		mustRecord(t, "a", 10, 5, WithModel("opus")),
	})

	left := NewSummary().Merge(s)
	right := s.Merge(NewSummary())

	if !summariesEqual(left, s) || !summariesEqual(right, s) {
		t.Error("empty summary should be the merge identity")
	}
}

func TestFold_DoesNotMutateReceiver(t *testing.T) {
	s1 := Summarize([]UsageRecord{mustRecord(t, "a", 10, 5)})
	s2 := s1.Fold(mustRecord(t, "a", 1, 1))

	if s1.CallCount != 1 || s1.BySource["a"].CallCount != 1 {
		t.Errorf("Fold mutated its receiver: %+v", s1)
	}
	if s2.CallCount != 2 || s2.BySource["a"].PromptTokens != 11 {
		t.Errorf("Fold result wrong: %+v", s2)
	}
}

// summariesEqual compares aggregate values, ignoring key-order slices which
// legitimately depend on input order.
func summariesEqual(a, b UsageSummary) bool {
	if a.TotalPromptTokens != b.TotalPromptTokens ||
		a.TotalCompletionTokens != b.TotalCompletionTokens ||
		a.CallCount != b.CallCount {
		return false
	}
	if !reflect.DeepEqual(a.BySource, b.BySource) {
		return false
	}
	if len(a.ByModel) != len(b.ByModel) || len(a.BySession) != len(b.BySession) {
		return false
	}
	for k, v := range a.ByModel {
		if b.ByModel[k] != v {
			return false
		}
	}
	for k, v := range a.BySession {
		if b.BySession[k] != v {
			return false
		}
	}
	return true
}
