// Package models defines data structures and domain types.
package models

// SourceUsage is the aggregate for a single source. It is produced by
// folding records and superseded, never mutated, on re-aggregation.
type SourceUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	CallCount        int64 `json:"call_count"`
}

// TotalTokens returns the derived token total for the source.
func (s SourceUsage) TotalTokens() int64 {
	return s.PromptTokens + s.CompletionTokens
}

// add returns the aggregate extended by one record's counts.
func (s SourceUsage) add(r UsageRecord) SourceUsage {
	return SourceUsage{
		PromptTokens:     s.PromptTokens + r.PromptTokens,
		CompletionTokens: s.CompletionTokens + r.CompletionTokens,
		CallCount:        s.CallCount + 1,
	}
}

// merge returns the field-wise sum of two source aggregates.
func (s SourceUsage) merge(other SourceUsage) SourceUsage {
	return SourceUsage{
		PromptTokens:     s.PromptTokens + other.PromptTokens,
		CompletionTokens: s.CompletionTokens + other.CompletionTokens,
		CallCount:        s.CallCount + other.CallCount,
	}
}

// UsageSummary is the aggregate across a set of usage records. ByModel and
// BySession are populated only for records carrying a model or session id;
// such records still count toward the overall totals.
//
// The *Order slices preserve first-seen key order so rendering and
// serialization stay deterministic; they carry no aggregate data.
type UsageSummary struct {
	TotalPromptTokens     int64                  `json:"total_prompt_tokens"`
	TotalCompletionTokens int64                  `json:"total_completion_tokens"`
	CallCount             int64                  `json:"call_count"`
	BySource              map[string]SourceUsage `json:"by_source"`
	ByModel               map[string]int64       `json:"by_model,omitempty"`
	BySession             map[string]int64       `json:"by_session,omitempty"`

	SourceOrder  []string `json:"-"`
	ModelOrder   []string `json:"-"`
	SessionOrder []string `json:"-"`
}

// NewSummary returns the canonical empty summary, the identity value for
// aggregation. Folding zero records yields exactly this value.
func NewSummary() UsageSummary {
	return UsageSummary{BySource: make(map[string]SourceUsage)}
}

// TotalTokens returns the derived overall token total.
func (s UsageSummary) TotalTokens() int64 {
	return s.TotalPromptTokens + s.TotalCompletionTokens
}

// Fold returns a new summary extended by one record. The receiver is not
// modified; maps are copied so summaries behave as values.
func (s UsageSummary) Fold(r UsageRecord) UsageSummary {
	next := s.clone()
	next.foldInPlace(r)
	return next
}

// Merge combines two summaries by field-wise addition and key-wise union.
// Merge(Summarize(a), Summarize(b)) equals Summarize(append(a, b...)).
func (s UsageSummary) Merge(other UsageSummary) UsageSummary {
	next := s.clone()

	next.TotalPromptTokens += other.TotalPromptTokens
	next.TotalCompletionTokens += other.TotalCompletionTokens
	next.CallCount += other.CallCount

	for _, src := range other.sourceKeys() {
		if _, seen := next.BySource[src]; !seen {
			next.SourceOrder = append(next.SourceOrder, src)
		}
		next.BySource[src] = next.BySource[src].merge(other.BySource[src])
	}
	for _, model := range other.modelKeys() {
		if next.ByModel == nil {
			next.ByModel = make(map[string]int64)
		}
		if _, seen := next.ByModel[model]; !seen {
			next.ModelOrder = append(next.ModelOrder, model)
		}
		next.ByModel[model] += other.ByModel[model]
	}
	for _, session := range other.sessionKeys() {
		if next.BySession == nil {
			next.BySession = make(map[string]int64)
		}
		if _, seen := next.BySession[session]; !seen {
			next.SessionOrder = append(next.SessionOrder, session)
		}
		next.BySession[session] += other.BySession[session]
	}

	return next
}

// Summarize folds a sequence of records into a summary. The fold is
// commutative in the aggregate values; only the *Order slices depend on
// input order. Summarize never fails for well-formed records.
func Summarize(records []UsageRecord) UsageSummary {
	s := NewSummary()
	for _, r := range records {
		s.foldInPlace(r)
	}
	return s
}

func (s *UsageSummary) foldInPlace(r UsageRecord) {
	s.TotalPromptTokens += r.PromptTokens
	s.TotalCompletionTokens += r.CompletionTokens
	s.CallCount++

	if _, seen := s.BySource[r.Source]; !seen {
		s.SourceOrder = append(s.SourceOrder, r.Source)
	}
	s.BySource[r.Source] = s.BySource[r.Source].add(r)

	if r.Model != "" {
		if s.ByModel == nil {
			s.ByModel = make(map[string]int64)
		}
		if _, seen := s.ByModel[r.Model]; !seen {
			s.ModelOrder = append(s.ModelOrder, r.Model)
		}
		s.ByModel[r.Model] += r.TotalTokens()
	}

	if r.SessionID != "" {
		if s.BySession == nil {
			s.BySession = make(map[string]int64)
		}
		if _, seen := s.BySession[r.SessionID]; !seen {
			s.SessionOrder = append(s.SessionOrder, r.SessionID)
		}
		s.BySession[r.SessionID] += r.TotalTokens()
	}
}

func (s UsageSummary) clone() UsageSummary {
	next := UsageSummary{
		TotalPromptTokens:     s.TotalPromptTokens,
		TotalCompletionTokens: s.TotalCompletionTokens,
		CallCount:             s.CallCount,
		BySource:              make(map[string]SourceUsage, len(s.BySource)),
	}
	for k, v := range s.BySource {
		next.BySource[k] = v
	}
	if s.ByModel != nil {
		next.ByModel = make(map[string]int64, len(s.ByModel))
		for k, v := range s.ByModel {
			next.ByModel[k] = v
		}
	}
	if s.BySession != nil {
		next.BySession = make(map[string]int64, len(s.BySession))
		for k, v := range s.BySession {
			next.BySession[k] = v
		}
	}
	next.SourceOrder = append([]string(nil), s.SourceOrder...)
	next.ModelOrder = append([]string(nil), s.ModelOrder...)
	next.SessionOrder = append([]string(nil), s.SessionOrder...)
	return next
}

// sourceKeys returns source keys in first-seen order, falling back to map
// iteration for summaries built without order tracking.
func (s UsageSummary) sourceKeys() []string {
	if len(s.SourceOrder) == len(s.BySource) {
		return s.SourceOrder
	}
	keys := make([]string, 0, len(s.BySource))
	for k := range s.BySource {
		keys = append(keys, k)
	}
	return keys
}

func (s UsageSummary) modelKeys() []string {
	if len(s.ModelOrder) == len(s.ByModel) {
		return s.ModelOrder
	}
	keys := make([]string, 0, len(s.ByModel))
	for k := range s.ByModel {
		keys = append(keys, k)
	}
	return keys
}

func (s UsageSummary) sessionKeys() []string {
	if len(s.SessionOrder) == len(s.BySession) {
		return s.SessionOrder
	}
	keys := make([]string, 0, len(s.BySession))
	for k := range s.BySession {
		keys = append(keys, k)
	}
	return keys
}
