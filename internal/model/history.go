package model

// ScoreHistoryEntry is one append-only history row. Ordering key is
// Result.CalculatedAt, ties broken by the insertion sequence (Seq).
type ScoreHistoryEntry struct {
	Seq    int64       `json:"seq"`
	UserID string      `json:"user_id"`
	Result ScoreResult `json:"result"`
}
