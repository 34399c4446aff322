package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// SourcePassage is one retained index passage returned alongside an answer so
// callers can show provenance.
type SourcePassage struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Department string  `json:"department"`
	DocID      string  `json:"doc_id"`
	ChunkSeq   int     `json:"chunk_seq"`
	Score      float64 `json:"score"`
}

type ChatResponse struct {
	ChatId  string          `json:"chat_id"`
	Answer  string          `json:"answer"`
	Sources []SourcePassage `json:"sources"`
	NoMatch bool            `json:"no_match,omitempty"`
}

type SearchResponse struct {
	Passages []SourcePassage `json:"passages"`
}

// IngestReport summarizes one index build.
type IngestReport struct {
	Documents   int      `json:"documents"`
	Skipped     []string `json:"skipped,omitempty"`
	Chunks      int      `json:"chunks"`
	Model       string   `json:"model"`
	DurationSec float64  `json:"duration_sec"`
}
