package model

// CatalogEntry is a read-only projection of a canonical plant record.
type CatalogEntry struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`                 // scientific name
	CommonName      string   `json:"commonName,omitempty"` // Swedish common name
	PlantType       string   `json:"plantType"`
	SynonymNames    []string `json:"synonymNames"`
	SynonymIDs      []int64  `json:"synonymIds"` // ids of the synonym records, parallel to SynonymNames
	IsUserSubmitted bool     `json:"isUserSubmitted"`
	SubmitterID     string   `json:"submitterId,omitempty"`
}

// CandidateQuery is what the retriever asks the store for. All strings are normalized.
type CandidateQuery struct {
	Term           string
	FallbackTokens []string // name-contains tokens for multi-word terms
	ShortTerm      bool     // also accept names starting with the term
	Limit          int
}

// CandidateRow is one row returned by a store for a CandidateQuery.
type CandidateRow struct {
	Entry   CatalogEntry
	DBScore int
}

// MatchCandidate lives only inside one query's candidate set.
type MatchCandidate struct {
	Entry   CatalogEntry
	DBScore float64
}

// Target names the field of an entry a term was compared against.
type Target string

const (
	TargetNone       Target = "none"
	TargetName       Target = "name"
	TargetCommonName Target = "commonName"
	TargetSynonym    Target = "synonym"
)

// Signal names the matching rule that produced a score.
type Signal string

const (
	SignalNone        Signal = "none"
	SignalExact       Signal = "exact"
	SignalPrefix      Signal = "prefix"
	SignalContains    Signal = "contains"
	SignalEdit        Signal = "edit"
	SignalSubsequence Signal = "subsequence"
)

type MatchDetails struct {
	Target       Target `json:"target"`
	Signal       Signal `json:"signal"`
	MatchedText  string `json:"matchedText,omitempty"` // normalized target text that won
	QueryLength  int    `json:"queryLength"`
	TargetLength int    `json:"targetLength"`
	EditDistance *int   `json:"editDistance,omitempty"`
}

type ScoredMatch struct {
	Entry           CatalogEntry `json:"entry"`
	SimilarityScore float64      `json:"similarityScore"`
	MatchDetails    MatchDetails `json:"matchDetails"`
	SuggestedReason string       `json:"suggestedReason"`
}

// BatchBlock holds the suggestions for one input term. Error is set when the
// term's retrieval failed; Results is then empty.
type BatchBlock struct {
	SearchTerm string        `json:"searchTerm"`
	Results    []ScoredMatch `json:"results"`
	Error      string        `json:"error,omitempty"`
}

type BatchResult struct {
	Blocks []BatchBlock `json:"blocks"`
	Failed int          `json:"failed"`
}
