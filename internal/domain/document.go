package domain

// Article is a top-level document in the corpus, identified to users by its
// unique title. Summary is derived data and stays empty until the
// summarization rollup has run.
type Article struct {
	ID      int64
	Title   string
	Summary string
}

// Section is a titled subdivision of an article. Level is the 1-based heading
// depth; it is advisory and not guaranteed to nest monotonically. Ascending id
// approximates document order.
type Section struct {
	ID        int64
	ArticleID int64
	Title     string
	Level     int
	Summary   string
}

// Answer is the transient result of answering one question. It lives only for
// the duration of the call and is never persisted.
type Answer struct {
	Question          string
	Article           string
	SectionIDs        []int64
	Passages          []string
	DroppedSectionIDs []int64
	Text              string
}
