package model

// FileRewrite is the C5 Rewriter's per-file output (§4.5 contract): the
// rewritten source text for one file, plus the line numbers where an await
// was inserted, for reporting and diff preview.
type FileRewrite struct {
	FilePath    string
	Original    string
	Rewritten   string
	AwaitLines  []int
	Unchanged   bool
}
