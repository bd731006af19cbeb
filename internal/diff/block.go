package diff

// DefaultContext is the number of unchanged lines shown around a block.
const DefaultContext = 2

// Block is a maximal run of differing lines between two texts, positioned
// in the existing text. Start and End delimit Existing as a half-open range
// of zero-based existing line indices; a pure insertion has Start == End.
type Block struct {
	Number   int
	Start    int
	End      int
	Existing []string
	Incoming []string
	Before   []string
	After    []string
}

// StartLine is the one-based first existing line of the block.
func (b Block) StartLine() int {
	return b.Start + 1
}

// EndLine is the one-based last existing line of the block. For a pure
// insertion it is the line after which incoming lines are placed.
func (b Block) EndLine() int {
	return b.End
}

// Blocks splits the difference between existing and incoming into blocks
// in ascending document order, each with up to context lines of unchanged
// existing text before and after it.
func Blocks(existing, incoming string, context int) []Block {
	ex := SplitLines(existing)
	script := Script(ex, SplitLines(incoming))

	var blocks []Block
	var cur *Block
	flush := func() {
		if cur == nil {
			return
		}
		cur.Before = ex[max(0, cur.Start-context):cur.Start]
		cur.After = ex[cur.End:min(len(ex), cur.End+context)]
		blocks = append(blocks, *cur)
		cur = nil
	}

	for _, l := range script {
		if l.Op == OpEqual {
			flush()
			continue
		}
		if cur == nil {
			cur = &Block{Number: len(blocks) + 1, Start: l.OldIndex, End: l.OldIndex}
		}
		switch l.Op {
		case OpDelete:
			cur.Existing = append(cur.Existing, l.Text)
			cur.End = l.OldIndex + 1
		case OpInsert:
			cur.Incoming = append(cur.Incoming, l.Text)
		}
	}
	flush()
	return blocks
}
