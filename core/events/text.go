package events

const KindText Kind = "text"

// Text is a contiguous fragment of the current assistant response.
type Text struct {
	header
	Delta string
}

func NewText(delta string) Text {
	return Text{header: newHeader(KindText), Delta: delta}
}
