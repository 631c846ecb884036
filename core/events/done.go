package events

const KindDone Kind = "done"

// Done marks the end of the assistant response for a request.
type Done struct{ header }

func NewDone() Done {
	return Done{header: newHeader(KindDone)}
}
