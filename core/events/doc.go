// Package events defines the wire event contract of the prompt authoring
// stream.
//
// Every line of a response stream carries exactly one serialized event,
// discriminated by its "type" field:
//
//   - Text (text): a fragment of the current assistant response, to be
//     concatenated in arrival order.
//   - ToolCall (tool_call): one completed tool invocation together with its
//     result. Tool calls are never streamed partially.
//   - State (state): the authoritative document state after all tool calls
//     of the request. At most one per request, never a mid-stream hint.
//   - Done (done): terminal event of a request. Exactly one per request,
//     anything after it is discarded.
//   - Error (error): the backend failed while producing the response; the
//     request ends without a done event.
//
// Events of any other kind decode to Unknown and are ignored by consumers,
// so that older clients keep working when the protocol grows.
package events
