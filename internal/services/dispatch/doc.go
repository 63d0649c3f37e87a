// Package dispatch sends replicas of one encapsulated request.
//
// Run drives at most Plan.Concurrency attempts at a time. Each attempt
// encapsulates the shared canonical request afresh and posts it through the
// transport; as soon as one finishes, its outcome is handed to the sink and
// the next pending replica takes the free slot. Outcomes therefore arrive in
// completion order, not replica order.
//
// A failing attempt never affects its siblings: encapsulation errors,
// transport errors and panics all become failure outcomes, and Run returns
// an error only for an invalid plan.
package dispatch
